package tool

import (
	"context"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/tidwall/gjson"
)

// DefaultTimeFormat is the strftime layout used when none is supplied.
const DefaultTimeFormat = "%Y-%m-%d %H:%M:%S"

// SystemTime reports the current local time formatted with a strftime
// layout.
type SystemTime struct {
	now func() time.Time
}

var _ Tool = (*SystemTime)(nil)

// NewSystemTime returns the get_system_time tool. now defaults to time.Now.
func NewSystemTime(now func() time.Time) *SystemTime {
	if now == nil {
		now = time.Now
	}
	return &SystemTime{now: now}
}

func (s *SystemTime) Name() string { return "get_system_time" }

func (s *SystemTime) Description() string {
	return "Returns the current date and time in the specified strftime format."
}

func (s *SystemTime) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"format": map[string]any{
			"type":        "string",
			"description": "strftime layout, default " + DefaultTimeFormat,
		},
	})
}

// Call accepts {"format": "..."}, a bare layout, or nothing.
func (s *SystemTime) Call(_ context.Context, arguments string) (string, error) {
	format := DefaultTimeFormat
	switch {
	case gjson.Valid(arguments):
		if v := gjson.Get(arguments, "format"); v.Exists() && v.String() != "" {
			format = v.String()
		}
	case arguments != "":
		format = arguments
	}
	return strftime.Format(format, s.now()), nil
}
