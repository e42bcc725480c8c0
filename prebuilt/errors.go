package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// ErrMalformedResponse marks a model response that cannot be turned into a
// turn, such as no choices or a missing structured tool call.
var ErrMalformedResponse = errors.New("malformed model response")

// ErrorKind classifies a generation failure so callers can tell transient
// provider trouble from a bad response.
type ErrorKind string

const (
	KindRateLimit   ErrorKind = "rate_limit"
	KindTimeout     ErrorKind = "timeout"
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed"
	KindUnknown     ErrorKind = "unknown"
)

// GenerationError is returned by every model-backed step. It ends the run.
type GenerationError struct {
	Step string
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the whole run may succeed.
func (e *GenerationError) Transient() bool {
	switch e.Kind {
	case KindRateLimit, KindTimeout, KindUnavailable:
		return true
	}
	return false
}

func newGenerationError(step string, err error) *GenerationError {
	return &GenerationError{Step: step, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case llms.IsRateLimitError(err), llms.IsQuotaExceededError(err):
		return KindRateLimit
	case llms.IsTimeoutError(err), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case llms.IsProviderUnavailableError(err):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// IsGenerationError reports whether err is a *GenerationError of one of
// kinds, or of any kind when none are given.
func IsGenerationError(err error, kinds ...ErrorKind) bool {
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if gerr.Kind == k {
			return true
		}
	}
	return false
}
