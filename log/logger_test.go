package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
	assert.Contains(t, out, "[crashcourse] ")
}

func TestStdLogger_None(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelNone)
	logger.Error("boom")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"off", LevelNone, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "NONE", LevelNone.String())
	assert.Equal(t, "UNKNOWN(42)", Level(42).String())
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewWriterLogger(&buf, LevelDebug))
	Debug("via package %s", "func")
	assert.Contains(t, buf.String(), "via package func")

	SetDefault(nil)
	assert.NotNil(t, Default())

	assert.Equal(t, Default(), OrDefault(nil))
	d := Discard{}
	assert.Equal(t, Logger(d), OrDefault(d))
}

func TestGologLogger(t *testing.T) {
	var buf bytes.Buffer
	g := golog.New()
	g.SetOutput(&buf)

	logger := NewGolog(g, LevelInfo)
	assert.Equal(t, LevelInfo, logger.Level())

	logger.Debug("hidden %s", "debug")
	logger.Info("shown %s", "info")
	assert.NotContains(t, buf.String(), "hidden debug")
	assert.Contains(t, buf.String(), "shown info")

	logger.SetLevel(LevelNone)
	buf.Reset()
	logger.Error("silenced")
	assert.Empty(t, buf.String())
	assert.Equal(t, LevelNone, logger.Level())
}

func TestNewGolog_NilLogger(t *testing.T) {
	logger := NewGolog(nil, LevelDebug)
	assert.NotNil(t, logger)
	logger.Debug("no panic")
}
