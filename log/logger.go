package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level is the minimum severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone silences the logger.
	LevelNone
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// ParseLevel maps a config string such as "debug" or "WARN" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off", "disable":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is the printf-style logging contract used by every package in
// this module.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

const prefix = "[crashcourse] "

// StdLogger writes through the standard library logger.
type StdLogger struct {
	logger *log.Logger
	level  Level
}

var _ Logger = (*StdLogger)(nil)

// NewStdLogger logs to stderr.
func NewStdLogger(level Level) *StdLogger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger logs to out.
func NewWriterLogger(out io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(out, prefix, log.LstdFlags),
		level:  level,
	}
}

func (l *StdLogger) printf(level Level, format string, v ...any) {
	if l.level > level {
		return
	}
	l.logger.Printf("["+level.String()+"] "+format, v...)
}

func (l *StdLogger) Debug(format string, v ...any) { l.printf(LevelDebug, format, v...) }
func (l *StdLogger) Info(format string, v ...any)  { l.printf(LevelInfo, format, v...) }
func (l *StdLogger) Warn(format string, v ...any)  { l.printf(LevelWarn, format, v...) }
func (l *StdLogger) Error(format string, v ...any) { l.printf(LevelError, format, v...) }

// Discard drops everything. Useful in tests.
type Discard struct{}

func (Discard) Debug(string, ...any) {}
func (Discard) Info(string, ...any)  {}
func (Discard) Warn(string, ...any)  {}
func (Discard) Error(string, ...any) {}

var defaultLogger Logger = NewStdLogger(LevelInfo)

// SetDefault replaces the package-level logger. A nil logger is ignored.
func SetDefault(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// OrDefault returns logger, or the package-level logger when logger is nil.
func OrDefault(logger Logger) Logger {
	if logger == nil {
		return defaultLogger
	}
	return logger
}

func Debug(format string, v ...any) { defaultLogger.Debug(format, v...) }
func Info(format string, v ...any)  { defaultLogger.Info(format, v...) }
func Warn(format string, v ...any)  { defaultLogger.Warn(format, v...) }
func Error(format string, v ...any) { defaultLogger.Error(format, v...) }
