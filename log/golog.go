package log

import (
	"github.com/kataras/golog"
)

// GologLogger adapts a kataras/golog logger. golog does its own level
// filtering, so the Level is mirrored onto it by SetLevel.
type GologLogger struct {
	logger *golog.Logger
	level  Level
}

var _ Logger = (*GologLogger)(nil)

// NewGolog wraps logger. A nil logger gets a fresh golog.New().
func NewGolog(logger *golog.Logger, level Level) *GologLogger {
	if logger == nil {
		logger = golog.New()
	}
	g := &GologLogger{logger: logger}
	g.SetLevel(level)
	return g
}

func (l *GologLogger) Debug(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *GologLogger) Info(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *GologLogger) Warn(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *GologLogger) Error(format string, v ...any) { l.logger.Errorf(format, v...) }

// SetLevel changes the level on both the wrapper and the golog logger.
func (l *GologLogger) SetLevel(level Level) {
	l.level = level
	l.logger.SetLevel(gologLevel(level))
}

// Level reports the current level.
func (l *GologLogger) Level() Level {
	return l.level
}

func gologLevel(level Level) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelNone:
		return "disable"
	default:
		return "info"
	}
}
