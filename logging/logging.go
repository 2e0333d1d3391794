// Package logging contains the logger abstraction used by loadring
// components and its implementations.
package logging

import "log/slog"

// Logger defines methods for structured logging.
//
// All methods accept key-value pairs for structured fields. It is compatible
// with zap.SugaredLogger and slog based loggers.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SlogLogger implements Logger using log/slog.
type SlogLogger struct {
	logger *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlog returns Logger writing to the given slog.Logger.
// If logger is nil slog.Default() is used.
func NewSlog(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

// NopLogger discards all messages.
type NopLogger struct{}

var _ Logger = NopLogger{}

// NewNop returns logger which discards all messages.
func NewNop() NopLogger {
	return NopLogger{}
}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Level is a severity used by components which allow to configure how loud
// some condition should be reported. Empty Level means LevelWarn.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Valid reports whether l is a known level or empty.
func (l Level) Valid() bool {
	switch l {
	case "", LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// Log writes msg to l at given level.
func Log(l Logger, level Level, msg string, keysAndValues ...any) {
	switch level {
	case LevelDebug:
		l.Debug(msg, keysAndValues...)
	case LevelInfo:
		l.Info(msg, keysAndValues...)
	case LevelError:
		l.Error(msg, keysAndValues...)
	default:
		l.Warn(msg, keysAndValues...)
	}
}
