package logx

import (
	"fmt"
	"io"
	"sync/atomic"
)

// The package-level logger is for process bootstrap in cmd/.
// Components receive a *Logger through their constructors instead.
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger(LoadFromEnv(nil)))
}

// SetDefaultLogger replaces the package-level logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger.Load()
}

// SetLevel sets the log level for the default logger
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// Debug logs a debug level message
func Debug(msg string) {
	Default().log(LevelDebug, msg, nil, nil)
}

// Info logs an info level message
func Info(msg string) {
	Default().log(LevelInfo, msg, nil, nil)
}

// Warn logs a warning level message
func Warn(msg string) {
	Default().log(LevelWarn, msg, nil, nil)
}

// Error logs an error level message
func Error(msg string) {
	Default().log(LevelError, msg, nil, nil)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	Default().log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Default().log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	Default().log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) {
	l := Default()
	l.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	l.exit(1)
}

// WithFields creates a new logger entry with fields
func WithFields(fields Fields) *Entry {
	return Default().WithFields(fields)
}

// WithError creates a new logger entry with an error field
func WithError(err error) *Entry {
	return Default().WithError(err)
}
