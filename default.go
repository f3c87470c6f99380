package blocklog

import (
	"sync/atomic"
)

// Global instance for package-level functions, rooted at the working directory
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger(NewOSStorage(".")))
}

// Default returns the logger behind the package-level functions
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the logger behind the package-level functions
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// Init applies overrides to the default logger and starts it
func Init(overrides ...string) error {
	l := Default()
	if err := l.ApplyConfigString(overrides...); err != nil {
		return err
	}
	return l.Start()
}

// LogData appends a payload to the default logger
func LogData(payload string) error {
	return Default().LogData(payload)
}

// Log appends formatted values to the default logger
func Log(args ...any) error {
	return Default().Log(args...)
}

// Step advances the default logger's flush by one phase
func Step() (StepResult, error) {
	return Default().Step()
}

// RequestFlush marks the default logger's partial buffer for draining
func RequestFlush() bool {
	return Default().RequestFlush()
}

// Close closes the default logger
func Close() error {
	return Default().Close()
}
