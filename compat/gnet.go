package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// fatalDrainSteps bounds the flush attempted before the fatal handler runs
const fatalDrainSteps = 16

// GnetAdapter wraps a Guard to implement gnet logging.Logger interface
type GnetAdapter struct {
	guard        *Guard
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(guard *Guard, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		guard: guard,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.guard.write(levelPrefix(LevelDebug, "gnet"), fmt.Sprintf(format, args...))
}

// Infof logs with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.guard.write(levelPrefix(LevelInfo, "gnet"), fmt.Sprintf(format, args...))
}

// Warnf logs with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.guard.write(levelPrefix(LevelWarn, "gnet"), fmt.Sprintf(format, args...))
}

// Errorf logs with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.guard.write(levelPrefix(LevelError, "gnet"), fmt.Sprintf(format, args...))
}

// Fatalf logs, drains the buffer and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.guard.write(levelPrefix(LevelFatal, "gnet"), msg)

	// Best effort, a busy device may keep records buffered
	_, _ = a.guard.Drain(fatalDrainSteps)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
