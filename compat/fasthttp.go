package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// Level tags the first field of an adapter record
type Level string

// Record level tags, kept short since records are bounded
const (
	LevelDebug Level = "D"
	LevelInfo  Level = "I"
	LevelWarn  Level = "W"
	LevelError Level = "E"
	LevelFatal Level = "F"
)

// levelPrefix renders "<level> <source> "
func levelPrefix(level Level, source string) string {
	return string(level) + " " + source + " "
}

// FastHTTPAdapter wraps a Guard to implement fasthttp Logger interface
type FastHTTPAdapter struct {
	guard         *Guard
	defaultLevel  Level
	levelDetector func(string) Level // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(guard *Guard, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		guard:         guard,
		defaultLevel:  LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != "" {
			level = detected
		}
	}

	a.guard.write(levelPrefix(level, "http"), msg)
}

// DetectLogLevel attempts to detect log level from message content.
// Returns an empty level when nothing matches.
func DetectLogLevel(msg string) Level {
	msgLower := strings.ToLower(msg)

	// Check for error indicators
	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return LevelError
	}

	// Check for warning indicators
	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") ||
		strings.Contains(msgLower, "cannot be served") {
		return LevelWarn
	}

	// Check for debug indicators
	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return LevelDebug
	}

	return ""
}
