package blocklog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/blocklog/formatter"
)

// LogData stamps payload with the elapsed time and appends it to the buffer.
// A full buffer marks a flush pending, after which appends are rejected with
// ErrNotOperational until Step reports StepDone. Records longer than the slot
// bound are rejected with ErrRecordTooLong, never truncated.
func (l *Logger) LogData(payload string) error {
	if !l.state.Operational.Load() {
		l.state.RejectedRecords.Add(1)
		return fmtErrorf("%w: run SetupLogFile and CheckInit first", ErrNotOperational)
	}
	if l.state.FlushPending.Load() {
		l.state.RejectedRecords.Add(1)
		return fmtErrorf("%w: flush in progress", ErrNotOperational)
	}

	line := l.formatter.Format(l.elapsed(), payload)
	if err := l.buffer.Append(line); err != nil {
		l.state.RejectedRecords.Add(1)
		return err
	}
	l.state.TotalRecords.Add(1)

	if l.buffer.IsFull() {
		l.state.FlushPending.Store(true)
	}
	return nil
}

// Log formats args as a space-separated payload and appends it
func (l *Logger) Log(args ...any) error {
	return l.LogData(l.formatter.FormatArgs(args...))
}

// MaxPayloadLength returns the longest payload that fits a slot for a record
// stamped now. It counts the payload before sanitization, so with sanitize on
// a payload of this length holding non-printable runes (hex-encoded) can still
// be rejected with ErrRecordTooLong.
func (l *Logger) MaxPayloadLength() int {
	stamp := len(strconv.FormatInt(l.elapsed().Milliseconds(), 10))
	n := l.buffer.SlotLength() - stamp - formatter.LineOverhead
	if n < 0 {
		return 0
	}
	return n
}

// internalLog handles writing operator diagnostics to the diagnostic sink, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	cfg := l.getConfig()
	if !cfg.InternalErrorsToStderr {
		return
	}

	// Ensure consistent "blocklog: " prefix
	if !strings.HasPrefix(format, "blocklog: ") {
		format = "blocklog: " + format
	}

	s, ok := l.diagWriter.Load().(*sink)
	if !ok || s == nil || s.w == nil {
		return
	}
	fmt.Fprintf(s.w, format, args...)
}
