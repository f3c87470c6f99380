package compat

import (
	"errors"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/lixenwraith/blocklog"
)

// Guard serializes access to a single-producer Logger so that several
// goroutines (gnet event loops, fasthttp workers) can share it.
// All methods are safe for concurrent use.
type Guard struct {
	mu      sync.Mutex
	logger  *blocklog.Logger
	dropped atomic.Uint64
	split   atomic.Uint64
}

// NewGuard wraps logger
func NewGuard(logger *blocklog.Logger) *Guard {
	return &Guard{logger: logger}
}

// Logger returns the wrapped logger. Calls on it bypass the lock.
func (g *Guard) Logger() *blocklog.Logger {
	return g.logger
}

// LogData appends a single record
func (g *Guard) LogData(payload string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logger.LogData(payload)
}

// Step advances the flush state machine by one phase
func (g *Guard) Step() (blocklog.StepResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logger.Step()
}

// RequestFlush marks a partially filled buffer for draining
func (g *Guard) RequestFlush() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logger.RequestFlush()
}

// Drain requests a flush and steps until it completes or maxSteps is reached.
// Returns the last step result.
func (g *Guard) Drain(maxSteps int) (blocklog.StepResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.logger.FlushPending() && !g.logger.RequestFlush() {
		return blocklog.StepIdle, nil
	}
	res := blocklog.StepPending
	var err error
	for i := 0; i < maxSteps && res == blocklog.StepPending; i++ {
		res, err = g.logger.Step()
	}
	return res, err
}

// Close closes the wrapped logger
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logger.Close()
}

// Stats returns the wrapped logger counters
func (g *Guard) Stats() blocklog.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logger.Stats()
}

// Dropped returns the number of adapter messages (or message pieces) that
// could not be buffered
func (g *Guard) Dropped() uint64 {
	return g.dropped.Load()
}

// Splits returns the number of messages written as several records
func (g *Guard) Splits() uint64 {
	return g.split.Load()
}

// write appends prefix+msg, splitting msg into several records when the
// stamped line exceeds the slot bound. Pieces the logger refuses are dropped.
func (g *Guard) write(prefix, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.logger.LogData(prefix + msg)
	if err == nil {
		return
	}
	if !errors.Is(err, blocklog.ErrRecordTooLong) {
		g.dropped.Add(1)
		return
	}

	g.split.Add(1)
	g.writePieces(prefix, msg)
}

// writePieces halves msg on rune boundaries until every piece fits
func (g *Guard) writePieces(prefix, msg string) {
	err := g.logger.LogData(prefix + msg)
	switch {
	case err == nil:
		return
	case !errors.Is(err, blocklog.ErrRecordTooLong):
		g.dropped.Add(1)
		return
	case utf8.RuneCountInString(msg) <= 1:
		// Prefix alone does not fit
		g.dropped.Add(1)
		return
	}

	mid := len(msg) / 2
	for mid > 0 && !utf8.RuneStart(msg[mid]) {
		mid--
	}
	if mid == 0 {
		_, mid = utf8.DecodeRuneInString(msg)
	}
	g.writePieces(prefix, msg[:mid])
	g.writePieces(prefix, msg[mid:])
}
