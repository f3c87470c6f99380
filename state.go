package blocklog

import (
	"io"
	"sync/atomic"
)

// State encapsulates the runtime state of the logger.
// Readiness (Operational) and the flush lock (FlushPending) are independent:
// appends need Operational set and FlushPending clear.
type State struct {
	BusReady     atomic.Bool // Storage bus initialized and volume recognized
	Configured   atomic.Bool // SetupLogFile completed
	Operational  atomic.Bool // CheckInit passed
	FlushPending atomic.Bool // Buffer waiting to be drained, appends blocked
	Closed       atomic.Bool

	TotalRecords    atomic.Uint64 // Records accepted into the buffer
	RejectedRecords atomic.Uint64 // Appends rejected (not operational, too long, full)
	TotalFlushes    atomic.Uint64 // Successful drains
	TotalRotations  atomic.Uint64 // Index changes after an oversized file
	FailedSteps     atomic.Uint64 // Steps that returned StepFailed
	DroppedOnClose  atomic.Uint64 // Buffered records discarded by Close

	StartTime atomic.Value // stores time.Time, origin of record stamps
}

// sink is a wrapper around an io.Writer, atomic value type change workaround
type sink struct {
	w io.Writer
}

// reset clears lifecycle flags, counters survive
func (s *State) reset() {
	s.BusReady.Store(false)
	s.Configured.Store(false)
	s.Operational.Store(false)
	s.FlushPending.Store(false)
}
