package blocklog

import (
	"fmt"
	"time"
)

// Stats is a snapshot of the logger counters
type Stats struct {
	Uptime          time.Duration
	FileIndex       int64
	Phase           Phase
	Buffered        int
	Capacity        int
	TotalRecords    uint64
	RejectedRecords uint64
	TotalFlushes    uint64
	TotalRotations  uint64
	FailedSteps     uint64
	DroppedOnClose  uint64
	Operational     bool
	FlushPending    bool
}

// Stats returns the current counters
func (l *Logger) Stats() Stats {
	return Stats{
		Uptime:          l.elapsed(),
		FileIndex:       l.FileIndex(),
		Phase:           l.Phase(),
		Buffered:        l.buffer.Len(),
		Capacity:        l.buffer.Cap(),
		TotalRecords:    l.state.TotalRecords.Load(),
		RejectedRecords: l.state.RejectedRecords.Load(),
		TotalFlushes:    l.state.TotalFlushes.Load(),
		TotalRotations:  l.state.TotalRotations.Load(),
		FailedSteps:     l.state.FailedSteps.Load(),
		DroppedOnClose:  l.state.DroppedOnClose.Load(),
		Operational:     l.state.Operational.Load(),
		FlushPending:    l.state.FlushPending.Load(),
	}
}

// Args renders the snapshot as key-value pairs
func (s Stats) Args() []any {
	return []any{
		"uptime_s", fmt.Sprintf("%.2f", s.Uptime.Seconds()),
		"file_index", s.FileIndex,
		"phase", s.Phase.String(),
		"buffered", fmt.Sprintf("%d/%d", s.Buffered, s.Capacity),
		"records", s.TotalRecords,
		"rejected", s.RejectedRecords,
		"flushes", s.TotalFlushes,
		"rotations", s.TotalRotations,
		"failed_steps", s.FailedSteps,
		"dropped_on_close", s.DroppedOnClose,
	}
}
