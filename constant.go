package blocklog

import (
	"fmt"
)

// Category selects the file extension used for log files
type Category int64

// Log file categories
const (
	CategoryCSV Category = iota
	CategoryTXT
)

// Extension returns the file extension including the leading dot
func (c Category) Extension() string {
	switch c {
	case CategoryCSV:
		return ".csv"
	case CategoryTXT:
		return ".txt"
	default:
		return ""
	}
}

// String returns the config name of the category
func (c Category) String() string {
	switch c {
	case CategoryCSV:
		return "csv"
	case CategoryTXT:
		return "txt"
	default:
		return fmt.Sprintf("category(%d)", int64(c))
	}
}

// Phase is the current step of the flush state machine
type Phase int

// Flush phases, the machine cycles CheckSize -> [ResolveIndex -> CheckSize] -> Write -> CheckSize
const (
	PhaseCheckSize Phase = iota
	PhaseResolveIndex
	PhaseWrite
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseCheckSize:
		return "CHECK_SIZE"
	case PhaseResolveIndex:
		return "RESOLVE_INDEX"
	case PhaseWrite:
		return "WRITE"
	default:
		return fmt.Sprintf("PHASE(%d)", int(p))
	}
}

// StepResult reports the outcome of a single flush step
type StepResult int

// Step results
const (
	StepIdle    StepResult = iota // No flush pending
	StepPending                   // Flush in progress, call Step again
	StepDone                      // Buffer drained and file closed
	StepFailed                    // Step aborted, see returned error
)

// String returns the result name
func (r StepResult) String() string {
	switch r {
	case StepIdle:
		return "idle"
	case StepPending:
		return "pending"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Buffer and record bounds
const (
	// Number of record slots in the buffer
	defaultBufferCapacity int64 = 10
	// Maximum bytes of a stamped record line
	defaultRecordMaxLength int64 = 50
	// Upper bounds accepted by validation
	maxBufferCapacity  int64 = 4096
	maxRecordMaxLength int64 = 4096
)
