package blocklog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/blocklog/formatter"
	"github.com/lixenwraith/blocklog/sanitizer"
)

// Logger buffers stamped records and drains them into size-bounded rotating
// files through a polled flush state machine. A Logger has a single producer
// and is driven by the caller's scheduler, it never blocks or starts goroutines.
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	storage       Storage
	buffer        *RecordBuffer
	writer        *rotatingWriter
	formatter     *formatter.Formatter
	diagWriter    atomic.Value // stores *sink
	now           func() time.Time
}

// NewLogger creates a new Logger on storage with default settings
func NewLogger(storage Storage) *Logger {
	l := &Logger{
		storage: storage,
		now:     time.Now,
	}

	cfg := DefaultConfig()
	l.currentConfig.Store(cfg)
	l.rebuild(cfg)

	l.state.reset()
	l.state.Closed.Store(false)
	l.state.StartTime.Store(l.now())
	l.diagWriter.Store(&sink{w: os.Stderr})

	return l
}

// ApplyConfig applies a validated configuration. Buffer geometry changes are
// refused while records are buffered. Target changes (directory, category,
// max_file_size) take effect on the next Start or SetupLogFile.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	if l.buffer.Len() > 0 || l.state.FlushPending.Load() {
		old := l.getConfig()
		if old.BufferCapacity != cfg.BufferCapacity || old.RecordMaxLength != cfg.RecordMaxLength ||
			old.BufferReserve != cfg.BufferReserve {
			return fmtErrorf("cannot resize buffer with %d records pending", l.buffer.Len())
		}
	} else {
		l.rebuild(cfg)
	}

	l.currentConfig.Store(cfg.Clone())
	l.formatter = newFormatter(cfg)
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// SetDiagnosticWriter redirects operator diagnostics, stderr by default
func (l *Logger) SetDiagnosticWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.diagWriter.Store(&sink{w: w})
}

// Start runs BusInit, SetupLogFile and CheckInit from the current configuration
func (l *Logger) Start() error {
	cfg := l.getConfig()
	if err := l.BusInit(); err != nil {
		return err
	}
	if err := l.SetupLogFile(cfg.Directory, cfg.category(), cfg.MaxFileSize); err != nil {
		return err
	}
	return l.CheckInit()
}

// BusInit initializes the storage bus and checks the volume format
func (l *Logger) BusInit() error {
	if err := l.storage.Begin(); err != nil {
		l.state.BusReady.Store(false)
		l.internalLog("storage error: %v\n", err)
		return fmtErrorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !l.storage.VolumeValid() {
		l.state.BusReady.Store(false)
		l.internalLog("invalid filesystem\n")
		return fmtErrorf("%w: volume format not recognized", ErrInvalidFilesystem)
	}

	l.state.BusReady.Store(true)
	l.state.Closed.Store(false)
	return nil
}

// SetupLogFile configures the log target, creating dir when missing. Files are
// named <index><ext> in dir, resuming at the highest existing index (0 when
// none). Buffered records and a pending flush survive a repeated setup.
func (l *Logger) SetupLogFile(dir string, category Category, maxFileSize int64) error {
	if !l.state.BusReady.Load() {
		return fmtErrorf("%w: run BusInit first", ErrStorageUnavailable)
	}

	ext := category.Extension()
	if ext == "" {
		return fmtErrorf("invalid category: %v", category)
	}
	if strings.TrimSpace(dir) == "" {
		return fmtErrorf("directory cannot be empty")
	}
	if maxFileSize <= 0 {
		return fmtErrorf("max file size must be positive: %d", maxFileSize)
	}

	l.state.Operational.Store(false)
	l.state.Configured.Store(false)

	if !l.storage.Exists(dir) {
		if err := l.storage.Mkdir(dir); err != nil {
			l.internalLog("failed to create log directory '%s': %v\n", dir, err)
			return fmtErrorf("%w: '%s': %v", ErrDirectoryCreateFailed, dir, err)
		}
	}

	entries, err := l.storage.ListDir(dir)
	if err != nil {
		l.internalLog("failed to list log directory '%s': %v\n", dir, err)
		return fmtErrorf("%w: failed to list '%s': %v", ErrStorageIO, dir, err)
	}
	for _, e := range entries {
		if e.IsDir {
			l.internalLog("warning - sub-directory '%s' in log directory '%s' will block rotation\n", e.Name, dir)
		}
	}
	index := resumeIndex(entries, ext)

	writer := newRotatingWriter(l.storage, dir, ext, maxFileSize, index, l.internalLog)
	if l.writer != nil {
		_ = l.writer.release()
		// Records of an interrupted drain that already reached storage
		writer.written = l.writer.written
		writer.partial = l.writer.partial
	}
	l.writer = writer

	cfg := l.getConfig().Clone()
	cfg.Directory = dir
	cfg.Category = category.String()
	cfg.MaxFileSize = maxFileSize
	l.formatter = newFormatter(cfg)
	l.currentConfig.Store(cfg)

	l.state.Configured.Store(true)
	return nil
}

// CheckInit marks the logger operational once setup completed
func (l *Logger) CheckInit() error {
	if !l.state.Configured.Load() {
		l.internalLog("run SetupLogFile first\n")
		return fmtErrorf("%w: log file not set up", ErrNotOperational)
	}
	l.state.Operational.Store(true)
	return nil
}

// RequestFlush marks a partially filled buffer for draining. Returns false if
// the logger is not operational, the buffer is empty or a flush is already pending.
func (l *Logger) RequestFlush() bool {
	if !l.state.Operational.Load() || l.buffer.Len() == 0 {
		return false
	}
	return l.state.FlushPending.CompareAndSwap(false, true)
}

// Step advances the flush state machine by one phase. Call it on every
// scheduler tick until it reports StepDone; StepIdle means nothing is pending.
func (l *Logger) Step() (StepResult, error) {
	if !l.state.FlushPending.Load() {
		return StepIdle, nil
	}
	if !l.state.Operational.Load() || !l.state.Configured.Load() || l.writer == nil {
		l.state.FailedSteps.Add(1)
		return StepFailed, fmtErrorf("%w: flush requires SetupLogFile and CheckInit", ErrNotOperational)
	}

	prevIndex := l.writer.index
	res, err := l.writer.step(l.buffer)
	if l.writer.index != prevIndex {
		l.state.TotalRotations.Add(1)
	}

	switch res {
	case StepDone:
		l.state.FlushPending.Store(false)
		l.state.TotalFlushes.Add(1)

	case StepFailed:
		l.state.FailedSteps.Add(1)
		// Structural failure: the operator must run SetupLogFile and CheckInit again
		l.state.Operational.Store(false)
		l.state.Configured.Store(false)
		if errors.Is(err, ErrUnexpectedDirectoryEntry) {
			l.internalLog("rotation aborted, fix the log directory: %v\n", err)
		} else {
			l.internalLog("flush failed in %s: %v\n", l.writer.phase, err)
		}
	}

	return res, err
}

// Close releases the file handle and the bus, discarding buffered records.
// It does nothing and returns ErrDeviceBusy while the storage is busy.
func (l *Logger) Close() error {
	if l.storage.IsBusy() {
		return fmtErrorf("%w: close deferred", ErrDeviceBusy)
	}

	var finalErr error
	if l.writer != nil {
		if err := l.writer.release(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file during close: %w", err))
		}
		l.writer = nil
	}

	if n := l.buffer.Len(); n > 0 {
		l.state.DroppedOnClose.Add(uint64(n))
		l.internalLog("warning - closing with %d unflushed records\n", n)
	}
	l.buffer.Clear()

	if l.state.BusReady.Load() {
		if err := l.storage.End(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to end storage bus: %w", err))
		}
	}

	l.state.reset()
	l.state.Closed.Store(true)
	return finalErr
}

// IsOperational reports whether LogData would currently accept a record
func (l *Logger) IsOperational() bool {
	return l.state.Operational.Load() && !l.state.FlushPending.Load()
}

// FlushPending reports whether a drain is in progress
func (l *Logger) FlushPending() bool {
	return l.state.FlushPending.Load()
}

// Phase returns the current flush phase
func (l *Logger) Phase() Phase {
	if l.writer == nil {
		return PhaseCheckSize
	}
	return l.writer.phase
}

// FileIndex returns the index of the active log file
func (l *Logger) FileIndex() int64 {
	if l.writer == nil {
		return 0
	}
	return l.writer.index
}

// CurrentFile returns the path of the active log file, empty before setup
func (l *Logger) CurrentFile() string {
	if l.writer == nil {
		return ""
	}
	return l.writer.filePath()
}

// Buffered returns a copy of the records waiting in the buffer
func (l *Logger) Buffered() []string {
	records := l.buffer.Records()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = string(r)
	}
	return out
}

// getConfig returns the current configuration
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// rebuild allocates the buffer and formatter for cfg
func (l *Logger) rebuild(cfg *Config) {
	l.buffer = NewRecordBuffer(int(cfg.BufferCapacity), int(cfg.RecordMaxLength), int(cfg.BufferReserve))
	l.formatter = newFormatter(cfg)
}

// elapsed returns the stamp for a new record
func (l *Logger) elapsed() time.Duration {
	start, _ := l.state.StartTime.Load().(time.Time)
	d := l.now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// newFormatter picks the sanitizer policy for the configured category
func newFormatter(cfg *Config) *formatter.Formatter {
	san := sanitizer.New()
	if cfg.Sanitize {
		switch cfg.category() {
		case CategoryCSV:
			san.Policy(sanitizer.PolicyCSV)
		default:
			san.Policy(sanitizer.PolicyTxt)
		}
	}
	return formatter.New(san)
}

// String summarizes the logger state for diagnostics
func (l *Logger) String() string {
	return fmt.Sprintf("blocklog{file=%s phase=%s buffered=%d/%d operational=%t pending=%t}",
		l.CurrentFile(), l.Phase(), l.buffer.Len(), l.buffer.Cap(),
		l.state.Operational.Load(), l.state.FlushPending.Load())
}
