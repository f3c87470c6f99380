package blocklog

import (
	"path/filepath"
	"strconv"
	"strings"
)

// rotatingWriter drains a RecordBuffer into <dir>/<index><ext>, rotating to a
// higher index once the active file exceeds maxSize. It exclusively owns the
// active file handle.
type rotatingWriter struct {
	storage Storage
	dir     string
	ext     string
	maxSize int64

	index int64
	size  int64
	phase Phase
	file  FileHandle

	// Records of the current drain already written, so a retried WRITE resumes
	// after them instead of writing them twice
	written int
	// Bytes of records[written] already written by a short write
	partial int

	diag func(format string, args ...any)
}

func newRotatingWriter(storage Storage, dir, ext string, maxSize, index int64, diag func(string, ...any)) *rotatingWriter {
	return &rotatingWriter{
		storage: storage,
		dir:     dir,
		ext:     ext,
		maxSize: maxSize,
		index:   index,
		phase:   PhaseCheckSize,
		diag:    diag,
	}
}

// filePath returns the path of the file at the current index
func (w *rotatingWriter) filePath() string {
	return filepath.Join(w.dir, strconv.FormatInt(w.index, 10)+w.ext)
}

// step advances the state machine by one phase
func (w *rotatingWriter) step(buf *RecordBuffer) (StepResult, error) {
	switch w.phase {
	case PhaseCheckSize:
		return w.checkSize()
	case PhaseResolveIndex:
		return w.resolveIndex()
	case PhaseWrite:
		return w.write(buf)
	default:
		w.phase = PhaseCheckSize
		return StepPending, nil
	}
}

// checkSize lazily opens the active file and decides between rotation and write
func (w *rotatingWriter) checkSize() (StepResult, error) {
	path := w.filePath()
	if w.file == nil || !w.file.IsOpen() {
		f, err := w.storage.Open(path)
		if err != nil {
			return StepFailed, fmtErrorf("%w: failed to open '%s': %v", ErrStorageIO, path, err)
		}
		w.file = f
	}

	size, err := w.file.Size()
	if err != nil {
		w.release()
		return StepFailed, fmtErrorf("%w: failed to read size of '%s': %v", ErrStorageIO, path, err)
	}
	w.size = size

	if size > w.maxSize {
		w.phase = PhaseResolveIndex
	} else {
		w.phase = PhaseWrite
	}
	return StepPending, nil
}

// resolveIndex releases the oversized file and picks the next index from a directory scan
func (w *rotatingWriter) resolveIndex() (StepResult, error) {
	w.release()

	entries, err := w.storage.ListDir(w.dir)
	if err != nil {
		return StepFailed, fmtErrorf("%w: failed to list '%s': %v", ErrStorageIO, w.dir, err)
	}

	next, err := nextFileIndex(entries, w.ext, w.index)
	if err != nil {
		// Phase stays RESOLVE_INDEX until the directory is fixed
		return StepFailed, err
	}

	w.index = next
	w.size = 0
	w.phase = PhaseCheckSize
	return StepPending, nil
}

// write drains the buffer once the device is free
func (w *rotatingWriter) write(buf *RecordBuffer) (StepResult, error) {
	if w.storage.IsBusy() {
		return StepPending, nil
	}
	if w.file == nil || !w.file.IsOpen() {
		w.phase = PhaseCheckSize
		return StepPending, nil
	}

	path := w.filePath()
	records := buf.Records()
	for w.written < len(records) {
		n, err := w.file.Write(records[w.written][w.partial:])
		w.size += int64(n)
		w.partial += n
		if err != nil {
			w.release()
			w.phase = PhaseCheckSize
			return StepFailed, fmtErrorf("%w: failed to write '%s' (record %d of %d): %v",
				ErrStorageIO, path, w.written+1, len(records), err)
		}
		w.written++
		w.partial = 0
	}

	if err := w.file.Close(); err != nil {
		w.file = nil
		w.phase = PhaseCheckSize
		return StepFailed, fmtErrorf("%w: failed to close '%s': %v", ErrStorageIO, path, err)
	}
	w.file = nil

	buf.Clear()
	w.written = 0
	w.partial = 0
	w.phase = PhaseCheckSize
	return StepDone, nil
}

// release closes the active file handle if one is open
func (w *rotatingWriter) release() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if !f.IsOpen() {
		return nil
	}
	if err := f.Close(); err != nil {
		if w.diag != nil {
			w.diag("warning - failed to close '%s': %v\n", w.filePath(), err)
		}
		return err
	}
	return nil
}

// nextFileIndex returns one past the highest index found among entries named
// <digits><ext>, never lower than current+1. Any sub-directory aborts the scan.
func nextFileIndex(entries []DirEntry, ext string, current int64) (int64, error) {
	highest := current
	for _, e := range entries {
		if e.IsDir {
			return current, fmtErrorf("%w: '%s' is a directory", ErrUnexpectedDirectoryEntry, e.Name)
		}
		if idx, ok := parseFileIndex(e.Name, ext); ok && idx > highest {
			highest = idx
		}
	}
	return highest + 1, nil
}

// resumeIndex returns the highest existing file index, 0 for an empty directory.
// Sub-directories are skipped here; rotation reports them.
func resumeIndex(entries []DirEntry, ext string) int64 {
	var highest int64
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if idx, ok := parseFileIndex(e.Name, ext); ok && idx > highest {
			highest = idx
		}
	}
	return highest
}

// parseFileIndex extracts n from a name of the form <n><ext>
func parseFileIndex(name, ext string) (int64, bool) {
	if ext == "" || !strings.HasSuffix(name, ext) {
		return 0, false
	}
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		return 0, false
	}
	for _, c := range stem {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	idx, err := strconv.ParseInt(stem, 10, 64)
	if err != nil {
		return 0, false
	}
	return idx, true
}
