package blocklog

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/afero"
)

// Storage is the block storage collaborator consumed by the logger.
// Every call is expected to return immediately, IsBusy is the non-blocking poll
// that gates writes.
type Storage interface {
	// Begin initializes the bus to the device
	Begin() error
	// VolumeValid reports whether the volume carries a recognized filesystem
	VolumeValid() bool
	// Open opens or creates the file at path in append mode
	Open(path string) (FileHandle, error)
	Exists(path string) bool
	Mkdir(path string) error
	IsBusy() bool
	ListDir(path string) ([]DirEntry, error)
	// End releases the bus
	End() error
}

// FileHandle is an open file on the storage device
type FileHandle interface {
	io.Writer
	Size() (int64, error)
	Close() error
	IsOpen() bool
}

// DirEntry is a single directory listing entry
type DirEntry struct {
	Name  string
	IsDir bool
}

// FSStorage implements Storage on top of an afero filesystem
type FSStorage struct {
	fs       afero.Fs
	begun    atomic.Bool
	busy     atomic.Bool
	busyFunc atomic.Value // stores func() bool
}

// NewFSStorage wraps an afero filesystem
func NewFSStorage(fs afero.Fs) *FSStorage {
	return &FSStorage{fs: fs}
}

// NewOSStorage roots the storage at a directory of the host filesystem
func NewOSStorage(root string) *FSStorage {
	return NewFSStorage(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewMemStorage creates an in-memory storage, used by tests and dry runs
func NewMemStorage() *FSStorage {
	return NewFSStorage(afero.NewMemMapFs())
}

// Fs exposes the underlying filesystem for inspection
func (s *FSStorage) Fs() afero.Fs {
	return s.fs
}

// SetBusy forces the busy state reported by IsBusy
func (s *FSStorage) SetBusy(busy bool) {
	s.busy.Store(busy)
}

// SetBusyFunc installs a poll function consulted in addition to SetBusy
func (s *FSStorage) SetBusyFunc(fn func() bool) {
	s.busyFunc.Store(fn)
}

// Begin checks the filesystem root is reachable
func (s *FSStorage) Begin() error {
	if s.fs == nil {
		return fmtErrorf("no filesystem attached")
	}
	if _, err := s.fs.Stat(string(os.PathSeparator)); err != nil {
		return fmtErrorf("storage root not reachable: %w", err)
	}
	s.begun.Store(true)
	return nil
}

// VolumeValid reports true once Begin succeeded
func (s *FSStorage) VolumeValid() bool {
	return s.begun.Load()
}

// Open opens or creates path for appending
func (s *FSStorage) Open(path string) (FileHandle, error) {
	f, err := s.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	h := &fsFile{f: f}
	h.open.Store(true)
	return h, nil
}

// Exists reports whether path exists
func (s *FSStorage) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// Mkdir creates path and any missing parents
func (s *FSStorage) Mkdir(path string) error {
	return s.fs.MkdirAll(path, 0755)
}

// IsBusy polls the busy state
func (s *FSStorage) IsBusy() bool {
	if s.busy.Load() {
		return true
	}
	if fn, ok := s.busyFunc.Load().(func() bool); ok && fn != nil {
		return fn()
	}
	return false
}

// ListDir lists the entries of path
func (s *FSStorage) ListDir(path string) ([]DirEntry, error) {
	infos, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, err
	}
	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{Name: info.Name(), IsDir: info.IsDir()})
	}
	return entries, nil
}

// End marks the bus released
func (s *FSStorage) End() error {
	s.begun.Store(false)
	return nil
}

// fsFile adapts afero.File to FileHandle
type fsFile struct {
	f    afero.File
	open atomic.Bool
}

func (h *fsFile) Write(p []byte) (int, error) {
	return h.f.Write(p)
}

func (h *fsFile) Size() (int64, error) {
	info, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (h *fsFile) Close() error {
	if !h.open.CompareAndSwap(true, false) {
		return nil
	}
	return h.f.Close()
}

func (h *fsFile) IsOpen() bool {
	return h.open.Load()
}
