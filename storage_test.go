package blocklog

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected fault")

// faultyStorage wraps an in-memory storage with switchable failures
type faultyStorage struct {
	*FSStorage
	failBegin   bool
	badVolume   bool
	failMkdir   bool
	failOpen    bool
	failList    bool
	failClose   bool
	writeBudget int // writes allowed before failing, negative for unlimited
	shortWrite  int // bytes stored by the failing write
	ended       int
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{FSStorage: NewMemStorage(), writeBudget: -1}
}

func (s *faultyStorage) Begin() error {
	if s.failBegin {
		return errInjected
	}
	return s.FSStorage.Begin()
}

func (s *faultyStorage) VolumeValid() bool {
	return !s.badVolume && s.FSStorage.VolumeValid()
}

func (s *faultyStorage) Mkdir(path string) error {
	if s.failMkdir {
		return errInjected
	}
	return s.FSStorage.Mkdir(path)
}

func (s *faultyStorage) Open(path string) (FileHandle, error) {
	if s.failOpen {
		return nil, errInjected
	}
	h, err := s.FSStorage.Open(path)
	if err != nil {
		return nil, err
	}
	return &faultyFile{FileHandle: h, storage: s}, nil
}

func (s *faultyStorage) ListDir(path string) ([]DirEntry, error) {
	if s.failList {
		return nil, errInjected
	}
	return s.FSStorage.ListDir(path)
}

func (s *faultyStorage) End() error {
	s.ended++
	return s.FSStorage.End()
}

type faultyFile struct {
	FileHandle
	storage *faultyStorage
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.storage.writeBudget == 0 {
		n := min(f.storage.shortWrite, len(p))
		if n > 0 {
			n, _ = f.FileHandle.Write(p[:n])
		}
		return n, errInjected
	}
	if f.storage.writeBudget > 0 {
		f.storage.writeBudget--
	}
	return f.FileHandle.Write(p)
}

func (f *faultyFile) Close() error {
	err := f.FileHandle.Close()
	if f.storage.failClose {
		return errInjected
	}
	return err
}

func TestFSStorageOpenAppends(t *testing.T) {
	s := NewMemStorage()
	require.NoError(t, s.Begin())
	assert.True(t, s.VolumeValid())
	require.NoError(t, s.Mkdir("/logs"))
	assert.True(t, s.Exists("/logs"))

	for _, chunk := range []string{"one\n", "two\n"} {
		f, err := s.Open("/logs/0.csv")
		require.NoError(t, err)
		assert.True(t, f.IsOpen())
		_, err = f.Write([]byte(chunk))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.False(t, f.IsOpen())
		assert.NoError(t, f.Close(), "second close is a no-op")
	}

	data, err := afero.ReadFile(s.Fs(), "/logs/0.csv")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))

	f, err := s.Open("/logs/0.csv")
	require.NoError(t, err)
	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
	require.NoError(t, f.Close())
}

func TestFSStorageListDir(t *testing.T) {
	s := NewMemStorage()
	require.NoError(t, s.Mkdir("/logs/archive"))
	require.NoError(t, afero.WriteFile(s.Fs(), "/logs/3.csv", nil, 0644))

	entries, err := s.ListDir("/logs")
	require.NoError(t, err)
	assert.ElementsMatch(t, []DirEntry{
		{Name: "archive", IsDir: true},
		{Name: "3.csv", IsDir: false},
	}, entries)

	_, err = s.ListDir("/missing")
	assert.Error(t, err)
}

func TestFSStorageBusy(t *testing.T) {
	s := NewMemStorage()
	assert.False(t, s.IsBusy())

	s.SetBusy(true)
	assert.True(t, s.IsBusy())
	s.SetBusy(false)

	polls := 0
	s.SetBusyFunc(func() bool {
		polls++
		return polls <= 2
	})
	assert.True(t, s.IsBusy())
	assert.True(t, s.IsBusy())
	assert.False(t, s.IsBusy())
}

func TestFSStorageEnd(t *testing.T) {
	s := NewMemStorage()
	require.NoError(t, s.Begin())
	require.NoError(t, s.End())
	assert.False(t, s.VolumeValid())
}

func TestOSStorage(t *testing.T) {
	s := NewOSStorage(t.TempDir())
	require.NoError(t, s.Begin())
	require.NoError(t, s.Mkdir("/logs"))

	f, err := s.Open("/logs/0.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.True(t, s.Exists("/logs/0.txt"))
}
