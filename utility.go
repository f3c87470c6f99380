package blocklog

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy, match with errors.Is
var (
	// ErrNotOperational rejects appends and flushes before setup or during an active flush
	ErrNotOperational = errors.New("logger not operational")
	// ErrRecordTooLong rejects a record exceeding the slot bound
	ErrRecordTooLong = errors.New("record too long")
	// ErrBufferFull rejects an append into a buffer with no free slot
	ErrBufferFull = errors.New("record buffer full")
	// ErrStorageUnavailable reports a storage bus or device initialization failure
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidFilesystem reports an unrecognized volume format
	ErrInvalidFilesystem = errors.New("invalid filesystem")
	// ErrDirectoryCreateFailed reports a log directory that could not be created
	ErrDirectoryCreateFailed = errors.New("directory create failed")
	// ErrUnexpectedDirectoryEntry reports a sub-directory found during index resolution
	ErrUnexpectedDirectoryEntry = errors.New("unexpected directory entry")
	// ErrDeviceBusy is a transient retry signal, not a failure
	ErrDeviceBusy = errors.New("storage device busy")
	// ErrStorageIO reports an open, write, close or listing failure on the storage device
	ErrStorageIO = errors.New("storage i/o failure")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "blocklog: ") {
		format = "blocklog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// ParseCategory converts a category name to its constant.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CategoryCSV, nil
	case "txt":
		return CategoryTXT, nil
	default:
		return 0, fmtErrorf("invalid category: '%s' (use csv or txt)", name)
	}
}
