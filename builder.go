package blocklog

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger on storage with the specified configuration.
// The logger still needs Start (or BusInit, SetupLogFile, CheckInit).
func (b *Builder) Build(storage Storage) (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if storage == nil {
		return nil, fmtErrorf("storage cannot be nil")
	}

	logger := NewLogger(storage)
	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Config returns a copy of the accumulated configuration
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Directory sets the log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Category sets the file category.
func (b *Builder) Category(category Category) *Builder {
	b.cfg.Category = category.String()
	return b
}

// CategoryString sets the file category from a string.
func (b *Builder) CategoryString(category string) *Builder {
	if b.err != nil {
		return b
	}
	cat, err := ParseCategory(category)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Category = cat.String()
	return b
}

// MaxFileSize sets the file size ceiling in bytes.
func (b *Builder) MaxFileSize(size int64) *Builder {
	b.cfg.MaxFileSize = size
	return b
}

// MaxFileSizeKB sets the file size ceiling in KB. Convenience.
func (b *Builder) MaxFileSizeKB(size int64) *Builder {
	b.cfg.MaxFileSize = size * 1000
	return b
}

// BufferCapacity sets the number of record slots.
func (b *Builder) BufferCapacity(capacity int64) *Builder {
	b.cfg.BufferCapacity = capacity
	return b
}

// BufferReserve sets the number of slots left unused before a flush triggers.
func (b *Builder) BufferReserve(reserve int64) *Builder {
	b.cfg.BufferReserve = reserve
	return b
}

// RecordMaxLength sets the max bytes of a stamped record.
func (b *Builder) RecordMaxLength(length int64) *Builder {
	b.cfg.RecordMaxLength = length
	return b
}

// Sanitize enables payload sanitization.
func (b *Builder) Sanitize(enable bool) *Builder {
	b.cfg.Sanitize = enable
	return b
}

// InternalErrorsToStderr enables operator diagnostics.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Example usage:
// logger, err := blocklog.NewBuilder().
//
//	Directory("/logs").
//	Category(blocklog.CategoryCSV).
//	MaxFileSizeKB(512).
//	BufferCapacity(16).
//	Build(blocklog.NewOSStorage("/mnt/sd"))
//
// if err == nil && logger.Start() == nil {
//
//	 defer logger.Close()
//	 _ = logger.LogData("sensor ready")
//
// }
