package compat

import (
	"fmt"

	"github.com/lixenwraith/blocklog"
)

// Builder provides a flexible way to create configured logger adapters for gnet and fasthttp.
// It can use an existing Guard or Logger, or create a new logger from a Config and Storage.
// All adapters built by one Builder share one Guard.
type Builder struct {
	guard   *Guard
	logger  *blocklog.Logger
	logCfg  *blocklog.Config
	storage blocklog.Storage
	err     error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithGuard specifies an existing guard, takes precedence over everything else
func (b *Builder) WithGuard(g *Guard) *Builder {
	if g == nil {
		b.err = fmt.Errorf("blocklog/compat: provided guard cannot be nil")
		return b
	}
	b.guard = g
	return b
}

// WithLogger specifies an existing logger to wrap.
// If this is set WithConfig and WithStorage are ignored.
func (b *Builder) WithLogger(l *blocklog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("blocklog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance
func (b *Builder) WithConfig(cfg *blocklog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// WithStorage provides the storage for a new logger instance
func (b *Builder) WithStorage(s blocklog.Storage) *Builder {
	b.storage = s
	return b
}

// getGuard resolves the guard to be used, creating and starting a logger if necessary
func (b *Builder) getGuard() (*Guard, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.guard != nil {
		return b.guard, nil
	}

	if b.logger == nil {
		if b.storage == nil {
			return nil, fmt.Errorf("blocklog/compat: storage required to create a logger")
		}
		l := blocklog.NewLogger(b.storage)
		cfg := b.logCfg
		if cfg == nil {
			cfg = blocklog.DefaultConfig()
		}
		if err := l.ApplyConfig(cfg); err != nil {
			return nil, err
		}
		if err := l.Start(); err != nil {
			return nil, err
		}
		b.logger = l
	}

	// Cache the guard for subsequent builds with this builder
	b.guard = NewGuard(b.logger)
	return b.guard, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	g, err := b.getGuard()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(g, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	g, err := b.getGuard()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(g, opts...), nil
}

// GetGuard returns the shared guard, creating it if needed.
// The host scheduler drives Step through it.
func (b *Builder) GetGuard() (*Guard, error) {
	return b.getGuard()
}

// --- Example Usage ---
//
//	logger := blocklog.NewLogger(blocklog.NewOSStorage("/mnt/sd"))
//	if err := logger.Start(); err != nil { /* handle error */ }
//
//	builder := compat.NewBuilder().WithLogger(logger)
//	gnetLogger, _ := builder.BuildGnet()
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	guard, _ := builder.GetGuard()
//
//	// Drive the flush from the host's periodic callback, e.g. gnet OnTick
//	res, err := guard.Step()
