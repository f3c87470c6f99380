package blocklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("successful build returns configured logger", func(t *testing.T) {
		logger, err := NewBuilder().
			Directory("/flight").
			CategoryString("TXT").
			MaxFileSizeKB(4).
			BufferCapacity(16).
			BufferReserve(1).
			RecordMaxLength(64).
			Sanitize(false).
			InternalErrorsToStderr(false).
			Build(NewMemStorage())

		require.NoError(t, err, "Builder.Build() should not return an error on valid config")
		require.NotNil(t, logger)

		cfg := logger.GetConfig()
		assert.Equal(t, "/flight", cfg.Directory)
		assert.Equal(t, "txt", cfg.Category)
		assert.Equal(t, int64(4000), cfg.MaxFileSize)
		assert.Equal(t, int64(16), cfg.BufferCapacity)
		assert.Equal(t, int64(1), cfg.BufferReserve)
		assert.Equal(t, int64(64), cfg.RecordMaxLength)
		assert.False(t, cfg.Sanitize)
		assert.False(t, cfg.InternalErrorsToStderr)

		assert.Equal(t, 16, logger.buffer.Cap())
		assert.Equal(t, 64, logger.buffer.SlotLength())

		require.NoError(t, logger.Start())
		assert.Equal(t, "/flight/0.txt", logger.CurrentFile())
	})

	t.Run("builder error accumulation", func(t *testing.T) {
		logger, err := NewBuilder().
			CategoryString("json").
			Directory("/some/dir").
			Build(NewMemStorage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid category")
		assert.Nil(t, logger)
	})

	t.Run("apply config validation error", func(t *testing.T) {
		logger, err := NewBuilder().
			BufferCapacity(2).
			BufferReserve(2).
			Build(NewMemStorage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Nil(t, logger)
	})

	t.Run("nil storage", func(t *testing.T) {
		logger, err := NewBuilder().Build(nil)
		assert.Error(t, err)
		assert.Nil(t, logger)
	})
}

func TestBuilder_Config(t *testing.T) {
	b := NewBuilder().Category(CategoryTXT).MaxFileSize(512)

	cfg, err := b.Config()
	require.NoError(t, err)
	assert.Equal(t, "txt", cfg.Category)
	assert.Equal(t, int64(512), cfg.MaxFileSize)

	// Returned config is a copy
	cfg.MaxFileSize = 1
	again, err := b.Config()
	require.NoError(t, err)
	assert.Equal(t, int64(512), again.MaxFileSize)
}
