package blocklog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/logs", cfg.Directory)
	assert.Equal(t, "csv", cfg.Category)
	assert.Equal(t, int64(1000000), cfg.MaxFileSize)
	assert.Equal(t, int64(10), cfg.BufferCapacity)
	assert.Equal(t, int64(0), cfg.BufferReserve)
	assert.Equal(t, int64(50), cfg.RecordMaxLength)
	assert.True(t, cfg.Sanitize)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.NoError(t, cfg.Validate())
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Directory = "/custom/path"
	cfg1.BufferCapacity = 5

	cfg2 := cfg1.Clone()

	// Verify deep copy
	assert.Equal(t, cfg1.Directory, cfg2.Directory)
	assert.Equal(t, cfg1.BufferCapacity, cfg2.BufferCapacity)

	// Modify original
	cfg1.BufferCapacity = 20

	// Verify clone unchanged
	assert.Equal(t, int64(5), cfg2.BufferCapacity)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:      "empty directory",
			modify:    func(c *Config) { c.Directory = "  " },
			wantError: "directory cannot be empty",
		},
		{
			name:      "unknown category",
			modify:    func(c *Config) { c.Category = "log" },
			wantError: "invalid category",
		},
		{
			name:      "zero max file size",
			modify:    func(c *Config) { c.MaxFileSize = 0 },
			wantError: "max_file_size must be positive",
		},
		{
			name:      "zero capacity",
			modify:    func(c *Config) { c.BufferCapacity = 0 },
			wantError: "buffer_capacity must be between",
		},
		{
			name:      "capacity above bound",
			modify:    func(c *Config) { c.BufferCapacity = maxBufferCapacity + 1 },
			wantError: "buffer_capacity must be between",
		},
		{
			name:      "record length above bound",
			modify:    func(c *Config) { c.RecordMaxLength = maxRecordMaxLength + 1 },
			wantError: "record_max_length must be between",
		},
		{
			name:      "negative reserve",
			modify:    func(c *Config) { c.BufferReserve = -1 },
			wantError: "buffer_reserve",
		},
		{
			name:      "reserve equal to capacity",
			modify:    func(c *Config) { c.BufferReserve = c.BufferCapacity },
			wantError: "buffer_reserve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"directory":       "/sd/logs",
		"category":        "txt",
		"buffer_capacity": 16,
		"sanitize":        false,
	})
	require.NoError(t, err)
	assert.Equal(t, "/sd/logs", cfg.Directory)
	assert.Equal(t, "txt", cfg.Category)
	assert.Equal(t, int64(16), cfg.BufferCapacity)
	assert.False(t, cfg.Sanitize)

	_, err = NewConfigFromDefaults(map[string]any{"level": "debug"})
	assert.ErrorContains(t, err, "unknown config key")

	_, err = NewConfigFromDefaults(map[string]any{"buffer_capacity": "ten"})
	assert.ErrorContains(t, err, "expected int64")

	_, err = NewConfigFromDefaults(map[string]any{"max_file_size": -5})
	assert.ErrorContains(t, err, "max_file_size must be positive")
}

func TestNewConfigFromFile(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blocklog.toml")
		content := `[blocklog]
directory = "/mnt/sd/flight"
category = "txt"
max_file_size = 4096
buffer_capacity = 32
sanitize = false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/mnt/sd/flight", cfg.Directory)
		assert.Equal(t, "txt", cfg.Category)
		assert.Equal(t, int64(4096), cfg.MaxFileSize)
		assert.Equal(t, int64(32), cfg.BufferCapacity)
		assert.False(t, cfg.Sanitize)
		assert.Equal(t, int64(50), cfg.RecordMaxLength, "unset keys keep defaults")
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[blocklog]\nbuffer_capacity = 0\n"), 0644))

		_, err := NewConfigFromFile(path)
		assert.ErrorContains(t, err, "buffer_capacity")
	})
}
