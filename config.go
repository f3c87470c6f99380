package blocklog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values
type Config struct {
	// Log target
	Directory   string `toml:"directory"`     // Target directory on the storage device
	Category    string `toml:"category"`      // "csv" or "txt", selects the file extension
	MaxFileSize int64  `toml:"max_file_size"` // Size ceiling in bytes before rotating to the next index

	// Buffer and record limits
	BufferCapacity  int64 `toml:"buffer_capacity"`   // Number of record slots
	BufferReserve   int64 `toml:"buffer_reserve"`    // Slots left unused when deciding the buffer is full
	RecordMaxLength int64 `toml:"record_max_length"` // Max bytes of a stamped record line

	// Payload handling
	Sanitize bool `toml:"sanitize"` // Clean payloads with the category policy before stamping

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write operator diagnostics to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// Log target
	Directory:   "/logs",
	Category:    "csv",
	MaxFileSize: 1000000,

	// Buffer and record limits
	BufferCapacity:  defaultBufferCapacity,
	BufferReserve:   0,
	RecordMaxLength: defaultRecordMaxLength,

	// Payload handling
	Sanitize: true,

	// Internal error handling
	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("blocklog.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "blocklog.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty")
	}

	if _, err := ParseCategory(c.Category); err != nil {
		return err
	}

	if c.MaxFileSize <= 0 {
		return fmtErrorf("max_file_size must be positive: %d", c.MaxFileSize)
	}

	if c.BufferCapacity <= 0 || c.BufferCapacity > maxBufferCapacity {
		return fmtErrorf("buffer_capacity must be between 1 and %d: %d", maxBufferCapacity, c.BufferCapacity)
	}

	if c.RecordMaxLength <= 0 || c.RecordMaxLength > maxRecordMaxLength {
		return fmtErrorf("record_max_length must be between 1 and %d: %d", maxRecordMaxLength, c.RecordMaxLength)
	}

	// Cross-field validations
	if c.BufferReserve < 0 || c.BufferReserve >= c.BufferCapacity {
		return fmtErrorf("buffer_reserve (%d) must be non-negative and below buffer_capacity (%d)",
			c.BufferReserve, c.BufferCapacity)
	}

	return nil
}

// category returns the parsed category, callers must have validated the config
func (c *Config) category() Category {
	cat, _ := ParseCategory(c.Category)
	return cat
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
