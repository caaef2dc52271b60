// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// FormatText renders styled terminal output.
	FormatText OutputFormat = "text"
	// FormatJSON renders JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML renders YAML.
	FormatYAML OutputFormat = "yaml"
	// FormatTOML renders TOML.
	FormatTOML OutputFormat = "toml"

	// DefaultManifest is the root manifest file name.
	DefaultManifest = "composer.json"
	// DefaultDebounce is the quiet period before a watched change triggers a merge.
	DefaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how inspect and merge summaries are printed.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It collects field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the driver configuration.
	Config struct {
		// Manifest is the root manifest path, relative to the working directory.
		Manifest string `json:"manifest" mapstructure:"manifest"`
		// Dev enables development requirements.
		Dev bool `json:"dev" mapstructure:"dev"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Git configures the git downloader.
		Git GitConfig `json:"git" mapstructure:"git"`
		// Output configures command output.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Watch configures merge --watch.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// GitConfig configures registry member downloads.
	GitConfig struct {
		// CacheDir overrides the source cache; empty selects the default.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
	}

	// OutputConfig configures command output.
	OutputConfig struct {
		Format OutputFormat `json:"format" mapstructure:"format"`
	}

	// WatchConfig configures the file watcher.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}
)

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Dev:      true,
		Output:   OutputConfig{Format: FormatText},
		Watch:    WatchConfig{Debounce: DefaultDebounce},
	}
}

// Formats lists the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatYAML, FormatTOML}
}

// Error implements the error interface.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// Validate returns nil if the OutputFormat is one of the supported formats.
func (f OutputFormat) Validate() error {
	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return nil
	default:
		return &InvalidOutputFormatError{Value: f}
	}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// Validate collects every field error of the configuration.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Manifest) == "" {
		errs = append(errs, errors.New("manifest: must not be empty"))
	}
	if c.Git.CacheDir != "" && strings.TrimSpace(c.Git.CacheDir) == "" {
		errs = append(errs, errors.New("git.cache_dir: must not be whitespace-only"))
	}
	if err := c.Output.Format.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative (got %s)", c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is/As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
