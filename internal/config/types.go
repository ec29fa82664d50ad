// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTimeout bounds one child process.
	DefaultTimeout = 5 * time.Minute
	// DefaultMaxOutputBytes caps each captured stream (16 MiB).
	DefaultMaxOutputBytes int64 = 16 << 20
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBinaryName is returned when uv.binary is empty or whitespace-only.
	ErrInvalidBinaryName = errors.New("invalid uv binary")
	// ErrInvalidTimeout is returned when execution.timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid execution timeout")
	// ErrInvalidOutputLimit is returned when execution.max_output_bytes is not positive.
	ErrInvalidOutputLimit = errors.New("invalid output limit")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// BinaryName is the name or path of the uv executable.
	BinaryName string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// UV configures how the uv executable is invoked.
		UV UVConfig `json:"uv" mapstructure:"uv"`
		// Execution bounds each child process.
		Execution ExecutionConfig `json:"execution" mapstructure:"execution"`
		// Input configures how input_data is interpreted.
		Input InputConfig `json:"input" mapstructure:"input"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UVConfig configures the uv invocation.
	UVConfig struct {
		Binary BinaryName `json:"binary" mapstructure:"binary"`
		Quiet  bool       `json:"quiet" mapstructure:"quiet"`
		// Python, when set, is passed as --python for every launch.
		Python string `json:"python" mapstructure:"python"`
	}

	// ExecutionConfig bounds each child process.
	ExecutionConfig struct {
		Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`
		MaxOutputBytes int64         `json:"max_output_bytes" mapstructure:"max_output_bytes"`
	}

	// InputConfig configures input_data handling.
	InputConfig struct {
		// Strict accepts JSON only.
		Strict bool `json:"strict" mapstructure:"strict"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		UV: UVConfig{
			Binary: "uv",
			Quiet:  true,
		},
		Execution: ExecutionConfig{
			Timeout:        DefaultTimeout,
			MaxOutputBytes: DefaultMaxOutputBytes,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the ColorScheme is one of the defined values.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (valid: auto, dark, light)", ErrInvalidColorScheme, c)}
	}
}

// IsValid returns whether the BinaryName is non-blank.
func (b BinaryName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(b)) == "" {
		return false, []error{fmt.Errorf("%w: must not be empty", ErrInvalidBinaryName)}
	}
	return true, nil
}

// IsValid returns whether the timeout and output limit are positive.
func (c ExecutionConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s (must be greater than zero)", ErrInvalidTimeout, c.Timeout))
	}
	if c.MaxOutputBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d (must be greater than zero)", ErrInvalidOutputLimit, c.MaxOutputBytes))
	}
	return len(errs) == 0, errs
}

// IsValid validates every section of the Config.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UV.Binary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Execution.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
