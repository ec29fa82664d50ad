// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/supypowers/supypowers/internal/cueutil"
	"github.com/supypowers/supypowers/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "supypowers"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "SUPYPOWERS"
)

// ErrConfigFileNotFound is returned when an explicit --config path does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the supypowers configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading. The returned path is
// the file that was read, or empty when only defaults and environment apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("uv.binary", string(defaults.UV.Binary))
	v.SetDefault("uv.quiet", defaults.UV.Quiet)
	v.SetDefault("uv.python", defaults.UV.Python)
	v.SetDefault("execution.timeout", defaults.Execution.Timeout.String())
	v.SetDefault("execution.max_output_bytes", defaults.Execution.MaxOutputBytes)
	v.SetDefault("input.strict", defaults.Input.Strict)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	// An explicit --config path is used exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'supypowers config show' to see the effective configuration").
				Wrap(fmt.Errorf("%w: %s", ErrConfigFileNotFound, opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'supypowers config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("parse configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(resolvedPath).
			Wrap(err).
			BuildError()
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(resolvedPath).
			WithSuggestion("execution.timeout and execution.max_output_bytes must be greater than zero").
			WithSuggestion("Check SUPYPOWERS_* environment variables for stray overrides").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, env still wins)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir unless one
// already exists. It returns the file path and whether it was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// supypowers configuration file\n")
	sb.WriteString("// See 'supypowers config --help' for the available options.\n\n")

	sb.WriteString("uv: {\n")
	sb.WriteString("\tbinary: " + strconv.Quote(string(cfg.UV.Binary)) + "\n")
	sb.WriteString("\tquiet:  " + strconv.FormatBool(cfg.UV.Quiet) + "\n")
	if cfg.UV.Python != "" {
		sb.WriteString("\tpython: " + strconv.Quote(cfg.UV.Python) + "\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("execution: {\n")
	sb.WriteString("\ttimeout:          " + strconv.Quote(cfg.Execution.Timeout.String()) + "\n")
	sb.WriteString("\tmax_output_bytes: " + strconv.FormatInt(cfg.Execution.MaxOutputBytes, 10) + "\n")
	sb.WriteString("}\n\n")

	sb.WriteString("input: {\n")
	sb.WriteString("\tstrict: " + strconv.FormatBool(cfg.Input.Strict) + "\n")
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	sb.WriteString("\tverbose:      " + strconv.FormatBool(cfg.UI.Verbose) + "\n")
	sb.WriteString("\tcolor_scheme: " + strconv.Quote(string(cfg.UI.ColorScheme)) + "\n")
	sb.WriteString("}\n")

	return sb.String()
}
