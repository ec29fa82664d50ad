// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from the file named by --config, else from
// config.cue in the user config directory ($XDG_CONFIG_HOME/supypowers on
// Linux, ~/Library/Application Support/supypowers on macOS,
// %APPDATA%\supypowers on Windows), else from ./config.cue. Without a file
// the defaults apply. SUPYPOWERS_* environment variables override file values
// (SUPYPOWERS_EXECUTION_TIMEOUT overrides execution.timeout).
//
// Files are validated against the embedded #Config schema in
// config_schema.cue before they reach Viper; value constraints CUE cannot
// express are checked by Config.IsValid after decoding.
package config
