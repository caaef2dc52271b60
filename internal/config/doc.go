// SPDX-License-Identifier: MPL-2.0

// Package config handles driver configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/monorepo/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/monorepo/config.cue on macOS, %APPDATA%\monorepo\config.cue
// on Windows), falling back to ./config.cue. MONOREPO_* environment variables override
// file values (e.g., MONOREPO_OUTPUT_FORMAT=json).
//
// Configuration files are validated against a CUE schema (config_schema.cue) before
// they are merged into Viper.
package config
