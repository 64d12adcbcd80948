// SPDX-License-Identifier: MPL-2.0

// Package config persists the interactive session's preferences between
// runs using Viper with TOML on disk: the last target binary, its argument
// list, the run count, the warmup flag, and the prior trace files to
// include on export.
//
// The file lives at ~/.config/precipice/config.toml (XDG equivalent on
// Linux, ~/Library/Application Support/precipice on macOS, %APPDATA% on
// Windows). List values are stored as a single delimited string so each
// key holds exactly one value. Paths that no longer exist on disk are
// silently dropped on load.
package config
