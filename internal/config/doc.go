// Package config handles loading and parsing inkwell's configuration file.
//
// # Overview
//
// The config file tells inkwell where the remote feed store lives, how often
// to refresh, and where to put its log and integration history. Every field is
// optional; a missing file yields Default().
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/inkwell/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8750"
//	refresh_interval = 60   # seconds, 0 disables silent refresh
//	counts_interval = 30    # seconds
//	request_timeout = 10    # seconds
//	log_file = "~/.local/state/inkwell/inkwell.log"
//	history_db = "~/.local/share/inkwell/history.db"
//
// Tilde expansion is performed on both paths. Relative paths are made
// absolute against the working directory.
//
// # Error Handling
//
// Load returns an error for unreadable files, malformed TOML, and a negative
// refresh_interval. A missing file is not an error.
package config
