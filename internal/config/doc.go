// Package config loads and validates the TOML configuration file.
//
// Load resolves the config path (explicit flag, ~/.config/clipvault/config.toml,
// or ./clipvault.toml), applies defaults for missing values, expands ~ in path
// fields, and validates the result. A missing config file is not an error:
// defaults describe a usable local-only setup.
package config
