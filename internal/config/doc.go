// Package config loads, normalizes, and validates the TOML configuration
// shared by the reelvault daemon and CLI.
package config
