// Package config loads, normalizes, and validates the toml configuration for
// the scenepack engine and CLI. Path fields are tilde-expanded and made
// absolute at load time so downstream code never deals with relative paths.
package config
