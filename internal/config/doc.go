// Package config loads, normalizes, and validates zipcrack configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML files. Search defaults live here so the CLI only overrides what
// the user passes explicitly. Always obtain settings through this package so
// downstream code receives absolute paths and clear validation errors.
package config
