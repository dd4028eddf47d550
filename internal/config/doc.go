// Package config loads, normalizes, and validates discsplit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the external
// tool names, output format, dispatch limits, and the per-domain codec
// priority tables consumed by stream selection.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical codec lists, and clear validation errors.
package config
