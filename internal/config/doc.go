// Package config loads, normalizes, and validates slidecast configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// provider API keys. The Config type centralizes every knob the daemon and
// CLI need: storage and log directories, external tool binaries, provider
// endpoints, and pipeline timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
