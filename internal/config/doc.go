// Package config loads, normalizes, and validates v2s configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// V2S_ENGINE_COMMAND. The Config type centralizes every knob the daemon and
// CLI need, so the worker launch command, state directories, and log routing
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
