// Package config loads, normalizes, and validates marquee's TOML
// configuration.
package config
