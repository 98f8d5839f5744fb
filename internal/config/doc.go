// Package config loads, normalizes, and validates the cardpress TOML
// configuration.
package config
