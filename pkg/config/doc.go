// Package config handles configuration management for pkgweave.
// It supports loading configuration from multiple sources including
// the embedded defaults, TOML files, environment variables, and
// command-line flags.
package config
