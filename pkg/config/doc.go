// Package config handles configuration management for archup.
// Configuration is layered: embedded defaults, then the user file (TOML or
// YAML), then ARCHUP_* environment variables. The merged tree is decoded
// into Config with mapstructure hooks for durations and comma lists.
package config
