// Package config handles configuration loading and management for xhrkit.
//
// It provides functionality for:
//   - Loading configuration from .xhrkit.json or .xhrkit.yaml files
//   - Default configuration values
//   - XHRKIT_* environment overrides and .env files
package config
