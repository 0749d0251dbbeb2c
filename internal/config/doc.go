// Package config handles configuration loading for spicefront.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SPICEFRONT_CONFIG environment variable
//  2. ~/.config/spicefront/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	authority:
//	  base_url: "${SPICEFRONT_AUTHORITY}"
//
// Syntax: ${VAR_NAME}
//
// # Sections
//
//   - server: the console's HTTP listen address
//   - authority: base URL of the remote auth authority
//   - session: cookie name and fallback credential file path
//   - routes: optional overrides for the route classification table
//   - logging: level (debug/info/warn/error) and format (text/json)
package config
