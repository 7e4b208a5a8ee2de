// Package config provides 12-factor configuration for the hub.
//
// Configuration is loaded from environment variables with defaults; the
// serve command can override the listen address with flags.
//
// Configuration Sections:
//   - Server: HTTP listen address
//   - Oracle: generative AI endpoint, model and limits
//   - Terminal: simulation pacing
//   - Catalog: directory of extra simulation files
//   - Notify: banner lifetime
//   - Logging: level and format
//   - RateLimit: per-IP request limits
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("listening on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
