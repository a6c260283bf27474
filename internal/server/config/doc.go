// Package config provides server configuration for replikv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation
//   - sanitize.go: Startup log fields
//   - replication.go: Mapping to the domain replication state
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// environment variables, and command-line flags.
package config
