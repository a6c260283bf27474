// Package confloader loads replikv configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (REPLIKV_ prefix, optionally seeded from a .env file)
//  3. Configuration file (YAML)
//  4. Default values (already present in the target struct)
//
// Environment names map to keys by dropping the prefix, lower-casing, and
// turning underscores into dots: REPLIKV_SERVER_REDIS_PORT sets
// server.redis.port. Config keys therefore never contain underscores.
//
// Watcher reports changes to the config file so callers can re-read
// settings that are safe to change at runtime.
package confloader
