package config

// LogFields returns the settings worth logging at startup as slog
// key-value pairs. The configuration holds no secrets.
func LogFields(cfg *ServerConfig) []any {
	role := "primary"
	if cfg.Replication.ReplicaOf != "" {
		role = "replica"
	}
	fields := []any{
		"addr", cfg.Server.Redis.Addr(),
		"role", role,
		"maxclients", cfg.Server.Redis.MaxClients,
		"ratelimit", cfg.Server.Redis.RateLimit.Enabled,
		"log_level", cfg.Log.Level,
	}
	if cfg.Replication.ReplicaOf != "" {
		fields = append(fields, "replicaof", cfg.Replication.ReplicaOf)
	}
	if cfg.Server.HTTP.Enabled {
		fields = append(fields, "http_addr", cfg.Server.HTTP.Addr)
	}
	return fields
}
