package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for replikv-server.
type ServerConfig struct {
	Server      ServerSection      `koanf:"server"`
	Replication ReplicationSection `koanf:"replication"`
	Log         LogSection         `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the client protocol listener.
type RedisConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// MaxClients caps concurrent client connections. 0 means unlimited.
	MaxClients int `koanf:"maxclients"`

	Timeout   TimeoutConfig   `koanf:"timeout"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// Addr returns the listen address.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TimeoutConfig holds per-connection deadlines. Zero disables a deadline.
type TimeoutConfig struct {
	// Read bounds the time to receive the rest of a started command.
	Read time.Duration `koanf:"read"`
	// Write bounds the time to send the replies of one command.
	Write time.Duration `koanf:"write"`
	// Idle closes a connection with no command for this long.
	Idle time.Duration `koanf:"idle"`
}

// RateLimitConfig configures the per-client-IP command rate limit.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// HTTPConfig configures the admin HTTP server (/metrics, /health).
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// ReplicationSection configures the node role.
type ReplicationSection struct {
	// ReplicaOf is the primary address, "host port" or "host:port".
	// Empty means this node is a primary.
	ReplicaOf string `koanf:"replicaof"`

	// DialTimeout bounds the connection attempt to the primary.
	DialTimeout time.Duration `koanf:"dialtimeout"`

	// Snapshot is an RDB file served after FULLRESYNC. Empty serves an
	// empty dataset.
	Snapshot string `koanf:"snapshot"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
