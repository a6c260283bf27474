package config

import "time"

// Default configuration values.
const (
	DefaultRedisHost  = "127.0.0.1"
	DefaultRedisPort  = 6379
	DefaultMaxClients = 10000

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 0

	DefaultRateLimitRPS   = 1000
	DefaultRateLimitBurst = 2000

	DefaultHTTPAddr = "127.0.0.1:9121"

	DefaultDialTimeout = 5 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Host:       DefaultRedisHost,
				Port:       DefaultRedisPort,
				MaxClients: DefaultMaxClients,
				Timeout: TimeoutConfig{
					Read:  DefaultReadTimeout,
					Write: DefaultWriteTimeout,
					Idle:  DefaultIdleTimeout,
				},
				RateLimit: RateLimitConfig{
					Enabled: false,
					RPS:     DefaultRateLimitRPS,
					Burst:   DefaultRateLimitBurst,
				},
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Replication: ReplicationSection{
			DialTimeout: DefaultDialTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
