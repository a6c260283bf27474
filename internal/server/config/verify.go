package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyRedis(&cfg.Server.Redis); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	if err := verifyReplication(&cfg.Replication); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyRedis(cfg *RedisConfig) error {
	if cfg.Host == "" {
		return errors.New("server.redis.host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("server.redis.port %d out of range 1-65535", cfg.Port)
	}
	if cfg.MaxClients < 0 {
		return errors.New("server.redis.maxclients must not be negative")
	}
	if cfg.Timeout.Read < 0 || cfg.Timeout.Write < 0 || cfg.Timeout.Idle < 0 {
		return errors.New("server.redis.timeout values must not be negative")
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return errors.New("server.redis.ratelimit.rps must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return errors.New("server.redis.ratelimit.burst must be at least 1")
		}
	}
	return nil
}

func verifyHTTP(cfg *HTTPConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.Addr, err)
	}
	return nil
}

func verifyReplication(cfg *ReplicationSection) error {
	if cfg.ReplicaOf != "" {
		if _, _, err := domain.ParseReplicaOf(cfg.ReplicaOf); err != nil {
			return fmt.Errorf("replication.replicaof: %w", err)
		}
		if cfg.DialTimeout <= 0 {
			return errors.New("replication.dialtimeout must be positive")
		}
	}
	if cfg.Snapshot != "" {
		if _, err := os.Stat(cfg.Snapshot); err != nil {
			return fmt.Errorf("replication.snapshot: %w", err)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format %q is not json or text", cfg.Format)
	}
}
