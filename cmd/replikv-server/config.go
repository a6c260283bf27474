package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/infra/confloader"
	"github.com/yndnr/replikv/internal/server/config"
)

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"REPLIKV_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "address to listen on",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on",
		},
		&cli.StringFlag{
			Name:  "replicaof",
			Usage: `primary to replicate, "host port" or "host:port"`,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "http-addr",
			Usage: "enable the admin HTTP server on this address",
		},
	}
}

// loadConfig builds the configuration from defaults, the config file,
// .env, the environment and finally explicitly set flags.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if overrides := flagOverrides(c); len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides maps the flags set on the command line to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("host") {
		m["server.redis.host"] = c.String("host")
	}
	if c.IsSet("port") {
		m["server.redis.port"] = c.Int("port")
	}
	if c.IsSet("replicaof") {
		m["replication.replicaof"] = c.String("replicaof")
	}
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	if c.IsSet("http-addr") {
		m["server.http.enabled"] = true
		m["server.http.addr"] = c.String("http-addr")
	}
	return m
}
