package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/replikv/internal/core/command"
	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/internal/core/replication"
	"github.com/yndnr/replikv/internal/infra/buildinfo"
	"github.com/yndnr/replikv/internal/infra/confloader"
	"github.com/yndnr/replikv/internal/infra/shutdown"
	"github.com/yndnr/replikv/internal/server/config"
	"github.com/yndnr/replikv/internal/server/httpserver"
	"github.com/yndnr/replikv/internal/server/httpserver/handler"
	"github.com/yndnr/replikv/internal/server/redisserver"
	"github.com/yndnr/replikv/internal/storage/memory"
	"github.com/yndnr/replikv/internal/storage/snapshot"
	"github.com/yndnr/replikv/internal/telemetry/logger"
	"github.com/yndnr/replikv/internal/telemetry/metric"
)

// shutdownTimeout bounds the time given to shutdown hooks.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "replikv-server",
		Usage:   "in-memory key-value server speaking the Redis protocol",
		Version: buildinfo.String(),
		Flags:   serverFlags(),
		Action:  run,
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("starting replikv-server", append([]any{"version", buildinfo.Get().Version}, config.LogFields(cfg)...)...)

	repl, err := config.ToReplicationState(cfg)
	if err != nil {
		return err
	}

	snapshots, err := initSnapshots(cfg)
	if err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}

	metrics := metric.Global()
	store := memory.New(memory.WithEvictHook(func(string) {
		metrics.IncKeysExpired()
	}))
	metrics.MustRegister(metric.NewCollector(store, repl))

	exec := command.NewExecutor(store, repl, snapshots)

	// Signals also interrupt the replica handshake.
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Registered first so it runs last.
	shutdownHandler.OnShutdown(func(context.Context) error {
		cancel()
		return nil
	})

	redisSrv := redisserver.New(&redisserver.Config{
		Addr:         cfg.Server.Redis.Addr(),
		MaxClients:   cfg.Server.Redis.MaxClients,
		ReadTimeout:  cfg.Server.Redis.Timeout.Read,
		WriteTimeout: cfg.Server.Redis.Timeout.Write,
		IdleTimeout:  cfg.Server.Redis.Timeout.Idle,
		RateLimit:    rateLimit(cfg),
		RateBurst:    cfg.Server.Redis.RateLimit.Burst,
	}, exec, metrics, log)
	// Bound now so the port advertised to a primary is real; clients are
	// only accepted once the handshake is done.
	if err := redisSrv.Listen(); err != nil {
		return fmt.Errorf("start redis listener: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down redis listener")
		return redisSrv.Shutdown(ctx)
	})

	var ready atomic.Bool
	ready.Store(repl.Role() == domain.RolePrimary)

	if cfg.Server.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Handler: handler.Config{
				Repl:    repl,
				Keys:    store,
				Ready:   ready.Load,
				Version: buildinfo.Get().Version,
			},
			Metrics: metrics.Handler(),
			Logger:  log,
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router, log)
		if err := httpSrv.Start(); err != nil {
			_ = redisSrv.Shutdown(context.Background())
			return fmt.Errorf("start http listener: %w", err)
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			return httpSrv.Shutdown(ctx)
		})
	}

	link, err := serveWhenSynced(ctx, redisSrv, repl, cfg.Replication.DialTimeout, metrics, log)
	if err != nil {
		shutdownHandler.Trigger()
		_ = shutdownHandler.Wait(context.Background())
		return err
	}
	ready.Store(true)
	if link != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			return link.Close()
		})
	}

	if path := c.String("config"); path != "" {
		stop, err := watchConfig(path, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return stop()
			})
		}
	}

	log.Info("server started", "addr", redisSrv.Addr().String())
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// initLogger creates the process logger and installs it as default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func initSnapshots(cfg *config.ServerConfig) (*snapshot.Static, error) {
	if cfg.Replication.Snapshot == "" {
		return snapshot.Empty(), nil
	}
	return snapshot.FromFile(cfg.Replication.Snapshot)
}

func rateLimit(cfg *config.ServerConfig) float64 {
	if !cfg.Server.Redis.RateLimit.Enabled {
		return 0
	}
	return cfg.Server.Redis.RateLimit.RPS
}

// serveWhenSynced runs the replica handshake, advertising the bound port,
// and then starts accepting clients. A primary serves at once and gets a
// nil link. srv must already be listening.
func serveWhenSynced(ctx context.Context, srv *redisserver.Server, repl *domain.ReplicationState, dialTimeout time.Duration, metrics *metric.Registry, log logger.Logger) (*replication.ConnLink, error) {
	var link *replication.ConnLink
	if repl.Role() == domain.RoleReplica {
		addr, ok := srv.Addr().(*net.TCPAddr)
		if !ok {
			return nil, fmt.Errorf("redis listener is not bound")
		}
		var err error
		link, err = handshake(ctx, repl, addr.Port, dialTimeout, metrics, log)
		if err != nil {
			return nil, err
		}
	}

	if err := srv.Serve(ctx); err != nil {
		if link != nil {
			_ = link.Close()
		}
		return nil, fmt.Errorf("serve redis clients: %w", err)
	}
	return link, nil
}

// handshake connects a replica to its primary and records the outcome.
func handshake(ctx context.Context, repl *domain.ReplicationState, ownPort int, dialTimeout time.Duration, metrics *metric.Registry, log logger.Logger) (*replication.ConnLink, error) {
	start := time.Now()
	link, err := replication.Run(ctx, repl, ownPort, dialTimeout, log)
	metrics.RecordHandshake(err == nil, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("replication: %w", err)
	}
	return link, nil
}

// watchConfig reloads log.level whenever the config file changes.
func watchConfig(path string, log logger.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		loader := confloader.NewLoader(confloader.WithDotEnv(""))
		if err := loader.LoadFile(changed); err != nil {
			log.Warn("config reload failed", "path", changed, "error", err)
			return
		}
		level := loader.GetString("log.level")
		if level == "" || level == logger.GetLevel() {
			return
		}
		if !logger.ValidLevel(level) {
			log.Warn("ignoring invalid log level", "level", level)
			return
		}
		logger.SetLevel(level)
		log.Info("log level changed", "level", level)
	})
	w.StartAsync()
	return w.Stop, nil
}
