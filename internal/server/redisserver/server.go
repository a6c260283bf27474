package redisserver

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/yndnr/replikv/internal/core/command"
	"github.com/yndnr/replikv/internal/telemetry/logger"
	"github.com/yndnr/replikv/internal/telemetry/metric"
	"github.com/yndnr/replikv/pkg/resp"
)

// limiterIdle is how long an IP's rate limiter survives without traffic.
const limiterIdle = 10 * time.Minute

// Config holds the client listener configuration.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:6379".
	Addr string
	// MaxClients caps concurrent connections. 0 means unlimited.
	MaxClients int
	// ReadTimeout bounds reading the rest of a request once its first byte
	// arrived. 0 disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the replies of one request. 0 disables it.
	WriteTimeout time.Duration
	// IdleTimeout closes connections that send nothing for this long.
	// 0 disables it.
	IdleTimeout time.Duration
	// RateLimit is the allowed commands per second per client IP.
	// 0 disables rate limiting.
	RateLimit float64
	// RateBurst is the bucket size of the per-IP rate limit.
	RateBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		MaxClients:   10000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server accepts client connections and executes their commands.
type Server struct {
	cfg     *Config
	exec    *command.Executor
	metrics *metric.Registry
	logger  logger.Logger
	limiter *ipLimiter

	mu      sync.Mutex
	ln      net.Listener
	serving bool
	conns   *xsync.MapOf[string, *Conn]
	active  atomic.Int64
	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a server. A nil metrics registry gets a private one.
func New(cfg *Config, exec *command.Executor, metrics *metric.Registry, log logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		cfg:     cfg,
		exec:    exec,
		metrics: metrics,
		logger:  log.With("component", "redisserver"),
		conns:   xsync.NewMapOf[string, *Conn](),
		done:    make(chan struct{}),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newIPLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	return s
}

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("redisserver: server closed")

// Start binds the listener and serves connections in the background.
// A bind failure is returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the listener without accepting. Clients that connect before
// Serve wait in the listen backlog.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return errors.New("redisserver: already listening")
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("listening", "address", ln.Addr().String())
	return nil
}

// Serve starts accepting connections on the bound listener.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.ln == nil:
		return errors.New("redisserver: Serve called before Listen")
	case s.serving:
		return errors.New("redisserver: already serving")
	case !s.running.Load():
		return ErrServerClosed
	}
	s.serving = true
	ln := s.ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("accept loop stopped", "error", err)
		}
	}()

	if s.limiter != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweepLimiters()
		}()
	}
	s.logger.Info("accepting clients")
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// Shutdown closes the listener and every open connection, then waits for
// connection goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.CompareAndSwap(true, false) {
		s.mu.Unlock()
		return nil
	}
	close(s.done)
	s.mu.Unlock()

	var firstErr error
	if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		firstErr = err
	}

	s.conns.Range(func(_ string, c *Conn) bool {
		_ = c.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if limit := s.cfg.MaxClients; limit > 0 && s.active.Load() >= int64(limit) {
			s.reject(nc, "maxclients", "ERR max number of clients reached")
			continue
		}

		c := s.track(nc)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.conns.Delete(c.id)
				s.active.Add(-1)
				s.metrics.ConnectionClosed()
			}()
			s.serveConn(ctx, c)
		}()
	}
}

// track registers a new connection. A connection accepted while Shutdown
// runs may miss its sweep, so it is closed here and its goroutine exits on
// the first read.
func (s *Server) track(nc net.Conn) *Conn {
	c := newConn(nc)
	s.active.Add(1)
	s.conns.Store(c.id, c)
	s.metrics.ConnectionOpened()

	select {
	case <-s.done:
		_ = c.Close()
	default:
	}
	return c
}

func (s *Server) reject(nc net.Conn, reason, msg string) {
	s.metrics.RecordRejectedConnection(reason)
	s.logger.Warn("connection rejected", "remote", nc.RemoteAddr().String(), "reason", reason)
	_ = nc.SetWriteDeadline(time.Now().Add(time.Second))
	_ = resp.WriteMessage(nc, resp.Error(msg))
	_ = nc.Close()
}

func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(limiterIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.limiter.sweep(limiterIdle); n > 0 {
				s.logger.Debug("dropped idle rate limiters", "count", n)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.With("remote", c.RemoteAddr().String()).WithContext(ctx)
	ctx = logger.WithLogger(ctx, log)
	log.Debug("client connected")
	defer func() {
		log.Debug("client disconnected", "commands", c.commands.Load(), "duration", time.Since(c.opened))
	}()

	for {
		// Between requests only the idle timeout applies.
		if err := c.netConn.SetReadDeadline(deadline(s.cfg.IdleTimeout)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			s.logReadEnd(log, err)
			return
		}

		// Once a request started it must arrive within the read timeout.
		if err := c.netConn.SetReadDeadline(deadline(s.cfg.ReadTimeout)); err != nil {
			return
		}
		req, err := readRequest(c.br)
		if err != nil {
			if isProtocolError(err) {
				s.metrics.IncProtocolErrors()
				log.Warn("protocol error", "error", err)
				_ = s.writeReplies(c, []resp.Message{command.ErrorReply(err)})
				return
			}
			s.logReadEnd(log, err)
			return
		}
		if req == nil {
			continue
		}

		replies := s.handle(ctx, c, req)
		if err := s.writeReplies(c, replies); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

// handle runs one request and returns its replies.
func (s *Server) handle(ctx context.Context, c *Conn, req resp.Message) []resp.Message {
	c.commands.Add(1)

	if s.limiter != nil && !s.limiter.allow(c.remoteIP()) {
		s.metrics.RecordCommand(commandLabel(req), metric.ResultRateLimited)
		return []resp.Message{resp.Error("ERR rate limit exceeded")}
	}

	start := time.Now()
	res := s.exec.Handle(req)
	if res.Command == nil {
		s.metrics.RecordCommand(commandLabel(req), metric.ResultError)
		logger.L(ctx).Debug("command rejected", "error", res.Err)
		return res.Replies
	}

	name := res.Command.Name()
	s.metrics.ObserveCommandDuration(name, time.Since(start).Seconds())
	if res.Err != nil {
		s.metrics.RecordCommand(name, metric.ResultError)
		logger.L(ctx).Warn("command failed", "command", name, "error", res.Err)
		return res.Replies
	}

	s.metrics.RecordCommand(name, metric.ResultOK)
	if name == command.NamePsync {
		s.metrics.IncFullResyncs()
		logger.L(ctx).Info("full resync sent to replica")
	}
	return res.Replies
}

func (s *Server) writeReplies(c *Conn, replies []resp.Message) error {
	if err := c.netConn.SetWriteDeadline(deadline(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	for _, m := range replies {
		if err := resp.WriteMessage(c.bw, m); err != nil {
			return err
		}
	}
	return c.bw.Flush()
}

func (s *Server) logReadEnd(log logger.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
	default:
		log.Debug("connection read error", "error", err)
	}
}

func isProtocolError(err error) bool {
	return errors.Is(err, resp.ErrProtocol) || errors.Is(err, resp.ErrLimitExceeded)
}

// commandLabel returns a bounded metric label for a request that failed
// to parse.
func commandLabel(req resp.Message) string {
	if arr, ok := req.(resp.Array); ok && len(arr) > 0 {
		if name, ok := resp.Text(arr[0]); ok {
			switch name {
			case command.NamePing, command.NameEcho, command.NameGet, command.NameSet,
				command.NameInfo, command.NameReplConf, command.NamePsync:
				return name
			}
		}
	}
	return "unknown"
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}
