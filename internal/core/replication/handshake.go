package replication

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/replikv/internal/core/command"
	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/internal/telemetry/logger"
	"github.com/yndnr/replikv/pkg/resp"
)

// DefaultDialTimeout bounds the connection attempt to the primary.
const DefaultDialTimeout = 5 * time.Second

// CapaPsync2 is the capability a replica announces.
const CapaPsync2 = "psync2"

type step struct {
	name      string
	cmd       command.Command
	wantReply bool
}

func handshakeSteps(ownPort int) []step {
	return []step{
		{name: "ping", cmd: command.Ping{}, wantReply: true},
		{name: "replconf listening-port", cmd: command.ReplConf{Sub: command.ListeningPort(ownPort)}, wantReply: true},
		{name: "replconf capa", cmd: command.ReplConf{Sub: command.Capa(CapaPsync2)}, wantReply: true},
		{name: "psync", cmd: command.FullResync(), wantReply: false},
	}
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Handshake runs the four handshake steps over link. Failures are
// domain.ErrHandshake naming the step and wrapping the cause.
//
// When link has a SetDeadline method, ctx cancellation interrupts blocked
// reads and writes.
func Handshake(ctx context.Context, link Link, ownPort int, log logger.Logger) error {
	if log == nil {
		log = logger.Default()
	}

	if d, ok := link.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = d.SetDeadline(time.Unix(1, 0))
		})
		defer func() {
			stop()
			_ = d.SetDeadline(time.Time{})
		}()
	}

	for i, s := range handshakeSteps(ownPort) {
		if err := ctx.Err(); err != nil {
			return stepError(i, s, "canceled", err)
		}

		if err := link.Write(resp.Encode(s.cmd.Message())); err != nil {
			return stepError(i, s, "write", ctxCause(ctx, err))
		}
		if !s.wantReply {
			log.Debug("handshake step sent", "step", s.name)
			continue
		}

		raw, err := link.Read()
		if err != nil {
			return stepError(i, s, "read", ctxCause(ctx, err))
		}
		reply, err := resp.Decode(raw)
		if err != nil {
			return stepError(i, s, "decode", err)
		}
		if e, ok := reply.(resp.Error); ok {
			return stepError(i, s, "error reply", errors.New(string(e)))
		}
		log.Debug("handshake step complete", "step", s.name, "reply", resp.TypeName(reply))
	}
	return nil
}

// Run performs the replica bootstrap: nothing for a primary, dial and
// handshake for a replica. The returned link stays open and is owned by
// the caller; it is nil for a primary.
func Run(ctx context.Context, state *domain.ReplicationState, ownPort int, dialTimeout time.Duration, log logger.Logger) (*ConnLink, error) {
	if state.Role() != domain.RoleReplica {
		return nil, nil
	}
	if log == nil {
		log = logger.Default()
	}
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}

	addr := state.PrimaryAddr()
	log = log.With("primary", addr)
	log.Info("connecting to primary")

	link, err := Dial(ctx, addr, dialTimeout)
	if err != nil {
		return nil, domain.ErrHandshake.WithDetails("dial").WithCause(err)
	}

	start := time.Now()
	if err := Handshake(ctx, link, ownPort, log); err != nil {
		_ = link.Close()
		return nil, err
	}
	log.Info("handshake complete", "duration", time.Since(start))
	return link, nil
}

func stepError(i int, s step, what string, cause error) error {
	return domain.ErrHandshake.
		WithDetailsf("step %d (%s): %s", i+1, s.name, what).
		WithCause(cause)
}

// ctxCause joins the context error when cancellation interrupted an I/O call.
func ctxCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
