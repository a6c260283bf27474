package command

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/pkg/resp"
)

// Store is the key-value storage the executor writes to.
type Store interface {
	Set(key, value string)
	SetWithTTL(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
}

// SnapshotSource produces the payload sent after FULLRESYNC.
type SnapshotSource interface {
	Snapshot() ([]byte, error)
}

// Executor runs commands against a store and the replication state.
type Executor struct {
	store     Store
	repl      *domain.ReplicationState
	snapshots SnapshotSource
}

// NewExecutor creates an Executor.
func NewExecutor(store Store, repl *domain.ReplicationState, snapshots SnapshotSource) *Executor {
	return &Executor{
		store:     store,
		repl:      repl,
		snapshots: snapshots,
	}
}

// Execute runs cmd and returns the replies in send order.
// Most commands produce one reply; PSYNC produces two.
func (e *Executor) Execute(cmd Command) ([]resp.Message, error) {
	switch c := cmd.(type) {
	case Ping:
		return one(resp.SimpleString("PONG")), nil
	case Echo:
		return one(resp.BulkString(c.Text)), nil
	case Get:
		return e.get(c), nil
	case Set:
		return e.set(c), nil
	case Info:
		return e.info(c), nil
	case ReplConf:
		return one(resp.SimpleString("OK")), nil
	case Psync:
		return e.psync(c)
	default:
		return nil, domain.ErrUnknownCommand.WithDetailsf("'%T'", cmd)
	}
}

// Result is the outcome of handling one request.
type Result struct {
	// Command is nil when the request did not parse.
	Command Command
	// Replies are sent in order. After an error they hold the single
	// error reply.
	Replies []resp.Message
	// Err is the parse or execution error.
	Err error
}

// Handle parses m and executes it.
func (e *Executor) Handle(m resp.Message) Result {
	cmd, err := Parse(m)
	if err != nil {
		return Result{Replies: one(ErrorReply(err)), Err: err}
	}
	replies, err := e.Execute(cmd)
	if err != nil {
		return Result{Command: cmd, Replies: one(ErrorReply(err)), Err: err}
	}
	return Result{Command: cmd, Replies: replies}
}

func (e *Executor) get(c Get) []resp.Message {
	value, ok := e.store.Get(c.Key)
	if !ok {
		return one(resp.Null)
	}
	return one(resp.BulkString(value))
}

func (e *Executor) set(c Set) []resp.Message {
	if ttl, ok := c.TTL(); ok {
		e.store.SetWithTTL(c.Key, c.Value, ttl)
	} else {
		e.store.Set(c.Key, c.Value)
	}
	return one(resp.SimpleString("OK"))
}

func (e *Executor) info(Info) []resp.Message {
	// "all" and "replication" render the same block; replication is the
	// only section this server has.
	lines := e.repl.Info().InfoLines()
	return one(resp.BulkString(strings.Join(lines, "\r\n")))
}

func (e *Executor) psync(Psync) ([]resp.Message, error) {
	info := e.repl.Info()
	payload, err := e.snapshots.Snapshot()
	if err != nil {
		return nil, domain.ErrInternal.WithDetails("snapshot unavailable").WithCause(err)
	}
	header := "FULLRESYNC " + info.ReplID + " " + strconv.FormatInt(info.ReplOffset, 10)
	return []resp.Message{
		resp.SimpleString(header),
		resp.BinaryPayload(payload),
	}, nil
}

// ErrorReply converts err into the error frame sent to a client.
// CR and LF are replaced so that client-supplied text cannot break framing.
func ErrorReply(err error) resp.Error {
	var text string
	var de *domain.DomainError
	switch {
	case errors.As(err, &de):
		text = de.ReplyText()
	case errors.Is(err, resp.ErrProtocol), errors.Is(err, resp.ErrLimitExceeded):
		text = domain.ErrProtocol.WithDetails(err.Error()).ReplyText()
	default:
		text = domain.ErrInternal.ReplyText()
	}
	return resp.Error("ERR " + replyEscaper.Replace(text))
}

var replyEscaper = strings.NewReplacer("\r", " ", "\n", " ")

func one(m resp.Message) []resp.Message {
	return []resp.Message{m}
}
