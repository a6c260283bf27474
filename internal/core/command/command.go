package command

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/pkg/resp"
)

// Command names.
const (
	NamePing     = "PING"
	NameEcho     = "ECHO"
	NameGet      = "GET"
	NameSet      = "SET"
	NameInfo     = "INFO"
	NameReplConf = "REPLCONF"
	NamePsync    = "PSYNC"
)

// Command is a parsed client request.
type Command interface {
	// Name returns the upper-case command name.
	Name() string
	// Message returns the request encoding of the command.
	Message() resp.Array
}

// Ping checks liveness.
type Ping struct{}

// Echo returns its argument.
type Echo struct {
	Text string
}

// Get reads a key.
type Get struct {
	Key string
}

// Set writes a key.
type Set struct {
	Key     string
	Value   string
	Options []SetOption // in the order supplied
}

// SetOption modifies a Set.
type SetOption interface {
	isSetOption()
	args() []string
}

// ExpireInMillis is the "px" option: the entry expires this many
// milliseconds after the write.
type ExpireInMillis uint64

// maxExpireMillis keeps the ttl representable as a time.Duration.
const maxExpireMillis = math.MaxInt64 / int64(time.Millisecond)

func (ExpireInMillis) isSetOption() {}

func (o ExpireInMillis) args() []string {
	return []string{"px", strconv.FormatUint(uint64(o), 10)}
}

// TTL returns the expiry of the last ExpireInMillis option, if any.
func (c Set) TTL() (time.Duration, bool) {
	var (
		ttl   time.Duration
		found bool
	)
	for _, opt := range c.Options {
		if px, ok := opt.(ExpireInMillis); ok {
			ttl = time.Duration(px) * time.Millisecond
			found = true
		}
	}
	return ttl, found
}

// InfoSection selects the INFO output.
type InfoSection int

const (
	// InfoAll is the default section when none is given.
	InfoAll InfoSection = iota
	// InfoReplication is the replication section.
	InfoReplication
)

// String returns the section name.
func (s InfoSection) String() string {
	if s == InfoReplication {
		return "replication"
	}
	return "all"
}

// Info reports server information.
type Info struct {
	Section InfoSection
}

// ReplConfSub is a REPLCONF subcommand.
type ReplConfSub interface {
	isReplConfSub()
	args() []string
}

// ListeningPort announces the port a replica listens on.
type ListeningPort int

// Capa announces a replica capability such as "psync2".
type Capa string

func (ListeningPort) isReplConfSub() {}
func (Capa) isReplConfSub()          {}

func (p ListeningPort) args() []string {
	return []string{"listening-port", strconv.Itoa(int(p))}
}

func (c Capa) args() []string {
	return []string{"capa", string(c)}
}

// ReplConf carries replication negotiation metadata.
type ReplConf struct {
	Sub ReplConfSub
}

// Psync requests synchronization from a primary. ReplID "?" with offset -1
// requests a full resync.
type Psync struct {
	ReplID string
	Offset int64
}

func (Ping) Name() string     { return NamePing }
func (Echo) Name() string     { return NameEcho }
func (Get) Name() string      { return NameGet }
func (Set) Name() string      { return NameSet }
func (Info) Name() string     { return NameInfo }
func (ReplConf) Name() string { return NameReplConf }
func (Psync) Name() string    { return NamePsync }

func (c Ping) Message() resp.Array { return resp.Command(NamePing) }
func (c Echo) Message() resp.Array { return resp.Command(NameEcho, c.Text) }
func (c Get) Message() resp.Array  { return resp.Command(NameGet, c.Key) }

func (c Set) Message() resp.Array {
	args := []string{NameSet, c.Key, c.Value}
	for _, opt := range c.Options {
		args = append(args, opt.args()...)
	}
	return resp.Command(args...)
}

func (c Info) Message() resp.Array {
	if c.Section == InfoReplication {
		return resp.Command(NameInfo, c.Section.String())
	}
	return resp.Command(NameInfo)
}

func (c ReplConf) Message() resp.Array {
	args := []string{NameReplConf}
	if c.Sub != nil {
		args = append(args, c.Sub.args()...)
	}
	return resp.Command(args...)
}

func (c Psync) Message() resp.Array {
	return resp.Command(NamePsync, c.ReplID, strconv.FormatInt(c.Offset, 10))
}

// FullResync is the PSYNC request a fresh replica sends.
func FullResync() Psync {
	return Psync{ReplID: "?", Offset: -1}
}

// Parse translates a decoded message into a Command.
func Parse(m resp.Message) (Command, error) {
	arr, ok := m.(resp.Array)
	if !ok {
		return nil, domain.ErrSyntax.WithDetailsf("expected array, got %s", resp.TypeName(m))
	}
	if len(arr) == 0 {
		return nil, domain.ErrUnknownCommand.WithDetails("empty command")
	}

	args := make([]string, len(arr))
	for i, e := range arr {
		s, ok := resp.Text(e)
		if !ok {
			return nil, domain.ErrSyntax.WithDetailsf("argument %d is a %s, expected string", i, resp.TypeName(e))
		}
		args[i] = s
	}

	name, rest := args[0], args[1:]
	switch name {
	case NamePing:
		return parsePing(rest)
	case NameEcho:
		return parseEcho(rest)
	case NameGet:
		return parseGet(rest)
	case NameSet:
		return parseSet(rest)
	case NameInfo:
		return parseInfo(rest)
	case NameReplConf:
		return parseReplConf(rest)
	case NamePsync:
		return parsePsync(rest)
	default:
		return nil, domain.ErrUnknownCommand.WithDetailsf("'%s'", name)
	}
}

func wrongArgs(name string) error {
	return domain.ErrWrongArgs.WithDetailsf("'%s' command", strings.ToLower(name))
}

func parsePing(args []string) (Command, error) {
	if len(args) != 0 {
		return nil, wrongArgs(NamePing)
	}
	return Ping{}, nil
}

func parseEcho(args []string) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArgs(NameEcho)
	}
	return Echo{Text: args[0]}, nil
}

func parseGet(args []string) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArgs(NameGet)
	}
	return Get{Key: args[0]}, nil
}

func parseSet(args []string) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArgs(NameSet)
	}

	cmd := Set{Key: args[0], Value: args[1]}
	opts := args[2:]
	for len(opts) > 0 {
		if opts[0] != "px" || len(opts) < 2 {
			return nil, domain.ErrSyntax.WithDetailsf("unexpected SET option %q", opts[0])
		}
		ms, err := strconv.ParseUint(opts[1], 10, 64)
		if err != nil || ms > uint64(maxExpireMillis) {
			return nil, domain.ErrNotInteger.WithDetailsf("px %q", opts[1])
		}
		cmd.Options = append(cmd.Options, ExpireInMillis(ms))
		opts = opts[2:]
	}
	return cmd, nil
}

func parseInfo(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return Info{Section: InfoAll}, nil
	case 1:
		if args[0] != InfoReplication.String() {
			return nil, domain.ErrInfoSection.WithDetailsf("%q", args[0])
		}
		return Info{Section: InfoReplication}, nil
	default:
		return nil, wrongArgs(NameInfo)
	}
}

func parseReplConf(args []string) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArgs(NameReplConf)
	}

	switch args[0] {
	case "listening-port":
		port, err := strconv.Atoi(args[1])
		if err != nil || port < 0 || port > 65535 {
			return nil, domain.ErrNotInteger.WithDetailsf("listening-port %q", args[1])
		}
		return ReplConf{Sub: ListeningPort(port)}, nil
	case "capa":
		return ReplConf{Sub: Capa(args[1])}, nil
	default:
		return nil, domain.ErrSyntax.WithDetailsf("unknown REPLCONF option %q", args[0])
	}
}

func parsePsync(args []string) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArgs(NamePsync)
	}
	offset, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, domain.ErrNotInteger.WithDetailsf("offset %q", args[1])
	}
	return Psync{ReplID: args[0], Offset: offset}, nil
}
