package command

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/pkg/resp"
)

// ============================================================================
// Parse
// ============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   resp.Message
		want Command
	}{
		{"ping", resp.Command("PING"), Ping{}},
		{"echo", resp.Command("ECHO", "hey"), Echo{Text: "hey"}},
		{"echo simple string args", resp.Array{resp.SimpleString("ECHO"), resp.SimpleString("hi")}, Echo{Text: "hi"}},
		{"get", resp.Command("GET", "k"), Get{Key: "k"}},
		{"set", resp.Command("SET", "key", "value"), Set{Key: "key", Value: "value"}},
		{"set px", resp.Command("SET", "k", "v", "px", "100"), Set{Key: "k", Value: "v", Options: []SetOption{ExpireInMillis(100)}}},
		{"set repeated px", resp.Command("SET", "k", "v", "px", "1", "px", "2"), Set{Key: "k", Value: "v", Options: []SetOption{ExpireInMillis(1), ExpireInMillis(2)}}},
		{"info", resp.Command("INFO"), Info{Section: InfoAll}},
		{"info replication", resp.Command("INFO", "replication"), Info{Section: InfoReplication}},
		{"replconf port", resp.Command("REPLCONF", "listening-port", "6380"), ReplConf{Sub: ListeningPort(6380)}},
		{"replconf capa", resp.Command("REPLCONF", "capa", "psync2"), ReplConf{Sub: Capa("psync2")}},
		{"psync full", resp.Command("PSYNC", "?", "-1"), Psync{ReplID: "?", Offset: -1}},
		{"psync partial", resp.Command("PSYNC", "abc", "42"), Psync{ReplID: "abc", Offset: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   resp.Message
		want error
	}{
		{"not an array", resp.BulkString("PING"), domain.ErrSyntax},
		{"empty array", resp.Array{}, domain.ErrUnknownCommand},
		{"unknown", resp.Command("FLUSHALL"), domain.ErrUnknownCommand},
		{"lower case name", resp.Command("ping"), domain.ErrUnknownCommand},
		{"non string element", resp.Array{resp.BulkString("GET"), resp.Array{}}, domain.ErrSyntax},
		{"null element", resp.Array{resp.BulkString("GET"), resp.Null}, domain.ErrSyntax},
		{"ping with args", resp.Command("PING", "x"), domain.ErrWrongArgs},
		{"echo no args", resp.Command("ECHO"), domain.ErrWrongArgs},
		{"get two keys", resp.Command("GET", "a", "b"), domain.ErrWrongArgs},
		{"set missing value", resp.Command("SET", "k"), domain.ErrWrongArgs},
		{"set unknown option", resp.Command("SET", "k", "v", "ex", "10"), domain.ErrSyntax},
		{"set upper PX", resp.Command("SET", "k", "v", "PX", "10"), domain.ErrSyntax},
		{"set px missing value", resp.Command("SET", "k", "v", "px"), domain.ErrSyntax},
		{"set px not a number", resp.Command("SET", "k", "v", "px", "soon"), domain.ErrNotInteger},
		{"set px negative", resp.Command("SET", "k", "v", "px", "-5"), domain.ErrNotInteger},
		{"set px overflow", resp.Command("SET", "k", "v", "px", "99999999999999999999"), domain.ErrNotInteger},
		{"info unknown section", resp.Command("INFO", "memory"), domain.ErrInfoSection},
		{"info explicit all", resp.Command("INFO", "all"), domain.ErrInfoSection},
		{"info two sections", resp.Command("INFO", "replication", "memory"), domain.ErrWrongArgs},
		{"replconf no args", resp.Command("REPLCONF"), domain.ErrWrongArgs},
		{"replconf unknown", resp.Command("REPLCONF", "ack", "0"), domain.ErrSyntax},
		{"replconf bad port", resp.Command("REPLCONF", "listening-port", "abc"), domain.ErrNotInteger},
		{"replconf port range", resp.Command("REPLCONF", "listening-port", "70000"), domain.ErrNotInteger},
		{"psync one arg", resp.Command("PSYNC", "?"), domain.ErrWrongArgs},
		{"psync bad offset", resp.Command("PSYNC", "?", "x"), domain.ErrNotInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err == nil {
				t.Fatalf("Parse() = %#v, want error", got)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
			if !domain.IsCommandError(err) {
				t.Errorf("IsCommandError(%v) = false", err)
			}
		})
	}
}

func TestParse_DecodedPing(t *testing.T) {
	m, err := resp.Decode([]byte("*1\r\n$4\r\nPING\r\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	cmd, err := Parse(m)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := cmd.(Ping); !ok {
		t.Errorf("Parse() = %#v, want Ping", cmd)
	}
}

func TestParse_DecodedSet(t *testing.T) {
	m, err := resp.Decode([]byte("*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	cmd, err := Parse(m)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	set, ok := cmd.(Set)
	if !ok {
		t.Fatalf("Parse() = %#v, want Set", cmd)
	}
	if set.Key != "key" || set.Value != "value" || len(set.Options) != 0 {
		t.Errorf("Parse() = %#v", set)
	}
}

// ============================================================================
// Request encoding
// ============================================================================

func TestCommand_Message(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Ping{}, "*1\r\n$4\r\nPING\r\n"},
		{Echo{Text: "hi"}, "*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"},
		{Get{Key: "k"}, "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"},
		{Set{Key: "k", Value: "v", Options: []SetOption{ExpireInMillis(100)}}, "*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\npx\r\n$3\r\n100\r\n"},
		{Info{}, "*1\r\n$4\r\nINFO\r\n"},
		{Info{Section: InfoReplication}, "*2\r\n$4\r\nINFO\r\n$11\r\nreplication\r\n"},
		{ReplConf{Sub: ListeningPort(6380)}, "*3\r\n$8\r\nREPLCONF\r\n$14\r\nlistening-port\r\n$4\r\n6380\r\n"},
		{ReplConf{Sub: Capa("psync2")}, "*3\r\n$8\r\nREPLCONF\r\n$4\r\ncapa\r\n$6\r\npsync2\r\n"},
		{FullResync(), "*3\r\n$5\r\nPSYNC\r\n$1\r\n?\r\n$2\r\n-1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			got := string(resp.Encode(tt.cmd.Message()))
			if got != tt.want {
				t.Errorf("Encode(Message()) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand_MessageParses(t *testing.T) {
	cmds := []Command{
		Ping{},
		Echo{Text: "hello world"},
		Get{Key: "k"},
		Set{Key: "k", Value: "v", Options: []SetOption{ExpireInMillis(5)}},
		Info{Section: InfoReplication},
		ReplConf{Sub: ListeningPort(1)},
		Psync{ReplID: "id", Offset: 7},
	}
	for _, cmd := range cmds {
		got, err := Parse(cmd.Message())
		if err != nil {
			t.Errorf("Parse(%s.Message()) error = %v", cmd.Name(), err)
			continue
		}
		if !reflect.DeepEqual(got, cmd) {
			t.Errorf("Parse(%s.Message()) = %#v, want %#v", cmd.Name(), got, cmd)
		}
	}
}

func TestSet_TTL(t *testing.T) {
	if _, ok := (Set{Key: "k"}).TTL(); ok {
		t.Error("TTL() without options reported an expiry")
	}

	c := Set{Key: "k", Options: []SetOption{ExpireInMillis(10), ExpireInMillis(250)}}
	ttl, ok := c.TTL()
	if !ok || ttl != 250*time.Millisecond {
		t.Errorf("TTL() = (%v, %v), want (250ms, true)", ttl, ok)
	}
}
