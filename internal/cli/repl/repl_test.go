package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yndnr/replikv/pkg/resp"
)

// fakeDoer records commands and answers with canned replies.
type fakeDoer struct {
	calls   [][]string
	replies map[string]resp.Message
	err     error
}

func (f *fakeDoer) Do(_ context.Context, args ...string) (resp.Message, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.replies[strings.ToUpper(args[0])]; ok {
		return r, nil
	}
	return resp.Error("ERR unknown command"), nil
}

func newTestREPL(t *testing.T, input string, doer *fakeDoer) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	r := New(doer, "127.0.0.1:6379", NewHistory(filepath.Join(t.TempDir(), "history")))
	r.input = strings.NewReader(input)
	r.output = out
	return r, out
}

// ============================================================
// Loop
// ============================================================

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "QUIT\n"},
		{"EOF", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestREPL(t, tt.input, &fakeDoer{})
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
		})
	}
}

func TestREPL_Run_Commands(t *testing.T) {
	doer := &fakeDoer{replies: map[string]resp.Message{
		"PING": resp.SimpleString("PONG"),
		"GET":  resp.BulkString("bar"),
		"SET":  resp.SimpleString("OK"),
	}}
	r, out := newTestREPL(t, "PING\n\nset foo \"hello world\"\nGET foo\nFLUSH\nexit\n", doer)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantCalls := [][]string{{"PING"}, {"set", "foo", "hello world"}, {"GET", "foo"}, {"FLUSH"}}
	if !reflect.DeepEqual(doer.calls, wantCalls) {
		t.Errorf("calls = %q, want %q", doer.calls, wantCalls)
	}

	got := out.String()
	for _, want := range []string{"PONG\n", "OK\n", "\"bar\"\n", "(error) ERR unknown command\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if prompts := strings.Count(got, "127.0.0.1:6379> "); prompts != 6 {
		t.Errorf("prompts = %d, want 6", prompts)
	}
	if r.history.Len() != 5 {
		t.Errorf("history len = %d, want 5", r.history.Len())
	}
}

func TestREPL_Run_ClientError(t *testing.T) {
	doer := &fakeDoer{err: errors.New("connection refused")}
	r, out := newTestREPL(t, "PING\nexit\n", doer)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Error: connection refused") {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPL_Run_Help(t *testing.T) {
	r, out := newTestREPL(t, "help se\nexit\n", &fakeDoer{})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "SET key value [px milliseconds]") {
		t.Errorf("help output = %q", out.String())
	}
	if strings.Contains(out.String(), "GET key") {
		t.Errorf("help output should be filtered: %q", out.String())
	}
}

func TestREPL_Run_UnbalancedQuotes(t *testing.T) {
	doer := &fakeDoer{}
	r, out := newTestREPL(t, "ECHO \"oops\nexit\n", doer)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(doer.calls) != 0 {
		t.Errorf("command sent despite parse error: %q", doer.calls)
	}
	if !strings.Contains(out.String(), ErrUnbalancedQuotes.Error()) {
		t.Errorf("output = %q", out.String())
	}
}

// ============================================================
// Argument splitting
// ============================================================

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"PING", []string{"PING"}, false},
		{"  SET  k   v ", []string{"SET", "k", "v"}, false},
		{`SET k "a b"`, []string{"SET", "k", "a b"}, false},
		{`SET k 'it"s'`, []string{"SET", "k", `it"s`}, false},
		{`ECHO "say \"hi\""`, []string{"ECHO", `say "hi"`}, false},
		{`ECHO ""`, []string{"ECHO", ""}, false},
		{`ECHO a"b c"d`, []string{"ECHO", "ab cd"}, false},
		{"\tGET\tk", []string{"GET", "k"}, false},
		{`ECHO "open`, nil, true},
		{`ECHO 'open`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================
// Completer and history
// ============================================================

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   int
	}{
		{"", len(c.commands)},
		{"rep", 2},
		{"REP", 2},
		{"psync", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); len(got) != tt.want {
				t.Errorf("Complete(%q) = %q, want %d entries", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestHistory_AddAndGet(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"))
	h.maxSize = 3
	for _, c := range []string{"cmd1", "cmd2", "cmd3", "cmd4"} {
		h.Add(c)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Get(0) != "cmd4" || h.Get(2) != "cmd2" {
		t.Errorf("Get(0) = %q, Get(2) = %q", h.Get(0), h.Get(2))
	}
	if h.Get(3) != "" || h.Get(-1) != "" {
		t.Error("out of range Get should return empty string")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(path)
	h.Add("PING")
	h.Add("GET foo")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != "GET foo" {
		t.Errorf("loaded entries = %q", loaded.entries)
	}
}

func TestHistory_Load_Missing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() of missing file error = %v", err)
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	if !strings.HasSuffix(DefaultHistoryFile(), filepath.Join(".replikv", "history")) {
		t.Errorf("DefaultHistoryFile() = %q", DefaultHistoryFile())
	}
}
