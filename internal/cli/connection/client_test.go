package connection

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/yndnr/replikv/pkg/resp"
)

// fakeServer answers each request on a single accepted connection with
// the next scripted raw reply.
func fakeServer(t *testing.T, replies ...string) (string, <-chan resp.Message) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan resp.Message, len(replies))
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		br := bufio.NewReader(conn)
		for _, r := range replies {
			m, err := resp.ReadMessage(br)
			if err != nil {
				return
			}
			got <- m
			if _, err := conn.Write([]byte(r)); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		_, _ = io.Copy(io.Discard, br)
	}()
	return ln.Addr().String(), got
}

func TestClient_Do(t *testing.T) {
	addr, got := fakeServer(t, "+PONG\r\n", "$3\r\nbar\r\n", "-ERR unknown command 'FOO'\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()
	ctx := context.Background()

	tests := []struct {
		args []string
		want resp.Message
	}{
		{[]string{"PING"}, resp.SimpleString("PONG")},
		{[]string{"GET", "foo"}, resp.BulkString("bar")},
		{[]string{"FOO"}, resp.Error("ERR unknown command 'FOO'")},
	}
	for _, tt := range tests {
		reply, err := c.Do(ctx, tt.args...)
		if err != nil {
			t.Fatalf("Do(%v) error = %v", tt.args, err)
		}
		if reply != tt.want {
			t.Errorf("Do(%v) = %#v, want %#v", tt.args, reply, tt.want)
		}
		sent := <-got
		if arr, ok := sent.(resp.Array); !ok || len(arr) != len(tt.args) {
			t.Errorf("server received %#v", sent)
		}
	}
}

func TestClient_ReadPayload(t *testing.T) {
	addr, _ := fakeServer(t, "+FULLRESYNC abc 0\r\n$3\r\n\x01\x02\x03")
	c := NewClient(addr, time.Second)
	defer c.Close()
	ctx := context.Background()

	reply, err := c.Do(ctx, "PSYNC", "?", "-1")
	if err != nil {
		t.Fatal(err)
	}
	if reply != resp.SimpleString("FULLRESYNC abc 0") {
		t.Errorf("reply = %#v", reply)
	}
	p, err := c.ReadPayload(ctx)
	if err != nil {
		t.Fatalf("ReadPayload() error = %v", err)
	}
	if string(p) != "\x01\x02\x03" {
		t.Errorf("payload = %q", p)
	}
}

func TestClient_EmptyCommand(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	if _, err := c.Do(context.Background()); err == nil {
		t.Error("Do() with no args should fail")
	}
}

func TestClient_ConnectError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(addr, time.Second)
	if _, err := c.Do(context.Background(), "PING"); err == nil {
		t.Error("Do() against a closed port should fail")
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	// The server accepts but never replies.
	addr, _ := fakeServer(t)
	c := NewClient(addr, 5*time.Second)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, "PING")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want deadline exceeded", err)
	}
	if c.conn != nil {
		t.Error("connection should be dropped after a failed round trip")
	}
}
