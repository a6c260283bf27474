package replication

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/replikv/pkg/resp"
)

// Link is a message-oriented connection to a primary.
type Link interface {
	// Write sends raw bytes.
	Write(b []byte) error
	// Read returns the bytes of exactly one complete RESP message.
	Read() ([]byte, error)
}

// ConnLink is a Link over a net.Conn.
type ConnLink struct {
	conn net.Conn
	r    *bufio.Reader
}

// NewLink wraps an established connection.
func NewLink(conn net.Conn) *ConnLink {
	return &ConnLink{
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

// Dial connects to addr over TCP.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*ConnLink, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial primary %s: %w", addr, err)
	}
	return NewLink(conn), nil
}

// Write sends b in full.
func (l *ConnLink) Write(b []byte) error {
	_, err := l.conn.Write(b)
	return err
}

// Read decodes one message from the stream and returns its encoding.
func (l *ConnLink) Read() ([]byte, error) {
	m, err := resp.ReadMessage(l.r)
	if err != nil {
		return nil, err
	}
	return resp.Encode(m), nil
}

// SetDeadline sets the read and write deadline of the connection.
func (l *ConnLink) SetDeadline(t time.Time) error {
	return l.conn.SetDeadline(t)
}

// RemoteAddr returns the primary address.
func (l *ConnLink) RemoteAddr() string {
	return l.conn.RemoteAddr().String()
}

// Close closes the connection.
func (l *ConnLink) Close() error {
	return l.conn.Close()
}
