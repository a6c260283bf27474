package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/replikv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 10 * time.Second

// Client is a RESP client holding one connection to a replikv server.
// It is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	br      *bufio.Reader
}

// NewClient creates a client for addr. The connection is opened lazily.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect opens the connection if it is not open yet.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.br = bufio.NewReader(conn)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.br = nil
	return err
}

// Do sends a command and reads one reply. Error replies are returned as
// resp.Error values, not as Go errors. Transport failures close the
// connection so the next call reconnects.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Message, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	reply, err := c.roundTrip(ctx, resp.Command(args...))
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return reply, nil
}

// ReadPayload reads a binary payload that follows a reply, such as the
// snapshot sent after FULLRESYNC.
func (c *Client) ReadPayload(ctx context.Context) (resp.BinaryPayload, error) {
	if c.conn == nil {
		return nil, errors.New("not connected")
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	p, err := resp.ReadBinaryPayload(c.br)
	if err != nil {
		_ = c.Close()
		return nil, wrapCtx(ctx, err)
	}
	return p, nil
}

func (c *Client) roundTrip(ctx context.Context, req resp.Array) (resp.Message, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	// Cancellation interrupts blocked I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := resp.WriteMessage(c.conn, req); err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("send: %w", err))
	}
	reply, err := resp.ReadMessage(c.br)
	if err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("read reply: %w", err))
	}
	return reply, nil
}

func wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
