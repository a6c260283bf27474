package redisserver

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/yndnr/replikv/internal/telemetry/logger"
)

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	opened  time.Time

	commands atomic.Uint64
	closed   atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		id:      logger.NewConnID(),
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
		opened:  time.Now(),
	}
}

// ID returns the connection ID used in logs.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// remoteIP returns the client IP without the port.
func (c *Conn) remoteIP() string {
	addr := c.netConn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
