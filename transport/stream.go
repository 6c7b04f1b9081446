// Package transport adapts network connections to protocol.Conn.
package transport

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/minaorangina/war/protocol"
)

// StreamConn is a protocol.Conn over an ordered byte stream such as TCP
type StreamConn struct {
	conn      net.Conn
	timeout   time.Duration
	closeOnce sync.Once
	closeErr  error
}

// Option configures a connection adapter
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout bounds every individual send and receive.
// Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewStreamConn wraps c
func NewStreamConn(c net.Conn, opts ...Option) *StreamConn {
	o := buildOptions(opts)
	return &StreamConn{conn: c, timeout: o.timeout}
}

func (c *StreamConn) Send(data []byte) error {
	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return protocol.WriteError(err)
		}
	}
	_, err := c.conn.Write(data)
	return protocol.WriteError(err)
}

func (c *StreamConn) ReceiveExactly(n int) ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, protocol.ReadError(err)
		}
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(c.conn, buf)
	if err != nil {
		return buf[:read], protocol.ReadError(err)
	}
	return buf, nil
}

// Close closes the underlying connection once; later calls return the first result
func (c *StreamConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr is the address of the peer
func (c *StreamConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
