package transport

import (
	"context"
	"net"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/war/protocol"
)

// DialFunc opens a connection to a War server
type DialFunc func(ctx context.Context, addr string) (protocol.Conn, error)

// DialTCP returns a DialFunc for host:port addresses
func DialTCP(opts ...Option) DialFunc {
	return func(ctx context.Context, addr string) (protocol.Conn, error) {
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, &protocol.TransportError{Op: "dial", Err: err}
		}
		return NewStreamConn(c, opts...), nil
	}
}

// DialWS returns a DialFunc for ws:// URLs
func DialWS(opts ...Option) DialFunc {
	return func(ctx context.Context, url string) (protocol.Conn, error) {
		ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, &protocol.TransportError{Op: "dial", Err: err}
		}
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return NewWSConn(ws, opts...), nil
	}
}
