package transport

import (
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/war/protocol"
)

const (
	// Time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WSConn is a protocol.Conn over binary websocket frames.
// Frame boundaries carry no meaning: bytes are reassembled into a stream.
type WSConn struct {
	conn      *websocket.Conn
	timeout   time.Duration
	writeMu   sync.Mutex
	pending   []byte
	closeOnce sync.Once
	closeErr  error
}

// NewWSConn wraps an established websocket connection
func NewWSConn(ws *websocket.Conn, opts ...Option) *WSConn {
	o := buildOptions(opts)
	ws.SetReadLimit(maxMessageSize)
	return &WSConn{conn: ws, timeout: o.timeout}
}

func (c *WSConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return protocol.WriteError(err)
		}
	}
	return protocol.WriteError(c.conn.WriteMessage(websocket.BinaryMessage, data))
}

// ReceiveExactly must not be called concurrently with itself
func (c *WSConn) ReceiveExactly(n int) ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, protocol.ReadError(err)
		}
	}

	for len(c.pending) < n {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			partial := c.pending
			c.pending = nil
			return partial, protocol.ReadError(wsReadError(err, len(partial)))
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		c.pending = append(c.pending, data...)
	}

	msg := make([]byte, n)
	copy(msg, c.pending[:n])
	c.pending = c.pending[n:]
	return msg, nil
}

// a clean close from the peer ends the stream like EOF does on TCP
func wsReadError(err error, buffered int) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		if buffered > 0 {
			return io.ErrUnexpectedEOF
		}
		return io.EOF
	}
	return err
}

// Close sends a close frame and closes the connection once
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr is the address of the peer
func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
