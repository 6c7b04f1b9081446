package transport

import (
	"context"
	"net"
	"testing"
	"time"

	utils "github.com/minaorangina/war/internal"
	"github.com/minaorangina/war/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamConnReceiveExactly(t *testing.T) {
	t.Run("reassembles a message written in pieces", func(t *testing.T) {
		server, client := net.Pipe()
		conn := NewStreamConn(server)
		defer conn.Close()

		go func() {
			client.Write([]byte{1})
			client.Write([]byte{2, 3})
		}()

		got, err := conn.ReceiveExactly(3)
		utils.AssertNoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, got)
	})

	t.Run("peer closing mid message is a short read", func(t *testing.T) {
		server, client := net.Pipe()
		conn := NewStreamConn(server)
		defer conn.Close()

		go func() {
			client.Write([]byte{byte(protocol.PlayCard)})
			client.Close()
		}()

		got, err := conn.ReceiveExactly(protocol.CommandSize)
		require.Error(t, err)
		assert.True(t, protocol.IsProtocolError(err))
		assert.ErrorIs(t, err, protocol.ErrShortRead)
		assert.Equal(t, []byte{byte(protocol.PlayCard)}, got)
	})

	t.Run("read deadline is a transport error", func(t *testing.T) {
		server, client := net.Pipe()
		defer client.Close()
		conn := NewStreamConn(server, WithTimeout(20*time.Millisecond))
		defer conn.Close()

		_, err := conn.ReceiveExactly(protocol.CommandSize)
		require.Error(t, err)
		assert.True(t, protocol.IsTransportError(err))
	})
}

func TestStreamConnSend(t *testing.T) {
	server, client := net.Pipe()
	conn := NewStreamConn(server, WithTimeout(time.Second))

	go func() {
		conn.Send(protocol.EncodePlayResult(protocol.Win))
	}()

	buf := make([]byte, 2)
	_, err := client.Read(buf)
	utils.AssertNoError(t, err)
	assert.Equal(t, []byte{byte(protocol.PlayResult), byte(protocol.Win)}, buf)

	utils.AssertNoError(t, conn.Close())

	err = conn.Send(protocol.EncodeWantGame())
	require.Error(t, err)
	assert.True(t, protocol.IsTransportError(err))
}

func TestStreamConnCloseIsIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	conn := NewStreamConn(server)

	utils.AssertNoError(t, conn.Close())
	utils.AssertNoError(t, conn.Close())
	assert.Equal(t, "pipe", conn.RemoteAddr())
}

func TestDialTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	conn, err := DialTCP(WithTimeout(time.Second))(testContext(t), l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	peer := <-accepted
	defer peer.Close()

	utils.Within(t, time.Second, func() {
		utils.AssertNoError(t, conn.Send(protocol.EncodeWantGame()))
	})
	buf := make([]byte, 2)
	_, err = peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.EncodeWantGame(), buf)

	t.Run("unreachable address is a transport error", func(t *testing.T) {
		_, err := DialTCP()(testContext(t), "127.0.0.1:1")
		require.Error(t, err)
		assert.True(t, protocol.IsTransportError(err))
	})
}

// testContext stands in for testing.T.Context (Go 1.24+): it is canceled
// when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
