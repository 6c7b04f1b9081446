package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	utils "github.com/minaorangina/war/internal"
	"github.com/minaorangina/war/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newWSPair returns both ends of a websocket connection
func newWSPair(t *testing.T) (*WSConn, *websocket.Conn) {
	t.Helper()

	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("could not upgrade: %v", err)
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial(makeWSUrl(srv.URL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	conn := NewWSConn(<-serverSide, WithTimeout(time.Second))
	t.Cleanup(func() { conn.Close() })
	return conn, peer
}

func makeWSUrl(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

func TestWSConnReceiveExactly(t *testing.T) {
	t.Run("reassembles bytes across frames", func(t *testing.T) {
		conn, peer := newWSPair(t)

		require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, []byte{byte(protocol.PlayCard)}))
		require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, []byte{7, byte(protocol.PlayCard), 8}))

		first, err := conn.ReceiveExactly(protocol.CommandSize)
		utils.AssertNoError(t, err)
		assert.Equal(t, []byte{byte(protocol.PlayCard), 7}, first)

		second, err := conn.ReceiveExactly(protocol.CommandSize)
		utils.AssertNoError(t, err)
		assert.Equal(t, []byte{byte(protocol.PlayCard), 8}, second)
	})

	t.Run("text frames are ignored", func(t *testing.T) {
		conn, peer := newWSPair(t)

		require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte("hi")))
		require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, protocol.EncodeWantGame()))

		got, err := conn.ReceiveExactly(protocol.CommandSize)
		utils.AssertNoError(t, err)
		assert.Equal(t, protocol.EncodeWantGame(), got)
	})

	t.Run("clean close mid message is a short read", func(t *testing.T) {
		conn, peer := newWSPair(t)

		require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, []byte{byte(protocol.WantGame)}))
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		require.NoError(t, peer.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)))

		_, err := conn.ReceiveExactly(protocol.CommandSize)
		require.Error(t, err)
		assert.True(t, protocol.IsProtocolError(err))
		assert.ErrorIs(t, err, protocol.ErrShortRead)
	})
}

func TestWSConnSend(t *testing.T) {
	conn, peer := newWSPair(t)

	require.NoError(t, conn.Send(protocol.EncodePlayResult(protocol.Lose)))

	msgType, data, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)
	assert.Equal(t, protocol.EncodePlayResult(protocol.Lose), data)

	utils.AssertNoError(t, conn.Close())
	conn.Close()

	_, _, err = peer.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestWSConnRemoteAddr(t *testing.T) {
	conn, peer := newWSPair(t)
	assert.Equal(t, peer.LocalAddr().String(), conn.RemoteAddr())
}
