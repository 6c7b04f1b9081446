package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minaorangina/war/protocol"
	"github.com/minaorangina/war/transport"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts ...Option) *GameServer {
	t.Helper()

	srv := NewServer(append([]Option{WithLogger(discardLogger())}, opts...)...)
	t.Cleanup(func() { srv.Close() })
	return srv
}

// serveTCP runs srv on a loopback listener until the test ends
func serveTCP(t *testing.T, srv *GameServer, l net.Listener) string {
	t.Helper()

	if l == nil {
		var err error
		l, err = net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, l)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return l.Addr().String()
}

// pipeConn returns a server side connection and the player's end of it
func pipeConn(t *testing.T) (protocol.Conn, net.Conn) {
	t.Helper()

	server, player := net.Pipe()
	t.Cleanup(func() { player.Close() })
	return transport.NewStreamConn(server), player
}

func makeWSUrl(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct status, got %d, want %d", got, want)
	}
}

// flakyListener fails the first failures calls to Accept
type flakyListener struct {
	net.Listener
	failures int32
	calls    atomic.Int32
}

func (l *flakyListener) Accept() (net.Conn, error) {
	if l.calls.Add(1) <= l.failures {
		return nil, errors.New("too many open files")
	}
	return l.Listener.Accept()
}
