// Package server accepts War players, pairs them in order of arrival and
// plays one independent session per pair.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/war/game"
	"github.com/minaorangina/war/protocol"
	"github.com/minaorangina/war/store"
	"github.com/minaorangina/war/transport"
	uuid "github.com/satori/go.uuid"
)

const maxAcceptDelay = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stats is the body of GET /stats
type Stats struct {
	Waiting int `json:"waiting"`
	store.Stats
}

// GameServer is a matchmaking server. TCP connections arrive through Serve and
// websocket connections through ServeHTTP; both join the same queue.
type GameServer struct {
	queue       *store.Queue
	sessions    *store.SessionStore
	logger      *slog.Logger
	connOpts    []transport.Option
	sessionOpts []game.Option

	// sessions run under ctx so Close can abandon them
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool

	handler http.Handler
}

// Option configures a GameServer
type Option func(*GameServer)

func WithLogger(l *slog.Logger) Option {
	return func(s *GameServer) {
		s.logger = l
	}
}

// WithIOTimeout bounds every read and write on accepted connections
func WithIOTimeout(d time.Duration) Option {
	return func(s *GameServer) {
		s.connOpts = append(s.connOpts, transport.WithTimeout(d))
	}
}

// WithSessionOptions is applied to every session the server starts
func WithSessionOptions(opts ...game.Option) Option {
	return func(s *GameServer) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// NewServer creates a new GameServer
func NewServer(opts ...Option) *GameServer {
	s := &GameServer{
		queue:    store.NewQueue(),
		sessions: store.NewSessionStore(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	router := http.NewServeMux()
	router.Handle("/ws", http.HandlerFunc(s.HandleWS))
	router.Handle("/stats", http.HandlerFunc(s.HandleStats))

	s.handler = handlers.CustomLoggingHandler(io.Discard,
		handlers.CORS(handlers.AllowedOrigins([]string{"*"}))(router),
		s.logRequest)

	return s
}

// ServeHTTP serves http
func (s *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe listens for TCP players on addr until ctx is done
func (s *GameServer) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections from l until ctx is done. Accept errors are
// logged and never stop the loop. Serve closes l before returning.
func (s *GameServer) Serve(ctx context.Context, l net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		l.Close()
	})
	defer stop()
	defer l.Close()

	s.logger.Info("accepting players", "addr", l.Addr().String())

	var delay time.Duration
	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("no longer accepting players", "addr", l.Addr().String())
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.logger.Error("could not accept connection", "error", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		s.Enqueue(transport.NewStreamConn(c, s.connOpts...), c.RemoteAddr().String())
	}
}

// HandleWS upgrades the request and queues the websocket connection
func (s *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		s.logger.Warn("could not upgrade to websocket", "error", err)
		return
	}

	conn := transport.NewWSConn(ws, s.connOpts...)
	s.Enqueue(conn, conn.RemoteAddr())
}

// HandleStats reports queue and session counters as JSON
func (s *GameServer) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	bytes, err := json.Marshal(s.Stats())
	if err != nil {
		s.logger.Error("could not encode stats", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(bytes)
}

// Enqueue adds a connection to the waiting queue. When it completes a pair,
// a session for the pair is started in its own goroutine; Enqueue never
// waits for a session.
func (s *GameServer) Enqueue(conn protocol.Conn, remote string) string {
	connID := uuid.NewV4().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Info("server closed, turning player away", "conn_id", connID, "remote", remote)
		conn.Close()
		return connID
	}

	s.logger.Debug("player waiting", "conn_id", connID, "remote", remote)

	first, second, paired := s.queue.Push(store.Waiting{ID: connID, Conn: conn, Arrived: time.Now()})
	if paired {
		s.start(first, second)
	}
	return connID
}

func (s *GameServer) start(first, second store.Waiting) {
	opts := append([]game.Option{game.WithLogger(s.logger)}, s.sessionOpts...)
	session := game.NewSession(first.Conn, second.Conn, opts...)

	if err := s.sessions.Add(session); err != nil {
		s.logger.Error("could not register session", "session_id", session.ID(), "error", err)
		first.Conn.Close()
		second.Conn.Close()
		return
	}

	s.logger.Info("players paired",
		"session_id", session.ID(),
		"p1_conn_id", first.ID,
		"p2_conn_id", second.ID,
		"p1_waited", time.Since(first.Arrived))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		session.Run(s.ctx)
		s.sessions.Finish(session.ID())
	}()
}

// Sessions returns every session still being played
func (s *GameServer) Sessions() []*game.Session {
	return s.sessions.Active()
}

func (s *GameServer) Stats() Stats {
	return Stats{
		Waiting: s.queue.Len(),
		Stats:   s.sessions.Stats(),
	}
}

// Wait blocks until every started session has finished
func (s *GameServer) Wait() {
	s.wg.Wait()
}

// Close abandons in-flight sessions, closes unpaired connections and waits
// for session goroutines to exit. Later connections are turned away.
func (s *GameServer) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	for _, w := range s.queue.Drain() {
		w.Conn.Close()
	}
	s.Wait()
	return nil
}

func (s *GameServer) logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	s.logger.Info("http request",
		"method", params.Request.Method,
		"path", params.URL.Path,
		"status", params.StatusCode,
		"size", params.Size,
		"remote", params.Request.RemoteAddr)
}
