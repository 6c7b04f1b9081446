// Package client simulates War players. A Client plays one game per call
// to Play and can drive many games at once with RunMany.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/minaorangina/war/protocol"
	"github.com/minaorangina/war/transport"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Tally counts the results of one game from the simulated player's side
type Tally struct {
	Won  int
	Lost int
	Drew int
}

// Score is +1 per round won and -1 per round lost
func (t Tally) Score() int {
	return t.Won - t.Lost
}

func (t Tally) Rounds() int {
	return t.Won + t.Lost + t.Drew
}

// Verdict is "won", "lost" or "drew"
func (t Tally) Verdict() string {
	switch score := t.Score(); {
	case score > 0:
		return "won"
	case score < 0:
		return "lost"
	default:
		return "drew"
	}
}

func (t *Tally) add(r protocol.Result) {
	switch r {
	case protocol.Win:
		t.Won++
	case protocol.Lose:
		t.Lost++
	default:
		t.Drew++
	}
}

type Client struct {
	addr   string
	dial   transport.DialFunc
	logger *slog.Logger
}

type Option func(*Client)

// WithDialer replaces the TCP dialer, e.g. with transport.DialWS
func WithDialer(d transport.DialFunc) Option {
	return func(c *Client) {
		c.dial = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client that plays against the server at addr
func New(addr string, opts ...Option) *Client {
	c := &Client{
		addr:   addr,
		dial:   transport.DialTCP(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Play dials the server and plays a single game
func (c *Client) Play(ctx context.Context) (Tally, error) {
	conn, err := c.dial(ctx, c.addr)
	if err != nil {
		return Tally{}, err
	}
	return PlayConn(ctx, conn)
}

// Run plays a single game and reports 1 if it was played to the end and 0
// otherwise. Failures are logged, not returned.
func (c *Client) Run(ctx context.Context) int {
	tally, err := c.Play(ctx)
	if err != nil {
		c.logger.Error("game failed",
			"addr", c.addr,
			"protocol_error", protocol.IsProtocolError(err),
			"transport_error", protocol.IsTransportError(err),
			"error", err)
		return 0
	}

	c.logger.Debug("game complete", "result", tally.Verdict(), "score", tally.Score())
	return 1
}

// RunMany plays n games with at most limit in flight and returns how many
// completed. Launching is paced by the limiter: a game starts only once a
// slot is free, and stops starting when ctx is done. Players are paired by
// the server, so a limit below 2 cannot make progress against a pairing
// server.
func (c *Client) RunMany(ctx context.Context, n, limit int) int {
	if n <= 0 {
		return 0
	}
	if limit < 2 {
		c.logger.Warn("concurrency limit too low for players to be paired", "limit", limit)
	}
	if limit < 1 {
		limit = 1
	}

	sem := semaphore.NewWeighted(int64(limit))
	var (
		g         errgroup.Group
		completed atomic.Int64
	)

	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			c.logger.Warn("stopped launching players", "launched", i, "error", err)
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			completed.Add(int64(c.Run(ctx)))
			return nil
		})
	}
	g.Wait()

	return int(completed.Load())
}

// PlayConn plays a single game over an open connection: ask for a game, then
// play the dealt cards in order. conn is always closed on return and
// cancelling ctx closes it early.
func PlayConn(ctx context.Context, conn protocol.Conn) (Tally, error) {
	var tally Tally

	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	wrap := func(err error) (Tally, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return tally, err
	}

	if err := conn.Send(protocol.EncodeWantGame()); err != nil {
		return wrap(fmt.Errorf("want game: %w", err))
	}

	msg, err := conn.ReceiveExactly(protocol.GameStartSize)
	if err != nil {
		return wrap(fmt.Errorf("game start: %w", err))
	}
	hand, err := protocol.DecodeGameStart(msg)
	if err != nil {
		return wrap(err)
	}

	for i, card := range hand {
		if err := conn.Send(protocol.EncodePlayCard(card)); err != nil {
			return wrap(fmt.Errorf("round %d: %w", i, err))
		}
		msg, err := conn.ReceiveExactly(protocol.CommandSize)
		if err != nil {
			return wrap(fmt.Errorf("round %d: %w", i, err))
		}
		result, err := protocol.DecodePlayResult(msg)
		if err != nil {
			return wrap(fmt.Errorf("round %d: %w", i, err))
		}
		tally.add(result)
	}

	return tally, nil
}
