// Package game runs the server side of a single game of War between two
// connections.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/minaorangina/war/deck"
	"github.com/minaorangina/war/protocol"
	uuid "github.com/satori/go.uuid"
)

var (
	ErrSessionStarted = errors.New("session has already been run")
)

// NewID constructs a session ID
func NewID() string {
	return uuid.NewV4().String()
}

// Dealer produces the two hands for a session
type Dealer func() (deck.Hand, deck.Hand)

// Score counts round outcomes from the first player's point of view
type Score struct {
	Wins   int
	Losses int
	Draws  int
}

// Session owns two connections for the length of one game.
// Both connections are closed exactly once, whatever the outcome.
type Session struct {
	id     string
	p1, p2 protocol.Conn
	deal   Dealer
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	round   int
	score   Score
	started bool

	closeOnce sync.Once
}

// Option configures a Session
type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithDealer replaces the random deal, mostly for tests
func WithDealer(d Dealer) Option {
	return func(s *Session) {
		s.deal = d
	}
}

// NewSession pairs two connections. Nothing is read until Run.
func NewSession(p1, p2 protocol.Conn, opts ...Option) *Session {
	s := &Session{
		p1:     p1,
		p2:     p2,
		deal:   deck.Deal,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = NewID()
	}
	s.logger = s.logger.With("session_id", s.id)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Conns returns the first and second player's connections
func (s *Session) Conns() (protocol.Conn, protocol.Conn) {
	return s.p1, s.p2
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Round is the number of rounds fully played
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Run plays the whole game. It returns nil when every round was played and
// the reason otherwise. Cancelling ctx closes both connections.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrSessionStarted
	}
	s.started = true
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.close)
	defer stop()

	s.logger.Debug("session started")

	if err := s.play(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		s.setState(Killed)
		s.close()
		s.logger.Warn("session killed",
			"round", s.Round(),
			"protocol_error", protocol.IsProtocolError(err),
			"error", err)
		return err
	}

	s.setState(Closed)
	s.close()
	score := s.Score()
	s.logger.Info("session complete",
		"p1_wins", score.Wins,
		"p2_wins", score.Losses,
		"draws", score.Draws)
	return nil
}

func (s *Session) play() error {
	if err := s.handshake(); err != nil {
		return err
	}

	hand1, hand2 := s.deal()
	if err := s.dealHands(hand1, hand2); err != nil {
		return err
	}

	s.setState(Playing)
	for i := 0; i < deck.HandSize; i++ {
		if err := s.playRound(); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
	}
	return nil
}

func (s *Session) handshake() error {
	_, _, err := s.readBoth(func(cmd protocol.Cmd, payload byte) (deck.Card, error) {
		return 0, protocol.ValidateWantGame(cmd, payload)
	})
	return err
}

// each player only ever sees their own hand
func (s *Session) dealHands(hand1, hand2 deck.Hand) error {
	msg1, err := protocol.EncodeGameStart(hand1)
	if err != nil {
		return err
	}
	msg2, err := protocol.EncodeGameStart(hand2)
	if err != nil {
		return err
	}

	s.setState(Dealt)
	if err := s.p1.Send(msg1); err != nil {
		return fmt.Errorf("player 1: %w", err)
	}
	if err := s.p2.Send(msg2); err != nil {
		return fmt.Errorf("player 2: %w", err)
	}
	return nil
}

func (s *Session) playRound() error {
	card1, card2, err := s.readBoth(protocol.ValidatePlayCard)
	if err != nil {
		return err
	}

	result1, result2 := RoundResults(deck.Compare(card1, card2))
	s.record(result1)

	s.logger.Debug("round played",
		"p1_card", card1.String(),
		"p2_card", card2.String(),
		"p1_result", result1.String())

	if err := s.p1.Send(protocol.EncodePlayResult(result1)); err != nil {
		return fmt.Errorf("player 1: %w", err)
	}
	if err := s.p2.Send(protocol.EncodePlayResult(result2)); err != nil {
		return fmt.Errorf("player 2: %w", err)
	}
	return nil
}

// readBoth reads one message from each player concurrently. The first failure
// is kept and closes both connections so the other read cannot block forever.
func (s *Session) readBoth(validate func(protocol.Cmd, byte) (deck.Card, error)) (deck.Card, deck.Card, error) {
	var (
		card1, card2 deck.Card
		wg           sync.WaitGroup
		failOnce     sync.Once
		firstErr     error
	)

	read := func(player int, conn protocol.Conn, card *deck.Card) {
		defer wg.Done()

		cmd, payload, err := protocol.ReadCommand(conn)
		if err == nil {
			*card, err = validate(cmd, payload)
		}
		if err != nil {
			failOnce.Do(func() {
				firstErr = fmt.Errorf("player %d: %w", player, err)
			})
			s.close()
		}
	}

	wg.Add(2)
	go read(1, s.p1, &card1)
	go read(2, s.p2, &card2)
	wg.Wait()

	return card1, card2, firstErr
}

// RoundResults maps a comparison of the first card against the second to
// what each player is told
func RoundResults(o deck.Ordering) (protocol.Result, protocol.Result) {
	switch o {
	case deck.Greater:
		return protocol.Win, protocol.Lose
	case deck.Less:
		return protocol.Lose, protocol.Win
	default:
		return protocol.Draw, protocol.Draw
	}
}

func (s *Session) record(result protocol.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch result {
	case protocol.Win:
		s.score.Wins++
	case protocol.Lose:
		s.score.Losses++
	default:
		s.score.Draws++
	}
	s.round++
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		for i, conn := range []protocol.Conn{s.p1, s.p2} {
			if err := conn.Close(); err != nil {
				s.logger.Debug("could not close connection", "player", i+1, "error", err)
			}
		}
	})
}
