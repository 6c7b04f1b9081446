package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minaorangina/war/game"
)

var (
	ErrUnknownSessionID   = errors.New("unknown session ID")
	ErrFnDuplicateSession = func(sessionID string) error {
		return fmt.Errorf("session with id \"%s\" already exists", sessionID)
	}
)

// Stats summarises the sessions a store has seen
type Stats struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Killed    int `json:"killed"`
}

// SessionStore tracks sessions while they are being played
type SessionStore struct {
	mu        sync.RWMutex
	active    map[string]*game.Session
	completed int
	killed    int
}

// NewSessionStore constructs a SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{
		active: map[string]*game.Session{},
	}
}

func (s *SessionStore) Add(session *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[session.ID()]; exists {
		return ErrFnDuplicateSession(session.ID())
	}
	s.active[session.ID()] = session
	return nil
}

// Active returns every session still being played
func (s *SessionStore) Active() []*game.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*game.Session, 0, len(s.active))
	for _, session := range s.active {
		sessions = append(sessions, session)
	}
	return sessions
}

// Finish retires a session, counting it as completed or killed by its final state
func (s *SessionStore) Finish(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active[sessionID]
	if !ok {
		return ErrUnknownSessionID
	}
	delete(s.active, sessionID)

	if session.State() == game.Closed {
		s.completed++
	} else {
		s.killed++
	}
	return nil
}

func (s *SessionStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Active:    len(s.active),
		Completed: s.completed,
		Killed:    s.killed,
	}
}
