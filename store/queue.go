// Package store holds the server's shared in-memory state: connections
// waiting for an opponent and the sessions currently being played.
package store

import (
	"sync"
	"time"

	"github.com/minaorangina/war/protocol"
)

// Waiting is a connection that has not been paired yet
type Waiting struct {
	ID      string
	Conn    protocol.Conn
	Arrived time.Time
}

// Queue pairs connections in order of arrival
type Queue struct {
	mu      sync.Mutex
	waiting []Waiting
}

func NewQueue() *Queue {
	return &Queue{waiting: []Waiting{}}
}

// Push appends w and, when at least two connections are waiting, removes and
// returns the two oldest. A connection is only ever handed out once.
func (q *Queue) Push(w Waiting) (first, second Waiting, paired bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.waiting = append(q.waiting, w)
	if len(q.waiting) < 2 {
		return Waiting{}, Waiting{}, false
	}

	first, second = q.waiting[0], q.waiting[1]
	q.waiting[0], q.waiting[1] = Waiting{}, Waiting{}
	q.waiting = q.waiting[2:]
	return first, second, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Drain empties the queue and returns whatever was waiting
func (q *Queue) Drain() []Waiting {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.waiting
	q.waiting = []Waiting{}
	return drained
}
