// Package protocol defines the War wire format: one tag byte per message,
// where the tag alone determines the message length.
package protocol

import "github.com/minaorangina/war/deck"

// Cmd is the tag byte that starts every message
type Cmd byte

const (
	WantGame Cmd = iota
	GameStart
	PlayCard
	PlayResult
)

var cmdNames = []string{
	"WantGame",
	"GameStart",
	"PlayCard",
	"PlayResult",
}

func (c Cmd) String() string {
	if int(c) >= len(cmdNames) {
		return "Unknown"
	}
	return cmdNames[c]
}

// Result is the payload of a PlayResult message
type Result byte

const (
	Win Result = iota
	Draw
	Lose
)

var resultNames = []string{"Win", "Draw", "Lose"}

func (r Result) String() string {
	if int(r) >= len(resultNames) {
		return "Unknown"
	}
	return resultNames[r]
}

// Message sizes in bytes, tag included
const (
	CommandSize   = 2
	GameStartSize = 1 + deck.HandSize
)

// Conn is a bidirectional byte stream to one player.
// Close must be safe to call more than once.
type Conn interface {
	Send(data []byte) error
	// ReceiveExactly blocks until n bytes have arrived or the stream fails.
	ReceiveExactly(n int) ([]byte, error)
	Close() error
}
