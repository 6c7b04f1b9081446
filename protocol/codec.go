package protocol

import (
	"fmt"

	"github.com/minaorangina/war/deck"
)

// DecodeCommand splits a two byte message into its tag and payload
func DecodeCommand(b []byte) (Cmd, byte, error) {
	if len(b) < CommandSize {
		return 0, 0, &ProtocolError{Op: "decode", Err: ErrShortRead}
	}
	return Cmd(b[0]), b[1], nil
}

// ReadCommand reads and decodes exactly one two byte message
func ReadCommand(c Conn) (Cmd, byte, error) {
	b, err := c.ReceiveExactly(CommandSize)
	if err != nil {
		return 0, 0, ReadError(err)
	}
	return DecodeCommand(b)
}

// ValidateWantGame accepts only a WantGame tag with a zero payload
func ValidateWantGame(cmd Cmd, payload byte) error {
	if cmd != WantGame {
		return &ProtocolError{Op: "handshake", Err: fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCommand, cmd, WantGame)}
	}
	if payload != 0 {
		return &ProtocolError{Op: "handshake", Err: fmt.Errorf("%w: %d", ErrUnexpectedPayload, payload)}
	}
	return nil
}

// ValidatePlayCard accepts only a PlayCard tag carrying a card from a standard deck
func ValidatePlayCard(cmd Cmd, payload byte) (deck.Card, error) {
	if cmd != PlayCard {
		return 0, &ProtocolError{Op: "play", Err: fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCommand, cmd, PlayCard)}
	}
	card := deck.Card(payload)
	if !card.Valid() {
		return 0, &ProtocolError{Op: "play", Err: fmt.Errorf("%w: %d", ErrCardOutOfRange, payload)}
	}
	return card, nil
}

func EncodeWantGame() []byte {
	return []byte{byte(WantGame), 0}
}

// EncodeGameStart builds the 27 byte message that deals a hand to one player
func EncodeGameStart(hand deck.Hand) ([]byte, error) {
	if len(hand) != deck.HandSize {
		return nil, fmt.Errorf("%w: got %d", ErrHandSize, len(hand))
	}
	msg := make([]byte, 0, GameStartSize)
	msg = append(msg, byte(GameStart))
	for _, c := range hand {
		msg = append(msg, byte(c))
	}
	return msg, nil
}

// DecodeGameStart extracts the dealt hand from a GameStart message
func DecodeGameStart(b []byte) (deck.Hand, error) {
	if len(b) < GameStartSize {
		return nil, &ProtocolError{Op: "decode", Err: ErrShortRead}
	}
	if Cmd(b[0]) != GameStart {
		return nil, &ProtocolError{Op: "decode", Err: fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCommand, Cmd(b[0]), GameStart)}
	}
	hand := make(deck.Hand, deck.HandSize)
	for i := range hand {
		hand[i] = deck.Card(b[i+1])
	}
	return hand, nil
}

func EncodePlayCard(c deck.Card) []byte {
	return []byte{byte(PlayCard), byte(c)}
}

func EncodePlayResult(r Result) []byte {
	return []byte{byte(PlayResult), byte(r)}
}

// DecodePlayResult extracts the outcome of a round
func DecodePlayResult(b []byte) (Result, error) {
	cmd, payload, err := DecodeCommand(b)
	if err != nil {
		return 0, err
	}
	if cmd != PlayResult {
		return 0, &ProtocolError{Op: "decode", Err: fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCommand, cmd, PlayResult)}
	}
	if Result(payload) > Lose {
		return 0, &ProtocolError{Op: "decode", Err: fmt.Errorf("%w: result %d", ErrUnexpectedPayload, payload)}
	}
	return Result(payload), nil
}
