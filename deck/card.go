package deck

import (
	"fmt"
)

// NumCards is the number of cards in a full deck
const NumCards = 52

// Rank represents a rank in a deck of cards.
// Only the rank decides a round of War.
type Rank int

var rankNames = []string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankNames) {
		return "Unknown"
	}
	return rankNames[r]
}

// Suit represents a suit in a deck of cards
type Suit int

var suitNames = []string{"Clubs", "Diamonds", "Hearts", "Spades"}

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	if s < 0 || int(s) >= len(suitNames) {
		return "Unknown"
	}
	return suitNames[s]
}

// Card is a playing card encoded as a single byte in [0, 52).
// The low thirteen values of each suit block are its ranks.
type Card uint8

// NewCard constructs a card from a rank and a suit
func NewCard(rank Rank, suit Suit) (Card, error) {
	if rank < Two || rank > Ace || suit < Clubs || suit > Spades {
		return 0, fmt.Errorf("rank %d or suit %d out of range", rank, suit)
	}
	return Card(int(suit)*len(rankNames) + int(rank)), nil
}

// Valid reports whether the card is part of a standard deck
func (c Card) Valid() bool {
	return c < NumCards
}

// Rank returns a card's rank
func (c Card) Rank() Rank {
	return Rank(int(c) % len(rankNames))
}

// Suit returns a card's suit
func (c Card) Suit() Suit {
	return Suit(int(c) / len(rankNames))
}

func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
	return fmt.Sprintf("%s of %s", c.Rank(), c.Suit())
}
