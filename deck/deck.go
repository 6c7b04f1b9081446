package deck

import (
	"math/rand"
	"time"
)

// HandSize is the number of cards each of the two players is dealt
const HandSize = NumCards / 2

// Deck represents a deck of cards
type Deck []Card

// Hand is the ordered set of cards dealt to one player.
// Card i is played in round i.
type Hand []Card

// New creates an ordered deck of cards
func New() Deck {
	cards := make(Deck, 0, NumCards)
	for c := 0; c < NumCards; c++ {
		cards = append(cards, Card(c))
	}
	return cards
}

// Shuffle shuffles the deck of cards in place
func (d *Deck) Shuffle(rng *rand.Rand) {
	actualDeck := (*d)
	for i := len(actualDeck) - 1; i > 0; i-- {
		randomNumber := rng.Intn(i + 1)
		actualDeck[i], actualDeck[randomNumber] = actualDeck[randomNumber], actualDeck[i]
	}
}

// Deal deals n number of cards from the deck, until it is empty.
// The returned cards do not share memory with the deck.
func (d *Deck) Deal(n int) []Card {
	numCardsInDeck := len(*d)
	if n < 0 || n > numCardsInDeck {
		return []Card{}
	}
	startingIndex := numCardsInDeck - n
	dealt := make([]Card, n)
	copy(dealt, (*d)[startingIndex:numCardsInDeck])
	*d = (*d)[:startingIndex]
	return dealt
}

// Deal shuffles a fresh deck and splits it into two hands
func Deal() (Hand, Hand) {
	return DealWith(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// DealWith is Deal with a caller-supplied source of randomness
func DealWith(rng *rand.Rand) (Hand, Hand) {
	d := New()
	d.Shuffle(rng)
	second := d.Deal(HandSize)
	first := d.Deal(HandSize)
	return Hand(first), Hand(second)
}
