package deck

import (
	"math/rand"
	"testing"

	utils "github.com/minaorangina/war/internal"
)

func TestCard(t *testing.T) {
	cases := []struct {
		name     string
		card     Card
		expected string
	}{
		{"Lowest value card", Card(0), "Two of Clubs"},
		{"Specific card", Card(36), "Queen of Hearts"},
		{"Highest value card", Card(51), "Ace of Spades"},
		{"Out of range card", Card(52), "Card(52)"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			utils.AssertEqual(t, c.card.String(), c.expected)
		})
	}

	t.Run("rank ignores suit", func(t *testing.T) {
		six, err := NewCard(Six, Suit(rand.Intn(4)))
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, six.Rank(), Six)
		utils.AssertEqual(t, six.Rank().String(), "Six")
	})

	t.Run("names outside the deck are unknown", func(t *testing.T) {
		utils.AssertEqual(t, Rank(13).String(), "Unknown")
		utils.AssertEqual(t, Rank(-1).String(), "Unknown")
		utils.AssertEqual(t, Suit(4).String(), "Unknown")
		utils.AssertEqual(t, Suit(-1).String(), "Unknown")
	})

	t.Run("get suit", func(t *testing.T) {
		spade, err := NewCard(Rank(rand.Intn(13)), Spades)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, spade.Suit().String(), "Spades")
	})

	t.Run("out of range arguments", func(t *testing.T) {
		_, err := NewCard(Rank(13), Clubs)
		utils.AssertErrored(t, err)

		_, err = NewCard(Four, Suit(4))
		utils.AssertErrored(t, err)
	})

	t.Run("every card round trips through rank and suit", func(t *testing.T) {
		for _, c := range New() {
			rebuilt, err := NewCard(c.Rank(), c.Suit())
			utils.AssertNoError(t, err)
			utils.AssertEqual(t, rebuilt, c)
			utils.AssertTrue(t, c.Valid())
		}
	})
}
