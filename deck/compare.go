package deck

// Ordering is the result of comparing two cards
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

var orderingNames = map[Ordering]string{
	Less:    "Less",
	Equal:   "Equal",
	Greater: "Greater",
}

func (o Ordering) String() string {
	return orderingNames[o]
}

// Compare orders two cards by rank. Suits are never consulted,
// so cards of the same rank are Equal.
func Compare(a, b Card) Ordering {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra < rb:
		return Less
	case ra > rb:
		return Greater
	default:
		return Equal
	}
}
