package game

// State is a stage in the life of a Session
type State int

const (
	AwaitingHandshake State = iota
	Dealt
	Playing
	Closed // every round was played
	Killed // a player broke the protocol or the connection failed
)

var stateNames = []string{
	"AwaitingHandshake",
	"Dealt",
	"Playing",
	"Closed",
	"Killed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further messages will be exchanged
func (s State) Terminal() bool {
	return s == Closed || s == Killed
}
