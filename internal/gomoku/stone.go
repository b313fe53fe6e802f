package gomoku

import (
	"errors"
	"fmt"
)

var ErrUnknownStone = errors.New("unknown stone")

// Stone is the content of a single intersection.
// Outside is only ever returned by queries, a Board never stores it.
type Stone int8

const (
	Empty Stone = iota
	Black
	White
	Outside
)

func (that Stone) String() string {
	switch that {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("stone(%d)", int8(that))
	}
}

// Opponent - returns the other player's color. Non-player stones map to themselves.
func (that Stone) Opponent() Stone {
	switch that {
	case Black:
		return White
	case White:
		return Black
	case Empty, Outside:
		return that
	default:
		return that
	}
}

// IsPlayer - reports whether the stone belongs to one of the two players.
func (that Stone) IsPlayer() bool {
	return that == Black || that == White
}

func (that Stone) MarshalText() ([]byte, error) {
	switch that {
	case Empty, Black, White, Outside:
		return []byte(that.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStone, int8(that))
	}
}

func (that *Stone) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty", "":
		*that = Empty
	case "black":
		*that = Black
	case "white":
		*that = White
	case "outside":
		*that = Outside
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStone, text)
	}

	return nil
}
