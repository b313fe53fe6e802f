package gomoku

import (
	"errors"
	"fmt"
)

var ErrInvalidSnapshot = errors.New("invalid game snapshot")

// Outcome - what happened to a submitted move.
// The zero value NoOutcome means no move was evaluated.
type Outcome int8

const (
	NoOutcome Outcome = iota
	Accepted
	RejectedOccupied
	RejectedForbidden
	Win
)

func (that Outcome) String() string {
	switch that {
	case NoOutcome:
		return "none"
	case Accepted:
		return "accepted"
	case RejectedOccupied:
		return "rejected_occupied"
	case RejectedForbidden:
		return "rejected_forbidden"
	case Win:
		return "win"
	default:
		return fmt.Sprintf("outcome(%d)", int8(that))
	}
}

// MoveResult - Winner is only set when Outcome is Win.
type MoveResult struct {
	Outcome Outcome
	Winner  Stone
}

func (that MoveResult) IsRejected() bool {
	return that.Outcome == RejectedOccupied || that.Outcome == RejectedForbidden
}

// Snapshot is the externally visible state of one session.
type Snapshot struct {
	Board  [][]Stone
	Turn   Stone
	Winner Stone
}

// MoveController owns one game session: its board, whose turn it is and
// whether the game is over. It is not safe for concurrent use.
type MoveController struct {
	board  *Board
	turn   Stone
	winner Stone
}

func NewMoveController(size int) *MoveController {
	return &MoveController{
		board: NewBoard(size),
		turn:  Black,
	}
}

// Restore - rebuilds a controller from a snapshot.
// A Winner other than Empty puts the controller in the game over state.
func Restore(snapshot Snapshot) (*MoveController, error) {
	board, err := LoadBoard(snapshot.Board)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if snapshot.Winner != Empty && !snapshot.Winner.IsPlayer() {
		return nil, fmt.Errorf("%w: winner %v", ErrInvalidSnapshot, snapshot.Winner)
	}

	turn := snapshot.Turn
	if snapshot.Winner == Empty && !turn.IsPlayer() {
		return nil, fmt.Errorf("%w: turn %v", ErrInvalidSnapshot, turn)
	}

	return &MoveController{
		board:  board,
		turn:   turn,
		winner: snapshot.Winner,
	}, nil
}

// SubmitMove - attempts to play the current turn's stone at (x, y).
func (that *MoveController) SubmitMove(x, y int) MoveResult {
	if that.IsOver() {
		return MoveResult{Outcome: Win, Winner: that.winner}
	}

	if that.board.Query(x, y) != Empty {
		return MoveResult{Outcome: RejectedOccupied}
	}

	color := that.turn
	if color == Black && WouldBeOpenThree(that.board, x, y) {
		return MoveResult{Outcome: RejectedForbidden}
	}

	that.board.Place(x, y, color)

	if HasWin(that.board, color) {
		that.winner = color
		return MoveResult{Outcome: Win, Winner: color}
	}

	that.turn = color.Opponent()

	return MoveResult{Outcome: Accepted}
}

// NewGame - clears the board and gives the first move back to Black.
func (that *MoveController) NewGame() {
	that.board.Reset(that.board.Size())
	that.turn = Black
	that.winner = Empty
}

func (that *MoveController) Query(x, y int) Stone {
	return that.board.Query(x, y)
}

func (that *MoveController) Size() int {
	return that.board.Size()
}

// Turn - color to move. After a win it stays on the winner.
func (that *MoveController) Turn() Stone {
	return that.turn
}

func (that *MoveController) Winner() Stone {
	return that.winner
}

func (that *MoveController) IsOver() bool {
	return that.winner != Empty
}

// WinningLine - the five stones that ended the game, if it is over.
func (that *MoveController) WinningLine() []Coordinate {
	if !that.IsOver() {
		return nil
	}

	line, _ := WinningLine(that.board, that.winner)

	return line
}

func (that *MoveController) Snapshot() Snapshot {
	return Snapshot{
		Board:  that.board.Rows(),
		Turn:   that.turn,
		Winner: that.winner,
	}
}
