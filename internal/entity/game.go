package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the persisted state of one session.
type Game struct {
	ID          string              `json:"id"`
	Size        int                 `json:"size"`
	Board       [][]gomoku.Stone    `json:"board"`
	Turn        gomoku.Stone        `json:"turn"`
	Winner      gomoku.Stone        `json:"winner"`
	Status      string              `json:"status"`
	LastMove    *gomoku.Coordinate  `json:"last_move,omitempty"`
	WinningLine []gomoku.Coordinate `json:"winning_line,omitempty"`
	Players     []*Player           `json:"players,omitempty"`
}

func NewGame(id string, size int) *Game {
	game := &Game{
		ID:     id,
		Status: StatusWaiting,
	}
	game.Apply(gomoku.NewMoveController(size))

	return game
}

// Controller - rebuilds the rule engine for this game's board.
func (that *Game) Controller() (*gomoku.MoveController, error) {
	controller, err := gomoku.Restore(gomoku.Snapshot{
		Board:  that.Board,
		Turn:   that.Turn,
		Winner: that.Winner,
	})
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", that.ID, err)
	}

	return controller, nil
}

// Apply - copies the controller state back into the game.
func (that *Game) Apply(controller *gomoku.MoveController) {
	snapshot := controller.Snapshot()

	that.Size = controller.Size()
	that.Board = snapshot.Board
	that.Turn = snapshot.Turn
	that.Winner = snapshot.Winner
	that.WinningLine = controller.WinningLine()

	if controller.IsOver() {
		that.Status = StatusFinished
	}
}

// Restart - empties the board for another round with the same players.
func (that *Game) Restart(controller *gomoku.MoveController) {
	controller.NewGame()
	that.Apply(controller)
	that.LastMove = nil
	that.Status = StatusOngoing
}

// MakeTurn - plays stone at (x, y) through the rule engine.
// The game is left unchanged when an error is returned.
func (that *Game) MakeTurn(stone gomoku.Stone, x, y int) (gomoku.MoveResult, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return gomoku.MoveResult{}, err
	}

	if x < 0 || y < 0 || x >= that.Size || y >= that.Size {
		return gomoku.MoveResult{}, fmt.Errorf("%w: (%d,%d)", apperror.ErrInvalidCell, x, y)
	}

	if that.Turn != stone {
		return gomoku.MoveResult{}, apperror.ErrNotYourTurn
	}

	controller, err := that.Controller()
	if err != nil {
		return gomoku.MoveResult{}, err
	}

	result := controller.SubmitMove(x, y)
	switch result.Outcome {
	case gomoku.RejectedOccupied:
		return result, fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, x, y)
	case gomoku.RejectedForbidden:
		return result, fmt.Errorf("%w: (%d,%d)", apperror.ErrForbiddenMove, x, y)
	case gomoku.Accepted, gomoku.Win:
		that.Apply(controller)
		that.LastMove = &gomoku.Coordinate{X: x, Y: y}
	}

	return result, nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsFull() bool {
	return len(that.Players) == 2
}

// PlayerByStone - returns the player holding the given color, or nil.
func (that *Game) PlayerByStone(stone gomoku.Stone) *Player {
	for _, player := range that.Players {
		if player.Stone == stone {
			return player
		}
	}

	return nil
}
