package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameIsNotFinished = errors.New("game is not finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotInGame         = errors.New("player is not in a game")
	ErrAlreadyInGame     = errors.New("player is already in another game")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrForbiddenMove     = errors.New("move creates a double open three")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrGameAlreadyExists = errors.New("game already exists")
)
