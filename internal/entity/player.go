package entity

import "github.com/rocketscienceinc/gomoku-backend/internal/gomoku"

type Player struct {
	ID     string       `json:"id"`
	Stone  gomoku.Stone `json:"stone,omitempty"`
	GameID string       `json:"game_id,omitempty"`
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}

// Leave - detaches the player from its game.
func (that *Player) Leave() {
	that.GameID = ""
	that.Stone = gomoku.Empty
}
