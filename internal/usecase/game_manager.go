package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager - drives game sessions stored in the repositories.
// Every call loads the session, applies one change through the rule engine and saves it back.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
	boardSize  int

	locks *gameLocks
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, boardSize int) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		boardSize:  boardSize,

		locks: newGameLocks(),
	}
}

// MakeTurn - plays the player's stone at (x, y).
// A rejected move returns the unchanged game together with the rejection error.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, x, y int) (*entity.Game, gomoku.MoveResult, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, gomoku.MoveResult{}, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, gomoku.MoveResult{}, apperror.ErrNotInGame
	}

	unlock := that.locks.lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, gomoku.MoveResult{}, fmt.Errorf("failed get game: %w", err)
	}

	result, err := game.MakeTurn(player.Stone, x, y)
	if err != nil {
		log.Debug("turn rejected", "gameID", game.ID, "x", x, "y", y, "error", err)
		return game, result, fmt.Errorf("failed make turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, gomoku.MoveResult{}, fmt.Errorf("failed update game: %w", err)
	}

	if result.Outcome == gomoku.Win {
		log.Info("game won", "gameID", game.ID, "winner", result.Winner)
	}

	return game, result, nil
}

// GetOrCreateGame - returns the player's current game or opens a new one with the player as black.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		newGame, err := that.createGame(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed create game: %w", err)
		}

		return newGame, nil
	}

	existingGame, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	return existingGame, nil
}

// JoinGame - seats the player as white and starts the game.
// A player already seated in another game has to leave it first.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(gameID)
	defer unlock()

	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID == existingGame.ID {
		return existingGame, nil
	}

	if player.InGame() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, player.GameID)
	}

	if existingGame.IsFull() || !existingGame.IsWaiting() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyExists, gameID)
	}

	player.GameID = existingGame.ID
	player.Stone = gomoku.White
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player by id: %w", err)
	}

	existingGame.Status = entity.StatusOngoing
	existingGame.Players = append(existingGame.Players, player)
	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed update game by id: %w", err)
	}

	return existingGame, nil
}

// NewRound - clears the board of a finished game so the same players can play again.
func (that *GameManager) NewRound(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	unlock := that.locks.lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	if !game.IsFinished() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsNotFinished, game.ID)
	}

	controller, err := game.Controller()
	if err != nil {
		return nil, fmt.Errorf("failed restore game: %w", err)
	}

	game.Restart(controller)

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	that.logger.Info("new round started", "method", "NewRound", "gameID", game.ID)

	return game, nil
}

// LeaveGame - removes the player's game and frees both players.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	unlock := that.locks.lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	that.deleteGame(ctx, game)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

// GetOrCreatePlayer - an empty or expired id gets a fresh player.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		that.logger.Info("player session expired, creating a new one", "method", "GetOrCreatePlayer", "playerID", id)
		return that.GetOrCreatePlayer(ctx, "")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id %w", err)
	}

	return player, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	gameID := pkg.GenerateGameID()
	player.GameID = gameID
	player.Stone = gomoku.Black

	if err := that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player: %w", err)
	}

	newGame := entity.NewGame(gameID, that.boardSize)
	newGame.Players = []*entity.Player{
		player,
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return newGame, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		player.Leave()

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "error", err)
		}
	}

	log.Info("game deleted")
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateNewSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// IsRejection - reports whether err is a rule rejection the caller can recover from.
func IsRejection(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrForbiddenMove) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrInvalidCell)
}
