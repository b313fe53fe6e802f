package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/usecase"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"

	gameStatusLeave = "leave"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player  *entity.Player     `json:"player,omitempty"`
	Game    *entity.Game       `json:"game,omitempty"`
	Move    *gomoku.Coordinate `json:"move,omitempty"`
	Outcome string             `json:"outcome,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.InGame() {
		game, err := that.gameUseCase.GetGame(ctx, player.GameID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
		}

		payloadResp.Game = game
		payloadResp.Move = game.LastMove
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get game", "playerID", payloadReq.Player.ID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	that.broadcast(msg.Action, game, "")

	log.Info("game ready", "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Game is required")
	}

	that.register(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
	}

	that.broadcast(msg.Action, game, "")

	log.Info("Player joined game", "gameID", game.ID)

	return nil
}

// handleGameTurn - rejections go back to the sender only, accepted moves reach both players.
func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Move == nil {
		log.Error("Move is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Move is required")
	}

	that.register(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	move := *payloadReq.Move
	game, result, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, move.X, move.Y)
	if err != nil {
		if !usecase.IsRejection(err) && !isStateError(err) {
			log.Error("failed to make turn", "error", err)
			return that.sendErrorResponse(conn, msg.Action, "failed to make turn")
		}

		payloadResp := Payload{
			Move:  &move,
			Error: err.Error(),
		}
		if result.IsRejected() {
			payloadResp.Outcome = result.Outcome.String()
		}

		return that.sendMessage(conn, msg.Action, payloadResp)
	}

	that.broadcast(msg.Action, game, result.Outcome.String())

	log.Info("Player made a turn", "gameID", game.ID, "outcome", result.Outcome)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameReset")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.NewRound(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to start new round", "playerID", payloadReq.Player.ID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	that.broadcast(msg.Action, game, "")

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game doesn't exist")
	}

	game.Status = gameStatusLeave
	that.broadcast(msg.Action, game, "")

	log.Info("Player leaving", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func isStateError(err error) bool {
	return errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrGameIsNotStarted) ||
		errors.Is(err, apperror.ErrNotInGame)
}
