package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
)

type handlers struct {
	logger *slog.Logger
	games  gameReader
}

func newHandlers(logger *slog.Logger, games gameReader) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// GetGame - returns the stored session so a client can redraw the board.
func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")
	gameID := chi.URLParam(r, "id")

	game, err := that.games.GetGame(r.Context(), gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", gameID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
