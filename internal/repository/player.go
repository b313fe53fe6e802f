package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// dbPlayer keeps a player's seat (game and stone) for as long as the session lives.
type dbPlayer struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlayerRepository(client *redis.Client, ttl time.Duration) PlayerRepository {
	return &dbPlayer{client: client, ttl: ttl}
}

func playerKey(id string) string {
	return "player:" + id
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	return saveDocument(ctx, that.client, playerKey(player.ID), player, that.ttl)
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	return loadDocument[entity.Player](ctx, that.client, playerKey(id), ErrPlayerNotFound)
}
