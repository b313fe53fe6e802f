package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku-backend/internal/usecase"
	"github.com/rocketscienceinc/gomoku-backend/transport/rest"
	"github.com/rocketscienceinc/gomoku-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// serverFunc runs one listener until ctx is done.
type serverFunc func(ctx context.Context) error

// RunApp - connects the session store, wires the game manager into both
// listeners and blocks until a signal arrives or a listener fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := conf.Redis.GetRedisAddr()
	if addr == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}()

	games := usecase.NewGameManager(
		logger,
		repository.NewPlayerRepository(redisStorage, conf.Game.SessionTTL),
		repository.NewGameRepository(redisStorage, conf.Game.SessionTTL),
		conf.Game.BoardSize,
	)

	log.Info("game manager ready", "boardSize", conf.Game.BoardSize, "sessionTTL", conf.Game.SessionTTL)

	servers := map[string]serverFunc{
		"http": func(ctx context.Context) error {
			log.Info("Starting HTTP server", "port", conf.HTTPPort)
			return rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, games))
		},
		"websocket": func(ctx context.Context) error {
			log.Info("Starting WebSocket server", "port", conf.SocketPort)
			return websocket.New(logger, games).Start(ctx, conf.SocketPort)
		},
	}

	return runServers(ctx, log, servers)
}

// runServers - the first listener error cancels the others.
func runServers(ctx context.Context, log *slog.Logger, servers map[string]serverFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))
	for name, serve := range servers {
		go func() {
			if err := serve(ctx); err != nil {
				errCh <- fmt.Errorf("%s server error: %w", name, err)
				return
			}
			errCh <- nil
		}()
	}

	var firstErr error
	for range servers {
		if err := <-errCh; err != nil && firstErr == nil {
			log.Error("server stopped", "error", err)
			firstErr = err
			cancel()
		}
	}

	if firstErr == nil {
		log.Info("Application context canceled, shutting down")
	}

	return firstErr
}
