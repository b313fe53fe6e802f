package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errStorageIsFull = errors.New("storage is full")
	errRedisDown     = errors.New("redis down")
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestManager(t *testing.T) (*GameManager, *mockPlayerRepo, *mockGameRepo) {
	t.Helper()

	players := &mockPlayerRepo{}
	games := &mockGameRepo{}
	t.Cleanup(func() {
		players.AssertExpectations(t)
		games.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewGameManager(logger, players, games, gomoku.DefaultSize), players, games
}

// ongoingGame returns a started game between p1 (black) and p2 (white).
func ongoingGame(id string) *entity.Game {
	game := entity.NewGame(id, gomoku.DefaultSize)
	game.Status = entity.StatusOngoing
	game.Players = []*entity.Player{
		{ID: "p1", Stone: gomoku.Black, GameID: id},
		{ID: "p2", Stone: gomoku.White, GameID: id},
	}
	return game
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		// Given: a player repository that accepts writes
		manager, players, _ := newTestManager(t)
		players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		// When: calling GetOrCreatePlayer with an empty playerID
		player, err := manager.GetOrCreatePlayer(ctx, "")

		// Then: a new player with a fresh ID is returned
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
		assert.False(t, player.InGame())
	})

	t.Run("Returns existing player when playerID is not empty", func(t *testing.T) {
		manager, players, _ := newTestManager(t)
		existingPlayer := &entity.Player{ID: "player123"}
		players.On("GetByID", mock.Anything, "player123").Return(existingPlayer, nil).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "player123")

		require.NoError(t, err)
		assert.Equal(t, existingPlayer, player)
	})

	t.Run("Expired player id gets a new player", func(t *testing.T) {
		// Given: the stored session is gone
		manager, players, _ := newTestManager(t)
		players.On("GetByID", mock.Anything, "expired").Return(&entity.Player{}, repository.ErrPlayerNotFound).Once()
		players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		// When: the client reconnects with its old id
		player, err := manager.GetOrCreatePlayer(ctx, "expired")

		// Then: a different player is issued
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
		assert.NotEqual(t, "expired", player.ID)
	})

	t.Run("Returns error if CreateOrUpdate fails for new player", func(t *testing.T) {
		manager, players, _ := newTestManager(t)
		players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(errStorageIsFull).Once()

		player, err := manager.GetOrCreatePlayer(ctx, "")

		require.ErrorIs(t, err, errStorageIsFull)
		assert.Nil(t, player)
	})
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates new game with the player as black", func(t *testing.T) {
		// Given: a player who is not in a game
		manager, players, games := newTestManager(t)
		player := &entity.Player{ID: "p1"}
		players.On("GetByID", ctx, "p1").Return(player, nil).Once()
		players.On("CreateOrUpdate", ctx, player).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: calling GetOrCreateGame
		game, err := manager.GetOrCreateGame(ctx, "p1")

		// Then: a waiting game is created with the configured board
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, game.Status)
		assert.Equal(t, gomoku.DefaultSize, game.Size)
		assert.Equal(t, gomoku.Black, player.Stone)
		assert.Equal(t, game.ID, player.GameID)
		require.Len(t, game.Players, 1)
	})

	t.Run("Returns existing game if player has GameID", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		existingGame := ongoingGame("g123")
		players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g123", Stone: gomoku.Black}, nil).Once()
		games.On("GetByID", ctx, "g123").Return(existingGame, nil).Once()

		game, err := manager.GetOrCreateGame(ctx, "p1")

		require.NoError(t, err)
		assert.Same(t, existingGame, game)
	})

	t.Run("Returns error if player lookup fails", func(t *testing.T) {
		manager, players, _ := newTestManager(t)
		players.On("GetByID", ctx, "p1").Return(nil, errRedisDown).Once()

		game, err := manager.GetOrCreateGame(ctx, "p1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_JoinGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Seats the second player as white", func(t *testing.T) {
		// Given: a waiting game created by p1
		manager, players, games := newTestManager(t)
		game := entity.NewGame("g1", gomoku.DefaultSize)
		game.Players = []*entity.Player{{ID: "p1", Stone: gomoku.Black, GameID: "g1"}}
		joiner := &entity.Player{ID: "p2"}

		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		players.On("GetByID", ctx, "p2").Return(joiner, nil).Once()
		players.On("CreateOrUpdate", ctx, joiner).Return(nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		// When: p2 joins
		joined, err := manager.JoinGame(ctx, "g1", "p2")

		// Then: the game starts with p2 as white
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOngoing, joined.Status)
		assert.Equal(t, gomoku.White, joiner.Stone)
		assert.Equal(t, "g1", joiner.GameID)
		assert.Same(t, joiner, joined.PlayerByStone(gomoku.White))
	})

	t.Run("Refuses a full game", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		games.On("GetByID", ctx, "g1").Return(ongoingGame("g1"), nil).Once()
		players.On("GetByID", ctx, "p3").Return(&entity.Player{ID: "p3"}, nil).Once()

		_, err := manager.JoinGame(ctx, "g1", "p3")

		require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})

	t.Run("Rejoining returns the same game", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		players.On("GetByID", ctx, "p2").Return(&entity.Player{ID: "p2", GameID: "g1", Stone: gomoku.White}, nil).Once()

		joined, err := manager.JoinGame(ctx, "g1", "p2")

		require.NoError(t, err)
		assert.Same(t, game, joined)
	})

	t.Run("Refuses a player seated in another game", func(t *testing.T) {
		// Given: p1 is black in waiting game g1 and g2 is waiting for an opponent
		manager, players, games := newTestManager(t)
		other := entity.NewGame("g2", gomoku.DefaultSize)
		other.Players = []*entity.Player{{ID: "p3", Stone: gomoku.Black, GameID: "g2"}}
		seated := &entity.Player{ID: "p1", GameID: "g1", Stone: gomoku.Black}

		games.On("GetByID", ctx, "g2").Return(other, nil).Once()
		players.On("GetByID", ctx, "p1").Return(seated, nil).Once()

		// When: p1 tries to join g2
		joined, err := manager.JoinGame(ctx, "g2", "p1")

		// Then: the join is refused and neither record changes
		require.ErrorIs(t, err, apperror.ErrAlreadyInGame)
		assert.Nil(t, joined)
		assert.Equal(t, "g1", seated.GameID)
		assert.Equal(t, gomoku.Black, seated.Stone)
		assert.True(t, other.IsWaiting())
		assert.Len(t, other.Players, 1)
		players.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted turn is saved", func(t *testing.T) {
		// Given: an ongoing game with black to move
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		players.On("GetByID", ctx, "p1").Return(game.Players[0], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		// When: black plays (9,9)
		updated, result, err := manager.MakeTurn(ctx, "p1", 9, 9)

		// Then: the game is saved with white to move
		require.NoError(t, err)
		assert.Equal(t, gomoku.Accepted, result.Outcome)
		assert.Equal(t, gomoku.Black, updated.Board[9][9])
		assert.Equal(t, gomoku.White, updated.Turn)
	})

	t.Run("Forbidden turn is not saved", func(t *testing.T) {
		// Given: black has a double-three point at (6,7)
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		for _, c := range []gomoku.Coordinate{{X: 4, Y: 7}, {X: 5, Y: 7}, {X: 6, Y: 5}, {X: 6, Y: 6}} {
			game.Board[c.Y][c.X] = gomoku.Black
		}
		players.On("GetByID", ctx, "p1").Return(game.Players[0], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		// When: black plays it
		updated, result, err := manager.MakeTurn(ctx, "p1", 6, 7)

		// Then: the rejection is reported and nothing is written
		require.ErrorIs(t, err, apperror.ErrForbiddenMove)
		assert.True(t, IsRejection(err))
		assert.Equal(t, gomoku.RejectedForbidden, result.Outcome)
		assert.Equal(t, gomoku.Empty, updated.Board[7][6])
		assert.Equal(t, gomoku.Black, updated.Turn)
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Out of turn is rejected", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		players.On("GetByID", ctx, "p2").Return(game.Players[1], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, _, err := manager.MakeTurn(ctx, "p2", 0, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Winning turn finishes the game", func(t *testing.T) {
		// Given: black has four in a row
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		for x := 0; x < 4; x++ {
			game.Board[0][x] = gomoku.Black
			game.Board[5][x] = gomoku.White
		}
		players.On("GetByID", ctx, "p1").Return(game.Players[0], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		// When: black completes five
		updated, result, err := manager.MakeTurn(ctx, "p1", 4, 0)

		// Then: the game is saved as finished
		require.NoError(t, err)
		assert.Equal(t, gomoku.MoveResult{Outcome: gomoku.Win, Winner: gomoku.Black}, result)
		assert.True(t, updated.IsFinished())
		assert.Equal(t, gomoku.Black, updated.Winner)
	})

	t.Run("Player without a game", func(t *testing.T) {
		manager, players, _ := newTestManager(t)
		players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()

		_, _, err := manager.MakeTurn(ctx, "p1", 0, 0)

		require.ErrorIs(t, err, apperror.ErrNotInGame)
	})

	t.Run("Storage failure is returned", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		players.On("GetByID", ctx, "p1").Return(game.Players[0], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(errRedisDown).Once()

		updated, _, err := manager.MakeTurn(ctx, "p1", 1, 1)

		require.ErrorIs(t, err, errRedisDown)
		assert.False(t, IsRejection(err))
		assert.Nil(t, updated)
	})
}

// memGameRepo stores JSON copies like the redis repository does.
// readDelay widens the window between loading and saving a game.
type memGameRepo struct {
	mu        sync.Mutex
	docs      map[string][]byte
	readDelay time.Duration
}

func newMemGameRepo(readDelay time.Duration, games ...*entity.Game) *memGameRepo {
	repo := &memGameRepo{docs: make(map[string][]byte), readDelay: readDelay}
	for _, game := range games {
		_ = repo.CreateOrUpdate(context.Background(), game)
	}
	return repo
}

func (that *memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	doc, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	that.docs[game.ID] = doc
	that.mu.Unlock()

	return nil
}

func (that *memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	doc, ok := that.docs[id]
	that.mu.Unlock()

	if !ok {
		return &entity.Game{}, repository.ErrGameNotFound
	}

	time.Sleep(that.readDelay)

	var game entity.Game
	if err := json.Unmarshal(doc, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that *memGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	delete(that.docs, id)
	that.mu.Unlock()

	return nil
}

func TestGameManager_MakeTurn_Concurrent(t *testing.T) {
	ctx := context.Background()

	// Given: black has two connections to the same ongoing game
	game := ongoingGame("g1")
	games := newMemGameRepo(20*time.Millisecond, game)
	players := &mockPlayerRepo{}
	players.On("GetByID", mock.Anything, "p1").Return(game.Players[0], nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := NewGameManager(logger, players, games, gomoku.DefaultSize)

	moves := []gomoku.Coordinate{{X: 3, Y: 3}, {X: 15, Y: 3}}
	results := make([]gomoku.MoveResult, len(moves))
	errs := make([]error, len(moves))

	// When: both send a move at the same time
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, move := range moves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, results[i], errs[i] = manager.MakeTurn(ctx, "p1", move.X, move.Y)
		}()
	}
	close(start)
	wg.Wait()

	// Then: exactly one move is accepted and the other finds it is white's turn
	accepted := 0
	for i := range moves {
		if errs[i] == nil {
			accepted++
			assert.Equal(t, gomoku.Accepted, results[i].Outcome)
			continue
		}
		assert.ErrorIs(t, errs[i], apperror.ErrNotYourTurn)
	}
	assert.Equal(t, 1, accepted)

	// And: the stored game holds that single stone with white to move
	stored, err := games.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, countStones(stored.Board, gomoku.Black))
	assert.Equal(t, gomoku.White, stored.Turn)
	assert.Zero(t, manager.locks.size())
}

func countStones(board [][]gomoku.Stone, color gomoku.Stone) int {
	count := 0
	for _, row := range board {
		for _, stone := range row {
			if stone == color {
				count++
			}
		}
	}
	return count
}

func TestGameManager_NewRound(t *testing.T) {
	ctx := context.Background()

	t.Run("Restarts a finished game", func(t *testing.T) {
		// Given: a game black has won
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		for x := 0; x < 5; x++ {
			game.Board[0][x] = gomoku.Black
		}
		game.Winner = gomoku.Black
		game.Status = entity.StatusFinished
		players.On("GetByID", ctx, "p2").Return(game.Players[1], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()
		games.On("CreateOrUpdate", ctx, game).Return(nil).Once()

		// When: a new round is requested
		restarted, err := manager.NewRound(ctx, "p2")

		// Then: the board is empty and black moves first
		require.NoError(t, err)
		assert.True(t, restarted.IsOngoing())
		assert.Equal(t, gomoku.Black, restarted.Turn)
		assert.Equal(t, gomoku.Empty, restarted.Winner)
		assert.Equal(t, gomoku.NewBoard(gomoku.DefaultSize).Rows(), restarted.Board)
	})

	t.Run("Refuses a running game", func(t *testing.T) {
		manager, players, games := newTestManager(t)
		game := ongoingGame("g1")
		players.On("GetByID", ctx, "p1").Return(game.Players[0], nil).Once()
		games.On("GetByID", ctx, "g1").Return(game, nil).Once()

		_, err := manager.NewRound(ctx, "p1")

		require.ErrorIs(t, err, apperror.ErrGameIsNotFinished)
	})
}

func TestGameManager_LeaveGame(t *testing.T) {
	ctx := context.Background()

	// Given: an ongoing game between p1 and p2
	manager, players, games := newTestManager(t)
	game := ongoingGame("g1")
	players.On("GetByID", ctx, "p1").Return(&entity.Player{ID: "p1", GameID: "g1", Stone: gomoku.Black}, nil).Once()
	games.On("GetByID", ctx, "g1").Return(game, nil).Once()
	games.On("DeleteByID", ctx, "g1").Return(nil).Once()
	players.On("CreateOrUpdate", ctx, &entity.Player{ID: "p1"}).Return(nil).Once()
	players.On("CreateOrUpdate", ctx, &entity.Player{ID: "p2"}).Return(nil).Once()

	// When: p1 leaves
	left, err := manager.LeaveGame(ctx, "p1")

	// Then: the game is deleted and both players are freed
	require.NoError(t, err)
	for _, player := range left.Players {
		assert.False(t, player.InGame())
	}
}
