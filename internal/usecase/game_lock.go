package usecase

import "sync"

// gameLocks serializes the load-change-save cycle of each game.
// Entries are dropped once nobody holds or waits for them.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[string]*gameLock)}
}

// lock - blocks until the game is free and returns the matching unlock.
func (that *gameLocks) lock(gameID string) func() {
	that.mu.Lock()
	entry, ok := that.locks[gameID]
	if !ok {
		entry = &gameLock{}
		that.locks[gameID] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, gameID)
		}
		that.mu.Unlock()
	}
}

func (that *gameLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
