// Package memory implements the ability to save and load a ledger snapshot
// in memory.
package memory

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Memory represents the storage implementation for keeping the snapshot in
// memory. This implements the database.Storage interface.
type Memory struct {
	mu       sync.RWMutex
	snapshot *database.Snapshot
	saves    int
	saveErr  error
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Load returns a copy of the last saved snapshot.
func (m *Memory) Load() (database.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return database.Snapshot{}, database.ErrNoSnapshot
	}

	return clone(*m.snapshot), nil
}

// Save keeps a copy of the snapshot. If a save error has been set, that
// error is returned and nothing is kept.
func (m *Memory) Save(snapshot database.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	cpy := clone(snapshot)
	m.snapshot = &cpy
	m.saves++

	return nil
}

// SetSaveError makes every following Save fail with the specified error.
// Passing nil makes saves work again.
func (m *Memory) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}

// =============================================================================

// clone makes a deep copy so callers can't change what is stored.
func clone(s database.Snapshot) database.Snapshot {
	blocks := make([]database.Block, len(s.Blocks))
	for i, block := range s.Blocks {
		trans := make([]database.Tx, len(block.Transactions))
		copy(trans, block.Transactions)
		block.Transactions = trans
		blocks[i] = block
	}

	trans := make([]database.Tx, len(s.Trans))
	copy(trans, s.Trans)

	peers := make([]string, len(s.Peers))
	copy(peers, s.Peers)

	return database.Snapshot{
		Blocks: blocks,
		Trans:  trans,
		Peers:  peers,
	}
}
