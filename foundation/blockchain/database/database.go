// Package database handles the lower level support for the ledger: blocks,
// transactions, the proof of work puzzle, chain verification and the contract
// for persisting a snapshot of the ledger.
package database

import (
	"errors"
)

// ErrNoSnapshot is returned by a Storage when there is nothing to load.
var ErrNoSnapshot = errors.New("no snapshot")

// Storage interface represents the behavior required to be implemented by any
// package providing support for saving and loading the ledger.
type Storage interface {
	Load() (Snapshot, error)
	Save(snapshot Snapshot) error
	Close() error
}

// =============================================================================

// Snapshot represents everything the ledger persists between runs.
type Snapshot struct {
	Blocks []Block
	Trans  []Tx
	Peers  []string
}

// Validate checks the snapshot has the minimum shape to be used.
func (s Snapshot) Validate() error {
	if len(s.Blocks) == 0 {
		return errors.New("snapshot has no blocks")
	}

	if s.Blocks[0].Index != 0 {
		return errors.New("snapshot does not start with a genesis block")
	}

	return nil
}
