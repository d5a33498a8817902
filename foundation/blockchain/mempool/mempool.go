// Package mempool maintains the pool of open transactions for the ledger.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the open transactions in the order they were accepted.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a mempool seeded with previously saved transactions, in
// the order given. A nil list starts an empty pool.
func New(trans []database.Tx) *Mempool {
	mp := Mempool{
		pool: make([]database.Tx, len(trans)),
	}
	copy(mp.pool, trans)

	return &mp
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Append adds a transaction to the end of the pool and returns the new size.
func (mp *Mempool) Append(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the transactions in the pool. Changes to the copy
// are not visible to the pool.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}

// RemoveFirst drops the first n transactions from the pool. These are the
// transactions that were just included in a block.
func (mp *Mempool) RemoveFirst(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n >= len(mp.pool) {
		mp.pool = nil
		return
	}

	rest := make([]database.Tx, len(mp.pool)-n)
	copy(rest, mp.pool[n:])
	mp.pool = rest
}
