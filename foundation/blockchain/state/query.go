package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// QueryBalance returns the spendable balance of the account: confirmed
// credits less confirmed debits less pending debits.
func (s *State) QueryBalance(accountID database.AccountID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return balance.Of(accountID, s.blocks, s.mempool.Copy())
}

// QueryBalances returns the balance sheet for every account seen on the
// chain or in the open pool.
func (s *State) QueryBalances() *balance.Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return balance.NewSheet(s.blocks, s.mempool.Copy())
}

// QueryMempoolLength returns the current length of the open pool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}
