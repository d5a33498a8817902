package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// VerifyChain re-validates the whole chain. When the chain is invalid the
// ledger is halted and every later mutation returns ErrChainHalted.
func (s *State) VerifyChain() error {
	s.evHandler("state: VerifyChain: started")
	defer s.evHandler("state: VerifyChain: completed")

	blocks := s.RetrieveBlocks()

	if err := database.VerifyChain(blocks, s.evHandler); err != nil {
		s.mu.Lock()
		s.halt(err)
		s.mu.Unlock()

		return err
	}

	return nil
}

// IsChainValid reports if the chain passes verification.
func (s *State) IsChainValid() bool {
	return s.VerifyChain() == nil
}

// VerifyOpenTransactions checks every open transaction can still be covered
// by its sender. Each one is checked against the confirmed balance less the
// sender's earlier entries in the pool.
func (s *State) VerifyOpenTransactions() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	confirmed := balance.NewSheet(s.blocks, nil)

	return database.VerifyTransactions(s.mempool.Copy(), confirmed.Balance)
}

// IsHalted reports the reason the ledger was halted, or nil if it is
// accepting changes.
func (s *State) IsHalted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.halted
}
