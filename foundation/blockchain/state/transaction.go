package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction from a wallet. The sender must be
// able to cover the amount with its confirmed balance less its pending
// debits. Signatures are checked at mining time. Once accepted locally the
// transaction is shared with the known peers. If a peer rejects it,
// ErrPeerRejected is returned but the transaction stays in the pool.
func (s *State) SubmitTransaction(ctx context.Context, tx database.Tx) error {
	if s.nodeID == "" {
		return ErrNoNodeID
	}

	if err := s.addTransaction(tx); err != nil {
		return err
	}

	return s.NetSendTxToPeers(ctx, tx)
}

// SubmitPeerTransaction accepts a transaction shared by a peer. The same
// balance check applies but the transaction is not shared again.
func (s *State) SubmitPeerTransaction(tx database.Tx) error {
	return s.addTransaction(tx)
}

// =============================================================================

// addTransaction validates the transaction against the current balance of
// the sender and appends it to the open pool.
func (s *State) addTransaction(tx database.Tx) error {
	if tx.IsReward() {
		return fmt.Errorf("%w: reward transactions are only created by mining", database.ErrInvalidSignature)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	balanceOf := func(accountID database.AccountID) float64 {
		return balance.Of(accountID, s.blocks, s.mempool.Copy())
	}

	if err := database.VerifyTransaction(tx, balanceOf); err != nil {
		s.evHandler("state: addTransaction: rejected: %s: %s", tx, err)
		return err
	}

	n := s.mempool.Append(tx)
	s.evHandler("state: addTransaction: accepted: %s: open-trans[%d]", tx, n)

	s.persist()

	return nil
}
