package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MineNewBlock creates the next block from the transactions in the open pool
// and credits this node with the mining reward. Mining an empty pool produces
// a block holding only the reward. Only one mining operation runs at a time.
// A cancelled context stops the proof search without any state change.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	if s.nodeID == "" {
		return database.Block{}, ErrNoNodeID
	}

	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	// Capture the latest block and the pool as they are right now. Anything
	// submitted while the proof is being searched waits for the next block.
	s.mu.RLock()
	if err := s.checkHalted(); err != nil {
		s.mu.RUnlock()
		return database.Block{}, err
	}
	latestBlock := s.blocks[len(s.blocks)-1]
	index := uint64(len(s.blocks))
	trans := s.mempool.Copy()
	s.mu.RUnlock()

	previousHash := latestBlock.Hash()

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d] open-trans[%d]", index, len(trans))

	proof, err := database.SolveProof(ctx, trans, previousHash, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: verify signatures")

	for i, tx := range trans {
		if err := tx.VerifySignature(); err != nil {
			s.evHandler("state: MineNewBlock: MINING: ERROR: open tx[%d]: %s", i, err)
			return database.Block{}, fmt.Errorf("%w: tx[%d]: %s", ErrCorruptPool, i, err)
		}
	}

	// The reward is added to a copy so the pool seen by readers is not
	// changed before the block is committed.
	blockTrans := make([]database.Tx, len(trans), len(trans)+1)
	copy(blockTrans, trans)
	blockTrans = append(blockTrans, database.NewRewardTx(s.nodeID))

	block := database.NewBlock(index, previousHash, blockTrans, proof)

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return database.Block{}, err
	}

	s.blocks = append(s.blocks, block)
	s.mempool.RemoveFirst(len(trans))
	s.persist()

	s.evHandler("state: MineNewBlock: MINING: blk[%d] hash[%s] proof[%d] trans[%d]", block.Index, block.Hash(), block.Proof, len(block.Transactions))

	return block, nil
}
