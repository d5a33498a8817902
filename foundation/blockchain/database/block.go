package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// ErrInvalidChain is returned when a block in the chain does not link to its
// predecessor or its proof of work does not hold.
var ErrInvalidChain = errors.New("invalid chain")

// GenesisProof is the fixed proof carried by the genesis block.
const GenesisProof uint64 = 100

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the previous block by its hash.
type Block struct {
	Index        uint64  `json:"index"`
	PreviousHash string  `json:"previous_hash"`
	TimeStamp    float64 `json:"timestamp"`
	Transactions []Tx    `json:"transactions"`
	Proof        uint64  `json:"proof"`
}

// Genesis returns the fixed first block of every chain.
func Genesis() Block {
	return Block{
		Index:        0,
		PreviousHash: "",
		TimeStamp:    0,
		Transactions: []Tx{},
		Proof:        GenesisProof,
	}
}

// NewBlock constructs a block stamped with the current time.
func NewBlock(index uint64, previousHash string, trans []Tx, proof uint64) Block {
	if trans == nil {
		trans = []Tx{}
	}

	return Block{
		Index:        index,
		PreviousHash: previousHash,
		TimeStamp:    float64(time.Now().UTC().UnixMicro()) / 1e6,
		Transactions: trans,
		Proof:        proof,
	}
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {

	// A nil and an empty transaction list must hash the same.
	if b.Transactions == nil {
		b.Transactions = []Tx{}
	}

	return signature.Hash(b)
}

// ProofTransactions returns the transactions the proof of work was solved
// for. That is every transaction except the final reward entry.
func (b Block) ProofTransactions() []Tx {
	if len(b.Transactions) == 0 {
		return []Tx{}
	}

	return b.Transactions[:len(b.Transactions)-1]
}

// ValidateBlock takes a block and validates it against its predecessor.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block index is the next index", b.Index)

	nextIndex := previousBlock.Index + 1
	if b.Index != nextIndex {
		return fmt.Errorf("this block is not the next index, got %d, exp %d", b.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block ends with a single mining reward", b.Index)

	if err := b.validateReward(); err != nil {
		return err
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: previous hash does match previous block", b.Index)

	if prevHash := previousBlock.Hash(); b.PreviousHash != prevHash {
		return fmt.Errorf("previous block hash doesn't match our known previous block, got %s, exp %s", b.PreviousHash, prevHash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: proof of work is solved", b.Index)

	if !IsValidProof(b.ProofTransactions(), b.PreviousHash, b.Proof) {
		return fmt.Errorf("proof %d does not solve the puzzle", b.Proof)
	}

	return nil
}

// validateReward checks the final transaction is the mining reward for the
// fixed amount. The reward is not covered by the proof.
func (b Block) validateReward() error {
	if len(b.Transactions) == 0 {
		return errors.New("block has no mining reward")
	}

	reward := b.Transactions[len(b.Transactions)-1]
	if !reward.IsReward() {
		return fmt.Errorf("last transaction is not a mining reward, sender %s", reward.Sender)
	}

	if reward.Amount != MiningReward {
		return fmt.Errorf("mining reward is %g, exp %g", reward.Amount, MiningReward)
	}

	for i, tx := range b.ProofTransactions() {
		if tx.IsReward() {
			return fmt.Errorf("transaction %d is a mining reward before the end of the block", i)
		}
	}

	return nil
}

// =============================================================================

// VerifyChain re-validates every block after genesis against its predecessor.
// It stops at the first failing block and reports it.
func VerifyChain(blocks []Block, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: no genesis block", ErrInvalidChain)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], evHandler); err != nil {
			return fmt.Errorf("%w: blk[%d]: %s", ErrInvalidChain, i, err)
		}
	}

	return nil
}
