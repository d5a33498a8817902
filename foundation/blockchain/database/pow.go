package database

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Difficulty is the number of leading zero characters the hex digest of a
// proof guess must start with.
const Difficulty = 2

// =============================================================================

// SolveProof searches for the smallest proof that solves the puzzle for the
// transactions and previous hash. The search starts at zero so the same
// inputs always produce the same proof. It only returns early if the context
// is cancelled.
func SolveProof(ctx context.Context, trans []Tx, previousHash string, evHandler func(v string, args ...any)) (uint64, error) {
	evHandler("database: SolveProof: MINING: started: prevBlk[%s]: numTrans[%d]", previousHash, len(trans))
	defer evHandler("database: SolveProof: MINING: completed")

	// The guess prefix doesn't change between attempts.
	prefix, err := guessPrefix(trans, previousHash)
	if err != nil {
		return 0, err
	}

	var attempts uint64
	for proof := uint64(0); ; proof++ {
		attempts++
		if attempts%1_000_000 == 0 {
			evHandler("database: SolveProof: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			evHandler("database: SolveProof: MINING: CANCELLED")
			return 0, ctx.Err()
		}

		if isHashSolved(guessHash(prefix, proof)) {
			evHandler("database: SolveProof: MINING: SOLVED: proof[%d]: attempts[%d]", proof, attempts)
			return proof, nil
		}
	}
}

// IsValidProof checks the proof solves the puzzle for the transactions and
// previous hash.
func IsValidProof(trans []Tx, previousHash string, proof uint64) bool {
	prefix, err := guessPrefix(trans, previousHash)
	if err != nil {
		return false
	}

	return isHashSolved(guessHash(prefix, proof))
}

// =============================================================================

// guessPrefix builds the part of the guess string made of the transactions
// followed by the previous hash.
func guessPrefix(trans []Tx, previousHash string) ([]byte, error) {
	payloads := make([]txPayload, len(trans))
	for i, tx := range trans {
		payloads[i] = tx.payload()
	}

	data, err := json.Marshal(payloads)
	if err != nil {
		return nil, err
	}

	return append(data, previousHash...), nil
}

// guessHash appends the proof to the prefix and hashes the guess.
func guessHash(prefix []byte, proof uint64) string {
	guess := make([]byte, len(prefix), len(prefix)+20)
	copy(guess, prefix)
	guess = strconv.AppendUint(guess, proof, 10)

	return signature.HashBytes(guess)
}

// isHashSolved checks the hash complies with the proof of work rules. We
// need to match a difficulty number of 0's.
func isHashSolved(hash string) bool {
	const hexLength = 64

	if len(hash) != hexLength {
		return false
	}

	return strings.HasPrefix(hash, strings.Repeat("0", Difficulty))
}
