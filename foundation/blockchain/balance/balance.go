// Package balance computes account balances from the chain and the open
// transaction pool.
package balance

import (
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Sheet represents the balances of every participant seen on the chain or in
// the open pool. Confirmed blocks count on both sides. Open transactions only
// count as debits, so pending incoming transfers are not spendable.
type Sheet struct {
	sheet   map[database.AccountID]float64
	rewards float64
}

// NewSheet computes a balance sheet from the blocks and the open transactions.
func NewSheet(blocks []database.Block, pool []database.Tx) *Sheet {
	bs := Sheet{
		sheet: make(map[database.AccountID]float64),
	}

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.IsReward() {
				bs.rewards += tx.Amount
			} else {
				bs.sheet[tx.Sender] -= tx.Amount
			}
			bs.sheet[tx.Recipient] += tx.Amount
		}
	}

	for _, tx := range pool {
		bs.sheet[tx.Sender] -= tx.Amount

		// Make sure the recipient shows up on the sheet.
		bs.sheet[tx.Recipient] += 0
	}

	return &bs
}

// Balance returns the balance for the specified account. Unknown accounts
// have a zero balance.
func (bs *Sheet) Balance(accountID database.AccountID) float64 {
	return bs.sheet[accountID]
}

// Rewards returns the total of all mining rewards issued on the chain.
func (bs *Sheet) Rewards() float64 {
	return bs.rewards
}

// Accounts returns the accounts on the sheet sorted by id.
func (bs *Sheet) Accounts() []database.AccountID {
	accounts := make([]database.AccountID, 0, len(bs.sheet))
	for accountID := range bs.sheet {
		accounts = append(accounts, accountID)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i] < accounts[j]
	})

	return accounts
}

// Copy makes a copy of the current balance sheet but returns the raw data.
func (bs *Sheet) Copy() map[database.AccountID]float64 {
	sheet := make(map[database.AccountID]float64, len(bs.sheet))
	for accountID, value := range bs.sheet {
		sheet[accountID] = value
	}
	return sheet
}

// =============================================================================

// Of computes the balance of a single account without building a sheet.
func Of(accountID database.AccountID, blocks []database.Block, pool []database.Tx) float64 {
	var received, sent float64

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.Recipient == accountID {
				received += tx.Amount
			}
			if tx.Sender == accountID && !tx.IsReward() {
				sent += tx.Amount
			}
		}
	}

	for _, tx := range pool {
		if tx.Sender == accountID {
			sent += tx.Amount
		}
	}

	return received - sent
}
