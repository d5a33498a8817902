package balance_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestBalances(t *testing.T) {
	const (
		miner = database.AccountID("miner")
		alice = database.AccountID("alice")
		bob   = database.AccountID("bob")
	)

	type table struct {
		name    string
		blocks  []database.Block
		pool    []database.Tx
		final   map[database.AccountID]float64
		rewards float64
	}

	tt := []table{
		{
			name: "basic",
			blocks: []database.Block{
				database.Genesis(),
				{Index: 1, Transactions: []database.Tx{database.NewRewardTx(miner)}},
				{Index: 2, Transactions: []database.Tx{
					{Sender: miner, Recipient: alice, Amount: 4},
					{Sender: miner, Recipient: bob, Amount: 2.5},
					database.NewRewardTx(alice),
				}},
			},
			pool: []database.Tx{
				{Sender: alice, Recipient: bob, Amount: 3},
			},
			final: map[database.AccountID]float64{
				miner: 3.5,
				alice: 11,
				bob:   2.5,
			},
			rewards: 20,
		},
	}

	t.Log("Given the need to compute balances from the chain and the open pool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of blocks.", testID)
			{
				f := func(t *testing.T) {
					sheet := balance.NewSheet(tst.blocks, tst.pool)

					for account, exp := range tst.final {
						if got := sheet.Balance(account); got != exp {
							t.Logf("\t%s\tTest %d:\tgot: %g", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %g", failed, testID, exp)
							t.Errorf("\t%s\tTest %d:\tShould have correct balance for %s.", failed, testID, account)
						} else {
							t.Logf("\t%s\tTest %d:\tShould have correct balance for %s.", success, testID, account)
						}

						if got := balance.Of(account, tst.blocks, tst.pool); got != exp {
							t.Errorf("\t%s\tTest %d:\tShould compute the same single balance for %s, got %g.", failed, testID, account, got)
						}
					}

					// Open debits have no matching credit yet, so only the
					// confirmed blocks are a closed set.
					confirmed := balance.NewSheet(tst.blocks, nil)

					var total float64
					for _, account := range confirmed.Accounts() {
						total += confirmed.Balance(account)
					}

					if total != tst.rewards || sheet.Rewards() != tst.rewards {
						t.Logf("\t%s\tTest %d:\tgot: %g", failed, testID, total)
						t.Logf("\t%s\tTest %d:\texp: %g", failed, testID, tst.rewards)
						t.Fatalf("\t%s\tTest %d:\tShould sum every balance to the rewards issued.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould sum every balance to the rewards issued.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
