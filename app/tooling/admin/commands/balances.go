package commands

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

// Balances prints the balance of every account found in the snapshot,
// counting the open transactions as spent.
func Balances(snapshot database.Snapshot, ns *nameservice.NameService) error {
	sheet := balance.NewSheet(snapshot.Blocks, snapshot.Trans)

	for _, accountID := range sheet.Accounts() {
		fmt.Printf("%-12s %s %g\n", ns.Lookup(accountID), accountID, sheet.Balance(accountID))
	}
	fmt.Printf("rewards issued: %g\n", sheet.Rewards())

	return nil
}
