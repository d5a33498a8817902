package commands

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Verify checks the chain of blocks and the open pool stored in the snapshot.
func Verify(snapshot database.Snapshot) error {
	evHandler := func(v string, args ...any) {}

	if err := database.VerifyChain(snapshot.Blocks, evHandler); err != nil {
		return err
	}
	fmt.Printf("chain of %d blocks is valid\n", len(snapshot.Blocks))

	sheet := balance.NewSheet(snapshot.Blocks, nil)
	if err := database.VerifyTransactions(snapshot.Trans, sheet.Balance); err != nil {
		return err
	}
	fmt.Printf("%d open transactions are valid\n", len(snapshot.Trans))

	return nil
}
