package commands

import (
	"fmt"
	"strconv"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

// Transactions prints the transactions of the block at the index given as
// the second argument. Without an index the open pool is printed.
func Transactions(args conf.Args, snapshot database.Snapshot, ns *nameservice.NameService) error {
	trans := snapshot.Trans

	if arg := args.Num(1); arg != "" {
		index, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid block index %q: %w", arg, err)
		}

		if index >= uint64(len(snapshot.Blocks)) {
			return fmt.Errorf("block %d not found, latest block is %d", index, len(snapshot.Blocks)-1)
		}

		trans = snapshot.Blocks[index].Transactions
	}

	for _, tx := range trans {
		fmt.Printf("%-12s -> %-12s %g\n", ns.Lookup(tx.Sender), ns.Lookup(tx.Recipient), tx.Amount)
	}

	return nil
}
