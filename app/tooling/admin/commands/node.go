package commands

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

// NodeID resolves the node whose snapshot is inspected, either from an
// explicit account id or from the name of its key file. With neither the
// snapshot of a node running without an identity is used.
func NodeID(id string, name string, ns *nameservice.NameService) (database.AccountID, error) {
	switch {
	case id != "":
		return database.ToAccountID(id)

	case name != "":
		accountID, exists := ns.AccountID(name)
		if !exists {
			return "", fmt.Errorf("no key file found for node %q", name)
		}
		return accountID, nil
	}

	return "", nil
}
