// Package nameservice reads a folder of account key files and creates a
// name lookup for the accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExt is the extension of the private key files.
const keyExt = ".ecdsa"

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	names    map[database.AccountID]string
	accounts map[string]database.AccountID
}

// New constructs a name service from the key files found under root. The
// file name without its extension is the account name.
func New(root string) (*NameService, error) {
	ns := NameService{
		names:    make(map[database.AccountID]string),
		accounts: make(map[string]database.AccountID),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != keyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
		name := strings.TrimSuffix(path.Base(fileName), keyExt)

		ns.names[accountID] = name
		ns.accounts[name] = accountID

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account. Unknown accounts are
// returned as is.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	name, exists := ns.names[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// AccountID returns the account for the specified name.
func (ns *NameService) AccountID(name string) (database.AccountID, bool) {
	accountID, exists := ns.accounts[name]
	return accountID, exists
}

// Names returns the known account names sorted.
func (ns *NameService) Names() []string {
	names := make([]string, 0, len(ns.accounts))
	for name := range ns.accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// KeyFile returns the path of the key file for the account name.
func KeyFile(root string, name string) string {
	return filepath.Join(root, name+keyExt)
}
