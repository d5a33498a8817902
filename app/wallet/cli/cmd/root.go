// Package cmd contains the wallet commands.
package cmd

import (
	"crypto/ecdsa"
	"os"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	nodeURL     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "kennedy", "Name of the account key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet for the ledger",
}

// Execute runs the wallet command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	return nameservice.KeyFile(accountPath, strings.TrimSuffix(accountName, ".ecdsa"))
}

func loadPrivateKey() (*ecdsa.PrivateKey, database.AccountID, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return nil, "", err
	}

	return privateKey, database.PublicKeyToAccountID(privateKey.PublicKey), nil
}
