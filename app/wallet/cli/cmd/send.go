package cmd

import (
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and send a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account id or key file name of the recipient.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, accountID, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	recipient, err := resolveAccount(to)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.NewTx(accountID, recipient, amount)
	if err != nil {
		log.Fatal(err)
	}

	tx, err = tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	if err := call(http.MethodPost, "/v1/tx/submit", tx, nil); err != nil {
		pterm.Error.Println(err)
		return
	}

	pterm.Success.Printfln("sent %g to %s", amount, recipient)
}

// resolveAccount accepts an account id or the name of a key file in the
// account path.
func resolveAccount(acct string) (database.AccountID, error) {
	if accountID, err := database.ToAccountID(acct); err == nil {
		return accountID, nil
	}

	ns, err := nameservice.New(accountPath)
	if err != nil {
		return "", err
	}

	if accountID, exists := ns.AccountID(acct); exists {
		return accountID, nil
	}

	return database.ToAccountID(acct)
}
