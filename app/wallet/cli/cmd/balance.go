package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type balance struct {
	Account string  `json:"account"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Rewards     float64   `json:"rewards"`
	Balances    []balance `json:"balances"`
}

var (
	all bool
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().BoolVar(&all, "all", false, "Print the balance of every account.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	if all {
		balancesRun()
		return
	}

	_, accountID, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	var bal balance
	if err := call(http.MethodGet, fmt.Sprintf("/v1/balance/%s", accountID), nil, &bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", accountID)
	fmt.Println(bal.Balance)
}

func balancesRun() {
	var bals balances
	if err := call(http.MethodGet, "/v1/balances/list", nil, &bals); err != nil {
		log.Fatal(err)
	}

	data := pterm.TableData{{"Name", "Account", "Balance"}}
	for _, bal := range bals.Balances {
		data = append(data, []string{bal.Name, bal.Account, fmt.Sprintf("%g", bal.Balance)})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		log.Fatal(err)
	}

	pterm.Info.Printfln("rewards issued %g, open transactions %d", bals.Rewards, bals.Uncommitted)
}
