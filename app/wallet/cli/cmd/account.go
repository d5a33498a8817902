package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print account for the specific wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	_, accountID, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(accountID)
}
