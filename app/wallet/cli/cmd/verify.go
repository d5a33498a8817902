package cmd

import (
	"log"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the chain and the open transactions",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) {
	checks := []struct {
		name string
		path string
	}{
		{"chain", "/v1/chain/verify"},
		{"open transactions", "/v1/tx/verify"},
	}

	for _, check := range checks {
		var resp struct {
			Valid bool   `json:"valid"`
			Error string `json:"error"`
		}
		if err := call(http.MethodGet, check.path, nil, &resp); err != nil {
			log.Fatal(err)
		}

		switch resp.Valid {
		case true:
			pterm.Success.Printfln("%s is valid", check.name)
		default:
			pterm.Error.Printfln("%s is invalid: %s", check.name, resp.Error)
		}
	}
}
