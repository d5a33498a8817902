package cmd

import (
	"log"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a new block",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	var blk block
	if err := call(http.MethodPost, "/v1/mine", nil, &blk); err != nil {
		pterm.Error.Println(err)
		return
	}

	if err := renderBlocks([]block{blk}); err != nil {
		log.Fatal(err)
	}
}
