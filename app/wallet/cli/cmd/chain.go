package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type tx struct {
	SenderName    string  `json:"sender_name"`
	RecipientName string  `json:"recipient_name"`
	Amount        float64 `json:"amount"`
}

type block struct {
	Index        uint64  `json:"index"`
	Hash         string  `json:"hash"`
	PreviousHash string  `json:"previous_hash"`
	TimeStamp    float64 `json:"timestamp"`
	Proof        uint64  `json:"proof"`
	Transactions []tx    `json:"transactions"`
}

var (
	pending bool
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks of the chain",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().BoolVar(&pending, "pending", false, "Print the open transactions instead.")
}

func chainRun(cmd *cobra.Command, args []string) {
	if pending {
		var trans []tx
		if err := call(http.MethodGet, "/v1/tx/uncommitted/list", nil, &trans); err != nil {
			log.Fatal(err)
		}

		if err := renderTxs(trans); err != nil {
			log.Fatal(err)
		}
		return
	}

	var blocks []block
	if err := call(http.MethodGet, "/v1/blocks/list", nil, &blocks); err != nil {
		log.Fatal(err)
	}

	if err := renderBlocks(blocks); err != nil {
		log.Fatal(err)
	}
}

func renderBlocks(blocks []block) error {
	data := pterm.TableData{{"Index", "Hash", "Previous", "Proof", "Trans"}}
	for _, blk := range blocks {
		data = append(data, []string{
			fmt.Sprint(blk.Index),
			short(blk.Hash),
			short(blk.PreviousHash),
			fmt.Sprint(blk.Proof),
			fmt.Sprint(len(blk.Transactions)),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderTxs(trans []tx) error {
	data := pterm.TableData{{"Sender", "Recipient", "Amount"}}
	for _, tran := range trans {
		data = append(data, []string{short(tran.SenderName), short(tran.RecipientName), fmt.Sprintf("%g", tran.Amount)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func short(s string) string {
	if len(s) > 16 {
		return s[:16]
	}
	return s
}
