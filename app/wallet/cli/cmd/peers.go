package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List the known peers of the node",
	Run:   peersRun,
}

var peersAddCmd = &cobra.Command{
	Use:   "add [host]",
	Short: "Add a peer host to the node",
	Args:  cobra.ExactArgs(1),
	Run:   peersAddRun,
}

var peersRemoveCmd = &cobra.Command{
	Use:   "remove [host]",
	Short: "Remove a peer host from the node",
	Args:  cobra.ExactArgs(1),
	Run:   peersRemoveRun,
}

func init() {
	rootCmd.AddCommand(peersCmd)
	peersCmd.AddCommand(peersAddCmd)
	peersCmd.AddCommand(peersRemoveCmd)
}

func peersRun(cmd *cobra.Command, args []string) {
	var hosts []string
	if err := call(http.MethodGet, "/v1/peers/list", nil, &hosts); err != nil {
		log.Fatal(err)
	}

	printHosts(hosts)
}

func peersAddRun(cmd *cobra.Command, args []string) {
	req := struct {
		Host string `json:"host"`
	}{
		Host: args[0],
	}

	var hosts []string
	if err := call(http.MethodPost, "/v1/peers/add", req, &hosts); err != nil {
		log.Fatal(err)
	}

	printHosts(hosts)
}

func peersRemoveRun(cmd *cobra.Command, args []string) {
	var hosts []string
	if err := call(http.MethodDelete, "/v1/peers/remove/"+args[0], nil, &hosts); err != nil {
		log.Fatal(err)
	}

	printHosts(hosts)
}

func printHosts(hosts []string) {
	for _, host := range hosts {
		fmt.Println(host)
	}
}
