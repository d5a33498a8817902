// This program performs administrative tasks against the snapshot a node
// keeps on disk. The node should not be running while it is used.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, conf.ErrHelpWanted) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		Node struct {
			ID      string `conf:"default:"`
			Name    string `conf:"default:"`
			DBPath  string `conf:"default:zblock/"`
			Storage string `conf:"default:disk"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger admin",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return err
	}

	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	nodeID, err := commands.NodeID(cfg.Node.ID, cfg.Node.Name, ns)
	if err != nil {
		return err
	}

	var strg database.Storage
	switch cfg.Node.Storage {
	case "bolt":
		strg, err = bolt.New(cfg.Node.DBPath, nodeID)
	default:
		strg, err = disk.New(cfg.Node.DBPath, nodeID)
	}
	if err != nil {
		return err
	}
	defer strg.Close()

	snapshot, err := strg.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot for node[%s]: %w", nodeID, err)
	}

	return processCommands(cfg.Args, snapshot, ns)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, snapshot database.Snapshot, ns *nameservice.NameService) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(snapshot, ns); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args, snapshot, ns); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "verify":
		if err := commands.Verify(snapshot); err != nil {
			return fmt.Errorf("verifying snapshot: %w", err)
		}
	default:
		fmt.Println("bals:          print the balance of every account")
		fmt.Println("trans <index>: print the transactions of a block, or the open pool when no index is given")
		fmt.Println("verify:        verify the chain and the open pool")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
