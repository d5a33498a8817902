package commands_test

import (
	"testing"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Verify(t *testing.T) {
	t.Log("Given the need to verify a stored snapshot.")
	{
		snapshot := database.Snapshot{Blocks: []database.Block{database.Genesis()}}

		if err := commands.Verify(snapshot); err != nil {
			t.Fatalf("\t%s\tShould be able to verify a genesis only snapshot: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to verify a genesis only snapshot.", success)

		bad := database.Genesis()
		bad.PreviousHash = "tampered"
		snapshot.Blocks = append(snapshot.Blocks, bad)

		if err := commands.Verify(snapshot); err == nil {
			t.Fatalf("\t%s\tShould fail to verify a tampered chain.", failed)
		}
		t.Logf("\t%s\tShould fail to verify a tampered chain.", success)
	}
}

func Test_TransactionsIndex(t *testing.T) {
	t.Log("Given the need to print the transactions of a block.")
	{
		ns, err := nameservice.New(t.TempDir())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
		}

		snapshot := database.Snapshot{Blocks: []database.Block{database.Genesis()}}

		if err := commands.Transactions(conf.Args{"trans", "0"}, snapshot, ns); err != nil {
			t.Fatalf("\t%s\tShould be able to print the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to print the genesis block.", success)

		if err := commands.Transactions(conf.Args{"trans", "5"}, snapshot, ns); err == nil {
			t.Fatalf("\t%s\tShould fail for a block that does not exist.", failed)
		}
		t.Logf("\t%s\tShould fail for a block that does not exist.", success)

		if err := commands.Transactions(conf.Args{"trans", "abc"}, snapshot, ns); err == nil {
			t.Fatalf("\t%s\tShould fail for an index that is not a number.", failed)
		}
		t.Logf("\t%s\tShould fail for an index that is not a number.", success)
	}
}

func Test_NodeID(t *testing.T) {
	root := t.TempDir()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	if err := crypto.SaveECDSA(nameservice.KeyFile(root, "kennedy"), privateKey); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}
	kennedy := database.PublicKeyToAccountID(privateKey.PublicKey)

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	t.Log("Given the need to pick the snapshot of a node.")
	{
		id, err := commands.NodeID("", "kennedy", ns)
		if err != nil || id != kennedy {
			t.Fatalf("\t%s\tShould resolve a node by its key file name: %s %v", failed, id, err)
		}
		t.Logf("\t%s\tShould resolve a node by its key file name.", success)

		id, err = commands.NodeID(string(kennedy), "", ns)
		if err != nil || id != kennedy {
			t.Fatalf("\t%s\tShould resolve a node by its account id: %s %v", failed, id, err)
		}
		t.Logf("\t%s\tShould resolve a node by its account id.", success)

		if _, err := commands.NodeID("", "nobody", ns); err == nil {
			t.Fatalf("\t%s\tShould fail for an unknown key file name.", failed)
		}
		t.Logf("\t%s\tShould fail for an unknown key file name.", success)

		id, err = commands.NodeID("", "", ns)
		if err != nil || id != "" {
			t.Fatalf("\t%s\tShould resolve a node without identity: %s %v", failed, id, err)
		}
		t.Logf("\t%s\tShould resolve a node without identity.", success)

		dbPath := t.TempDir()
		saved, err := disk.New(dbPath, "")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the storage: %s", failed, err)
		}
		snapshot := database.Snapshot{Blocks: []database.Block{database.Genesis()}}
		if err := saved.Save(snapshot); err != nil {
			t.Fatalf("\t%s\tShould be able to save a snapshot: %s", failed, err)
		}

		strg, err := disk.New(dbPath, id)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the storage: %s", failed, err)
		}
		if _, err := strg.Load(); err != nil {
			t.Fatalf("\t%s\tShould load the snapshot written by a node without identity: %s", failed, err)
		}
		t.Logf("\t%s\tShould load the snapshot written by a node without identity.", success)
	}
}
