package bolt_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Snapshot(t *testing.T) {
	snapshot := database.Snapshot{
		Blocks: []database.Block{database.Genesis()},
		Trans:  []database.Tx{{Sender: "node1", Recipient: "node2", Amount: 1}},
		Peers:  []string{"localhost:9081", "localhost:9082"},
	}

	t.Log("Given the need to save and load a snapshot with bolt.")
	{
		dir := t.TempDir()

		b, err := bolt.New(dir, "node1")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the database: %s", failed, err)
		}

		if _, err := b.Load(); !errors.Is(err, database.ErrNoSnapshot) {
			t.Fatalf("\t%s\tShould report a missing snapshot: %v", failed, err)
		}
		t.Logf("\t%s\tShould report a missing snapshot.", success)

		if err := b.Save(snapshot); err != nil {
			t.Fatalf("\t%s\tShould be able to save the snapshot: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to save the snapshot.", success)

		if err := b.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the database: %s", failed, err)
		}

		b, err = bolt.New(dir, "node1")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reopen the database: %s", failed, err)
		}
		defer b.Close()

		got, err := b.Load()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the snapshot: %s", failed, err)
		}

		if got.Blocks[0].Hash() != database.Genesis().Hash() || len(got.Trans) != 1 || len(got.Peers) != 2 {
			t.Fatalf("\t%s\tShould load the same snapshot: %+v", failed, got)
		}
		t.Logf("\t%s\tShould load the same snapshot after reopening.", success)
	}
}
