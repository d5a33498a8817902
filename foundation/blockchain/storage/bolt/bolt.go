// Package bolt implements the ability to save and load a ledger snapshot
// using a bbolt database file.
package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketName = []byte("ledger")
	keyBlocks  = []byte("blocks")
	keyTrans   = []byte("trans")
	keyPeers   = []byte("peers")
)

// Bolt represents the storage implementation for keeping the snapshot in a
// bbolt database. The three parts of the snapshot are stored as JSON values
// under their own key. This implements the database.Storage interface.
type Bolt struct {
	db *bolt.DB
}

// New opens or creates the database file for the node identity inside the
// specified folder.
func New(dbPath string, nodeID database.AccountID) (*Bolt, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	name := "ledger.db"
	if nodeID != "" {
		name = fmt.Sprintf("ledger-%s.db", nodeID)
	}

	db, err := bolt.Open(filepath.Join(dbPath, name), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Load reads the snapshot. An empty database returns database.ErrNoSnapshot.
func (b *Bolt) Load() (database.Snapshot, error) {
	var snapshot database.Snapshot

	f := func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt == nil {
			return database.ErrNoSnapshot
		}

		parts := []struct {
			key []byte
			dst any
		}{
			{keyBlocks, &snapshot.Blocks},
			{keyTrans, &snapshot.Trans},
			{keyPeers, &snapshot.Peers},
		}

		for _, p := range parts {
			data := bkt.Get(p.key)
			if data == nil {
				return fmt.Errorf("malformed snapshot, missing %s", p.key)
			}

			if err := json.Unmarshal(data, p.dst); err != nil {
				return fmt.Errorf("decoding %s: %w", p.key, err)
			}
		}

		return nil
	}

	if err := b.db.View(f); err != nil {
		return database.Snapshot{}, err
	}

	if err := snapshot.Validate(); err != nil {
		return database.Snapshot{}, err
	}

	return snapshot, nil
}

// Save writes all three parts of the snapshot in a single transaction.
func (b *Bolt) Save(snapshot database.Snapshot) error {
	blocks, err := json.Marshal(snapshot.Blocks)
	if err != nil {
		return err
	}

	trans, err := json.Marshal(snapshot.Trans)
	if err != nil {
		return err
	}

	peers, err := json.Marshal(snapshot.Peers)
	if err != nil {
		return err
	}

	f := func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		if err := bkt.Put(keyBlocks, blocks); err != nil {
			return err
		}
		if err := bkt.Put(keyTrans, trans); err != nil {
			return err
		}
		return bkt.Put(keyPeers, peers)
	}

	return b.db.Update(f)
}
