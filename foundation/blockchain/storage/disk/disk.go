// Package disk implements the ability to save and load a ledger snapshot as
// a three line text file on disk.
package disk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and writing the
// snapshot file. The file holds three lines of JSON: the blocks, the open
// transactions and the peer hosts. This implements the database.Storage
// interface.
type Disk struct {
	mu   sync.Mutex
	path string
}

// New constructs a Disk value for use. Each node identity gets its own file
// inside the specified folder.
func New(dbPath string, nodeID database.AccountID) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{path: filepath.Join(dbPath, FileName(nodeID))}, nil
}

// FileName returns the name of the snapshot file for the node identity.
func FileName(nodeID database.AccountID) string {
	if nodeID == "" {
		return "ledger.txt"
	}

	return fmt.Sprintf("ledger-%s.txt", nodeID)
}

// Path returns the full path of the snapshot file.
func (d *Disk) Path() string {
	return d.path
}

// Close in this implementation has nothing to do since the file is
// opened and closed on every call.
func (d *Disk) Close() error {
	return nil
}

// Load reads the snapshot file. A missing file returns database.ErrNoSnapshot.
func (d *Disk) Load() (database.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.Snapshot{}, database.ErrNoSnapshot
		}
		return database.Snapshot{}, err
	}

	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	if len(lines) != 3 {
		return database.Snapshot{}, fmt.Errorf("malformed snapshot, got %d lines, exp 3", len(lines))
	}

	var snapshot database.Snapshot
	if err := json.Unmarshal(lines[0], &snapshot.Blocks); err != nil {
		return database.Snapshot{}, fmt.Errorf("decoding blocks: %w", err)
	}
	if err := json.Unmarshal(lines[1], &snapshot.Trans); err != nil {
		return database.Snapshot{}, fmt.Errorf("decoding open transactions: %w", err)
	}
	if err := json.Unmarshal(lines[2], &snapshot.Peers); err != nil {
		return database.Snapshot{}, fmt.Errorf("decoding peers: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return database.Snapshot{}, err
	}

	return snapshot, nil
}

// Save writes the snapshot to a temporary file and moves it over the
// snapshot file so a failed write never leaves half a snapshot behind.
func (d *Disk) Save(snapshot database.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	for _, v := range []any{nonNil(snapshot.Blocks), nonNil(snapshot.Trans), nonNil(snapshot.Peers)} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return err
	}

	return os.Rename(tmp, d.path)
}

// =============================================================================

// nonNil makes sure an empty list is written as [] and not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
