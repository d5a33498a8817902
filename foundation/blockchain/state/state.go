// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Set of errors reported by the ledger.
var (
	ErrNoNodeID     = errors.New("no node identity configured")
	ErrCorruptPool  = errors.New("open transaction pool is corrupt")
	ErrPeerRejected = errors.New("transaction rejected by peer")
	ErrChainHalted  = errors.New("ledger halted, chain is invalid")
	ErrUnknownPeer  = errors.New("unknown peer")
	ErrInvalidHost  = errors.New("invalid peer host")
)

// defaultPeerTimeout is used when no timeout is configured for calls
// made to peers.
const defaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	NodeID         database.AccountID
	Host           string
	Storage        database.Storage
	KnownPeers     *peer.PeerSet
	PeerTimeout    time.Duration
	VerifyInterval time.Duration
	EvHandler      EventHandler
}

// State manages the chain, the open transaction pool and the known peers.
type State struct {
	nodeID      database.AccountID
	host        string
	evHandler   EventHandler
	peerTimeout time.Duration

	mu     sync.RWMutex
	blocks []database.Block
	halted error

	miningMu sync.Mutex

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	storage    database.Storage

	worker *worker
}

// New constructs a ledger from the last saved snapshot. When no usable
// snapshot exists the ledger starts from the genesis block.
func New(cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	// A missing or broken snapshot is not fatal, the ledger starts over.
	snapshot, err := cfg.Storage.Load()
	if err != nil {
		ev("state: New: load snapshot: %s: starting from genesis", err)
		snapshot = database.Snapshot{
			Blocks: []database.Block{database.Genesis()},
		}
	}

	for _, host := range snapshot.Peers {
		knownPeers.Add(peer.New(host))
	}

	state := State{
		nodeID:      cfg.NodeID,
		host:        cfg.Host,
		evHandler:   ev,
		peerTimeout: peerTimeout,
		blocks:      snapshot.Blocks,
		knownPeers:  knownPeers,
		mempool:     mempool.New(snapshot.Trans),
		storage:     cfg.Storage,
	}

	ev("state: New: loaded: blocks[%d] open-trans[%d] peers[%d]", len(snapshot.Blocks), len(snapshot.Trans), len(snapshot.Peers))

	// A chain that fails verification at load halts the ledger right away.
	if err := state.VerifyChain(); err != nil {
		ev("state: New: ERROR: %s", err)
	}

	if cfg.VerifyInterval > 0 {
		runWorker(&state, cfg.VerifyInterval)
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop the verification worker before releasing the storage.
	if s.worker != nil {
		s.worker.shutdown()
	}

	// Wait for any mining operation to finish its commit.
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	return s.storage.Close()
}

// =============================================================================

// persist saves the current snapshot. A failed save is logged and the in
// memory state stays the source of truth. The caller must hold the write lock.
func (s *State) persist() {
	snapshot := database.Snapshot{
		Blocks: s.blocks,
		Trans:  s.mempool.Copy(),
		Peers:  s.knownPeers.Hosts(),
	}

	if err := s.storage.Save(snapshot); err != nil {
		s.evHandler("state: persist: ERROR: %s", err)
		return
	}

	s.evHandler("state: persist: saved: blocks[%d] open-trans[%d] peers[%d]", len(snapshot.Blocks), len(snapshot.Trans), len(snapshot.Peers))
}

// checkHalted returns ErrChainHalted when the ledger has been halted. The
// caller must hold a lock.
func (s *State) checkHalted() error {
	if s.halted != nil {
		return fmt.Errorf("%w: %s", ErrChainHalted, s.halted)
	}

	return nil
}

// halt stops all further mutation of the ledger. The caller must hold the
// write lock.
func (s *State) halt(err error) {
	if s.halted != nil {
		return
	}

	s.halted = err
	s.evHandler("state: halt: HALTED: %s", err)
}
