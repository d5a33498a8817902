package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveNodeID returns the account id of this node. It is empty when the
// node runs without an identity.
func (s *State) RetrieveNodeID() database.AccountID {
	return s.nodeID
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1]
}

// RetrieveMempool returns a copy of the open pool in submission order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrievePeerStatus returns the status of this node as reported to peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	latestBlock := s.RetrieveLatestBlock()

	return peer.PeerStatus{
		LatestBlockHash:  latestBlock.Hash(),
		LatestBlockIndex: latestBlock.Index,
		OpenTransactions: s.mempool.Count(),
		KnownPeers:       s.RetrieveKnownPeers(),
	}
}
