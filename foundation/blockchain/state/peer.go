package state

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// AddKnownPeer adds the host to the set of known peers and saves the
// snapshot. Adding a host that is already known does nothing.
func (s *State) AddKnownPeer(host string) error {
	host = strings.TrimSpace(host)
	if host == "" || strings.ContainsAny(host, " /") {
		return fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	if !s.knownPeers.Add(peer.New(host)) {
		return nil
	}

	s.evHandler("state: AddKnownPeer: added peer[%s]", host)
	s.persist()

	return nil
}

// RemoveKnownPeer removes the host from the set of known peers and saves
// the snapshot.
func (s *State) RemoveKnownPeer(host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	if !s.knownPeers.Remove(peer.New(host)) {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, host)
	}

	s.evHandler("state: RemoveKnownPeer: removed peer[%s]", host)
	s.persist()

	return nil
}
