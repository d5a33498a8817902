package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// broadcastURL is the endpoint peers accept shared transactions on.
const broadcastURL = "http://%s/broadcast-transaction"

// NetSendTxToPeers shares the transaction with every known peer. A peer that
// can't be reached is skipped. A peer that answers 400 or 500 has rejected
// the transaction and ErrPeerRejected is returned once every peer has been
// tried.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Tx) error {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	var rejected []string

	for _, peer := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf(broadcastURL, peer.Host)

		err := s.send(ctx, http.MethodPost, url, tx, nil)
		switch {
		case err == nil:
			s.evHandler("state: NetSendTxToPeers: sent to peer[%s]", peer)

		case isRejection(err):
			s.evHandler("state: NetSendTxToPeers: peer[%s]: REJECTED: %s", peer, err)
			rejected = append(rejected, peer.Host)

		default:
			s.evHandler("state: NetSendTxToPeers: peer[%s]: WARNING: %s", peer, err)
		}
	}

	if len(rejected) > 0 {
		return fmt.Errorf("%w: %s", ErrPeerRejected, strings.Join(rejected, ", "))
	}

	return nil
}

// =============================================================================

// rejectionError is returned by send when the peer answered with a status
// that means it refused the request.
type rejectionError struct {
	status int
	msg    string
}

func (re *rejectionError) Error() string {
	return fmt.Sprintf("status %d: %s", re.status, re.msg)
}

// isRejection reports if the error came from a peer refusing the request.
func isRejection(err error) bool {
	_, ok := err.(*rejectionError)
	return ok
}

// send is a helper function to send an HTTP request to a node.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil

	case http.StatusBadRequest, http.StatusInternalServerError:
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil {
			return err
		}
		return &rejectionError{status: resp.StatusCode, msg: strings.TrimSpace(string(msg))}

	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
