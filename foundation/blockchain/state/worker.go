package state

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// statusURL is the endpoint peers report their status on.
const statusURL = "http://%s/v1/node/status"

// worker runs the background operations of the ledger: periodic chain
// verification and checking on the status of known peers.
type worker struct {
	state     *State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	evHandler EventHandler
}

// runWorker starts the background operations and registers the worker with
// the state.
func runWorker(state *State, interval time.Duration) {
	state.worker = &worker{
		state:     state,
		ticker:    time.NewTicker(interval),
		shut:      make(chan struct{}),
		evHandler: state.evHandler,
	}

	// Load the set of operations we need to run.
	operations := []func(){
		state.worker.verifyOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	state.worker.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer state.worker.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// shutdown terminates the goroutines performing work.
func (w *worker) shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// =============================================================================

// verifyOperations re-verifies the chain and checks on peers on every tick.
func (w *worker) verifyOperations() {
	w.evHandler("worker: verifyOperations: G started")
	defer w.evHandler("worker: verifyOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runVerifyOperation()
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: verifyOperations: received shut signal")
			return
		}
	}
}

// runVerifyOperation verifies the chain. A failure halts the ledger.
func (w *worker) runVerifyOperation() {
	w.evHandler("worker: runVerifyOperation: started")
	defer w.evHandler("worker: runVerifyOperation: completed")

	if err := w.state.IsHalted(); err != nil {
		w.evHandler("worker: runVerifyOperation: HALTED: %s", err)
		return
	}

	if err := w.state.VerifyChain(); err != nil {
		w.evHandler("worker: runVerifyOperation: ERROR: %s", err)
		return
	}

	if err := w.state.VerifyOpenTransactions(); err != nil {
		w.evHandler("worker: runVerifyOperation: WARNING: %s", err)
	}
}

// runPeersOperation asks every known peer for its status and reports the
// peers whose chain differs from ours. Chains are never reconciled.
func (w *worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	latestBlock := w.state.RetrieveLatestBlock()

	for _, pr := range w.state.RetrieveKnownPeers() {
		if w.isShutdown() {
			return
		}

		ps, err := w.queryPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: WARNING: %s", pr, err)
			continue
		}

		if ps.LatestBlockHash != latestBlock.Hash() {
			w.evHandler("worker: runPeersOperation: peer[%s]: chain differs: peer-blk[%d] our-blk[%d]", pr, ps.LatestBlockIndex, latestBlock.Index)
		}
	}
}

// queryPeerStatus asks the peer for its latest block and pool size.
func (w *worker) queryPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	url := fmt.Sprintf(statusURL, pr.Host)

	var ps peer.PeerStatus
	if err := w.state.send(context.Background(), http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	return ps, nil
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
