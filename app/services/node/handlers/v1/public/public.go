// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch, err := h.Evts.Acquire(v.TraceID)
	if err != nil {
		return nil
	}
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Balance returns the spendable balance of an account. Without an account
// the balance of this node is returned.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := h.State.RetrieveNodeID()

	if acct := web.Param(r, "account"); acct != "" {
		var err error
		if accountID, err = h.toAccountID(acct); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	if accountID == "" {
		return errs.NewTrusted(state.ErrNoNodeID, http.StatusConflict)
	}

	resp := balance{
		Account: accountID,
		Name:    h.NS.Lookup(accountID),
		Balance: h.State.QueryBalance(accountID),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balances returns the balance of every account seen on the chain or in
// the open pool.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sheet := h.State.QueryBalances()

	bals := make([]balance, 0)
	for _, accountID := range sheet.Accounts() {
		bals = append(bals, balance{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: sheet.Balance(accountID),
		})
	}

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Rewards:     sheet.Rewards(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the chain starting with the genesis block.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveBlocks()

	out := make([]block, len(blocks))
	for i, blk := range blocks {
		out[i] = toBlock(blk, h.NS)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.RetrieveMempool(), h.NS), http.StatusOK)
}

// SubmitTransaction adds a signed wallet transaction to the open pool and
// shares it with the known peers.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	tran := ntx.toTx()

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", tran)

	if err := h.State.SubmitTransaction(ctx, tran); err != nil {
		return toTrusted(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to the open pool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine creates a new block from the open pool.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.State.MineNewBlock(ctx)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toBlock(blk, h.NS), http.StatusOK)
}

// VerifyChain re-validates the chain. A failure halts the ledger.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var resp verify

	switch err := h.State.VerifyChain(); err {
	case nil:
		resp.Valid = true
	default:
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// VerifyTransactions checks the open pool can still be covered by the
// senders.
func (h Handlers) VerifyTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var resp verify

	switch err := h.State.VerifyOpenTransactions(); err {
	case nil:
		resp.Valid = true
	default:
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hosts := make([]string, 0)
	for _, pr := range h.State.RetrieveKnownPeers() {
		hosts = append(hosts, pr.Host)
	}

	return web.Respond(ctx, w, hosts, http.StatusOK)
}

// AddPeer adds a host to the known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np newPeer
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return err
	}

	if err := h.State.AddKnownPeer(np.Host); err != nil {
		return toTrusted(err)
	}

	return h.Peers(ctx, w, r)
}

// RemovePeer removes a host from the known peers.
func (h Handlers) RemovePeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.RemoveKnownPeer(web.Param(r, "host")); err != nil {
		return toTrusted(err)
	}

	return h.Peers(ctx, w, r)
}

// =============================================================================

// toAccountID accepts an account id or a name known to the name service.
func (h Handlers) toAccountID(acct string) (database.AccountID, error) {
	if accountID, exists := h.NS.AccountID(acct); exists {
		return accountID, nil
	}

	return database.ToAccountID(acct)
}

// toTrusted maps the ledger errors to the status code sent to the client.
// Anything not listed is reported as an internal error.
func toTrusted(err error) error {
	switch {
	case errors.Is(err, database.ErrInsufficientFunds),
		errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrInvalidSignature),
		errors.Is(err, state.ErrPeerRejected),
		errors.Is(err, state.ErrInvalidHost):
		return errs.NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, state.ErrUnknownPeer):
		return errs.NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, state.ErrNoNodeID),
		errors.Is(err, state.ErrChainHalted),
		errors.Is(err, state.ErrCorruptPool):
		return errs.NewTrusted(err, http.StatusConflict)

	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}
