// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// BroadcastTransaction accepts a transaction shared by a peer. A missing or
// empty body is a bad request, a body missing any transaction field is an
// internal error and a transaction the sender can't cover is rejected with a
// bad request. The transaction is not shared again.
func (h Handlers) BroadcastTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var values map[string]json.RawMessage
	if err := web.Decode(r, &values); err != nil {
		return errs.NewTrusted(fmt.Errorf("no data found: %w", err), http.StatusBadRequest)
	}
	if len(values) == 0 {
		return errs.NewTrusted(errors.New("no data found"), http.StatusBadRequest)
	}

	for _, field := range []string{"sender", "recipient", "amount", "signature"} {
		if _, exists := values[field]; !exists {
			return errs.NewTrusted(fmt.Errorf("required data is missing: %s", field), http.StatusInternalServerError)
		}
	}

	var tx database.Tx
	if err := decodeTx(values, &tx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode transaction: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("peer tran", "traceid", v.TraceID, "tx", tx)

	if err := h.State.SubmitPeerTransaction(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to the open pool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePeerStatus(), http.StatusOK)
}

// =============================================================================

// decodeTx builds the transaction from the raw request fields.
func decodeTx(values map[string]json.RawMessage, tx *database.Tx) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, tx)
}
