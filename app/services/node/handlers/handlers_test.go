package handlers_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	kennedyHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pavelHexKey   = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// node is a running ledger with its public and private servers.
type node struct {
	state   *state.State
	public  *httptest.Server
	private *httptest.Server
}

func Test_API(t *testing.T) {
	log := zap.NewNop().Sugar()

	folder := t.TempDir()
	kennedy := saveKey(t, folder, "kennedy", kennedyHexKey)
	pavel := saveKey(t, folder, "pavel", pavelHexKey)

	ns, err := nameservice.New(folder)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	peerNode := startNode(t, log, ns, "", nil)

	peers := peer.NewPeerSet()
	peers.Add(peer.New(strings.TrimPrefix(peerNode.private.URL, "http://")))
	n := startNode(t, log, ns, database.PublicKeyToAccountID(kennedy.PublicKey), peers)

	t.Log("Given the need to drive the ledger through the API.")
	{
		var blk struct {
			Index        uint64 `json:"index"`
			Transactions []struct {
				SenderName    string `json:"sender_name"`
				RecipientName string `json:"recipient_name"`
			} `json:"transactions"`
		}
		if status := call(t, http.MethodPost, n.public.URL+"/v1/mine", nil, &blk); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine a block: %d", failed, status)
		}
		if blk.Index != 1 || len(blk.Transactions) != 1 || blk.Transactions[0].RecipientName != "kennedy" {
			t.Fatalf("\t%s\tShould get back the reward block: %+v", failed, blk)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		var bal struct {
			Name    string  `json:"name"`
			Balance float64 `json:"balance"`
		}
		if status := call(t, http.MethodGet, n.public.URL+"/v1/balance/kennedy", nil, &bal); status != http.StatusOK || bal.Balance != 10 {
			t.Fatalf("\t%s\tShould get the balance by name: %d %+v", failed, status, bal)
		}
		t.Logf("\t%s\tShould get the balance by name.", success)

		var er errs.Response
		bad := map[string]any{"sender": "kennedy", "recipient": "", "amount": 1, "signature": "0x00"}
		if status := call(t, http.MethodPost, n.public.URL+"/v1/tx/submit", bad, &er); status != http.StatusBadRequest || len(er.Fields) != 2 {
			t.Fatalf("\t%s\tShould reject a bad payload by field: %d %+v", failed, status, er)
		}
		t.Logf("\t%s\tShould reject a bad payload by field.", success)

		tx := signedTx(t, kennedy, database.PublicKeyToAccountID(pavel.PublicKey), 4)

		// The peer has no funds on record for the sender so it refuses the
		// transaction while this node keeps it.
		if status := call(t, http.MethodPost, n.public.URL+"/v1/tx/submit", tx, &er); status != http.StatusBadRequest || !strings.Contains(er.Error, "rejected by peer") {
			t.Fatalf("\t%s\tShould report the peer rejection: %d %+v", failed, status, er)
		}
		t.Logf("\t%s\tShould report the peer rejection.", success)

		var pool []json.RawMessage
		if call(t, http.MethodGet, n.public.URL+"/v1/tx/uncommitted/list", nil, &pool); len(pool) != 1 {
			t.Fatalf("\t%s\tShould keep the transaction locally.", failed)
		}
		if peerNode.state.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould not add the transaction to the peer.", failed)
		}
		t.Logf("\t%s\tShould keep the transaction locally.", success)

		var v struct {
			Valid bool `json:"valid"`
		}
		if call(t, http.MethodGet, n.public.URL+"/v1/tx/verify", nil, &v); !v.Valid {
			t.Fatalf("\t%s\tShould have a valid open pool.", failed)
		}
		t.Logf("\t%s\tShould have a valid open pool.", success)

		if status := call(t, http.MethodPost, n.public.URL+"/v1/mine", nil, &blk); status != http.StatusOK || len(blk.Transactions) != 2 {
			t.Fatalf("\t%s\tShould mine the open transaction: %d", failed, status)
		}
		if blk.Transactions[0].SenderName != "kennedy" || blk.Transactions[0].RecipientName != "pavel" {
			t.Fatalf("\t%s\tShould name the parties: %+v", failed, blk.Transactions[0])
		}
		t.Logf("\t%s\tShould mine the open transaction.", success)

		var sheet struct {
			Rewards  float64 `json:"rewards"`
			Balances []struct {
				Name    string  `json:"name"`
				Balance float64 `json:"balance"`
			} `json:"balances"`
		}
		call(t, http.MethodGet, n.public.URL+"/v1/balances/list", nil, &sheet)
		var total float64
		for _, b := range sheet.Balances {
			total += b.Balance
		}
		if sheet.Rewards != 20 || total != 20 {
			t.Fatalf("\t%s\tShould conserve the rewards: %+v", failed, sheet)
		}
		t.Logf("\t%s\tShould conserve the rewards.", success)

		if call(t, http.MethodGet, n.public.URL+"/v1/chain/verify", nil, &v); !v.Valid {
			t.Fatalf("\t%s\tShould have a valid chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		var hosts []string
		if status := call(t, http.MethodPost, n.public.URL+"/v1/peers/add", map[string]string{"host": "localhost:9280"}, &hosts); status != http.StatusOK || len(hosts) != 2 {
			t.Fatalf("\t%s\tShould be able to add a peer: %d %v", failed, status, hosts)
		}
		if status := call(t, http.MethodDelete, n.public.URL+"/v1/peers/remove/localhost:9280", nil, &hosts); status != http.StatusOK || len(hosts) != 1 {
			t.Fatalf("\t%s\tShould be able to remove a peer: %d %v", failed, status, hosts)
		}
		if status := call(t, http.MethodDelete, n.public.URL+"/v1/peers/remove/localhost:9280", nil, &er); status != http.StatusNotFound {
			t.Fatalf("\t%s\tShould not find a removed peer: %d", failed, status)
		}
		t.Logf("\t%s\tShould be able to manage peers.", success)
	}
}

func Test_Broadcast(t *testing.T) {
	log := zap.NewNop().Sugar()

	folder := t.TempDir()
	kennedy := saveKey(t, folder, "kennedy", kennedyHexKey)
	pavel := saveKey(t, folder, "pavel", pavelHexKey)

	ns, err := nameservice.New(folder)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	n := startNode(t, log, ns, database.PublicKeyToAccountID(kennedy.PublicKey), nil)
	if _, err := n.state.MineNewBlock(context.Background()); err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	url := n.private.URL + "/broadcast-transaction"

	t.Log("Given the need to accept transactions from peers.")
	{
		var er errs.Response

		if status := call(t, http.MethodPost, url, nil, &er); status != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an empty body: %d", failed, status)
		}
		t.Logf("\t%s\tShould reject an empty body.", success)

		missing := map[string]any{"sender": "a", "recipient": "b"}
		if status := call(t, http.MethodPost, url, missing, &er); status != http.StatusInternalServerError {
			t.Fatalf("\t%s\tShould fail on missing fields: %d", failed, status)
		}
		t.Logf("\t%s\tShould fail on missing fields.", success)

		tx := signedTx(t, kennedy, database.PublicKeyToAccountID(pavel.PublicKey), 50)
		if status := call(t, http.MethodPost, url, tx, &er); status != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a transaction without funds: %d", failed, status)
		}
		t.Logf("\t%s\tShould reject a transaction without funds.", success)

		tx = signedTx(t, kennedy, database.PublicKeyToAccountID(pavel.PublicKey), 5)
		if status := call(t, http.MethodPost, url, tx, nil); status != http.StatusOK {
			t.Fatalf("\t%s\tShould accept a funded transaction: %d", failed, status)
		}
		if n.state.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould add the transaction to the pool.", failed)
		}
		t.Logf("\t%s\tShould accept a funded transaction.", success)

		var status peer.PeerStatus
		call(t, http.MethodGet, n.private.URL+"/v1/node/status", nil, &status)
		if status.LatestBlockIndex != 1 || status.OpenTransactions != 1 {
			t.Fatalf("\t%s\tShould report the node status: %+v", failed, status)
		}
		t.Logf("\t%s\tShould report the node status.", success)
	}
}

func Test_Readiness(t *testing.T) {
	log := zap.NewNop().Sugar()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct storage: %s", err)
	}

	st, err := state.New(state.Config{Storage: strg})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}
	defer st.Shutdown()

	t.Log("Given the need to report the health of the node.")
	{
		mux := handlers.DebugMux("test", log, st)

		for _, path := range []string{"/debug/readiness", "/debug/liveness"} {
			r := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tShould get a 200 from %s: %d", failed, path, w.Code)
			}
			t.Logf("\t%s\tShould get a 200 from %s.", success, path)
		}
	}
}

// =============================================================================

func startNode(t *testing.T, log *zap.SugaredLogger, ns *nameservice.NameService, nodeID database.AccountID, peers *peer.PeerSet) node {
	t.Helper()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct storage: %s", err)
	}

	st, err := state.New(state.Config{
		NodeID:     nodeID,
		Storage:    strg,
		KnownPeers: peers,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	n := node{
		state:   st,
		public:  httptest.NewServer(handlers.PublicMux(cfg)),
		private: httptest.NewServer(handlers.PrivateMux(cfg)),
	}

	t.Cleanup(func() {
		n.public.Close()
		n.private.Close()
		st.Shutdown()
	})

	return n
}

func call(t *testing.T, method string, url string, dataSend any, dataRecv any) int {
	t.Helper()

	var body bytes.Buffer
	if dataSend != nil {
		if err := json.NewEncoder(&body).Encode(dataSend); err != nil {
			t.Fatalf("Should be able to encode the request: %s", err)
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("Should be able to construct the request: %s", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Should be able to call %s: %s", url, err)
	}
	defer resp.Body.Close()

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			t.Fatalf("Should be able to decode the response from %s: %s", url, err)
		}
	}

	return resp.StatusCode
}

func saveKey(t *testing.T, folder string, name string, hexKey string) *ecdsa.PrivateKey {
	t.Helper()

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	if err := crypto.SaveECDSA(nameservice.KeyFile(folder, name), key); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	return key
}

func signedTx(t *testing.T, key *ecdsa.PrivateKey, to database.AccountID, amount float64) database.Tx {
	t.Helper()

	tx, err := database.NewTx(database.PublicKeyToAccountID(key.PublicKey), to, amount)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	tx, err = tx.Sign(key)
	if err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return tx
}
