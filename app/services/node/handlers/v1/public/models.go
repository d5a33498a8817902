package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

type balance struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance float64            `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Rewards     float64   `json:"rewards"`
	Balances    []balance `json:"balances"`
}

type tx struct {
	Sender        database.AccountID `json:"sender"`
	SenderName    string             `json:"sender_name"`
	Recipient     database.AccountID `json:"recipient"`
	RecipientName string             `json:"recipient_name"`
	Amount        float64            `json:"amount"`
	Signature     string             `json:"signature,omitempty"`
}

func toTx(tran database.Tx, ns *nameservice.NameService) tx {
	return tx{
		Sender:        tran.Sender,
		SenderName:    ns.Lookup(tran.Sender),
		Recipient:     tran.Recipient,
		RecipientName: ns.Lookup(tran.Recipient),
		Amount:        tran.Amount,
		Signature:     tran.Signature,
	}
}

func toTxs(trans []database.Tx, ns *nameservice.NameService) []tx {
	out := make([]tx, len(trans))
	for i, tran := range trans {
		out[i] = toTx(tran, ns)
	}
	return out
}

type block struct {
	Index        uint64  `json:"index"`
	Hash         string  `json:"hash"`
	PreviousHash string  `json:"previous_hash"`
	TimeStamp    float64 `json:"timestamp"`
	Proof        uint64  `json:"proof"`
	Transactions []tx    `json:"transactions"`
}

func toBlock(blk database.Block, ns *nameservice.NameService) block {
	return block{
		Index:        blk.Index,
		Hash:         blk.Hash(),
		PreviousHash: blk.PreviousHash,
		TimeStamp:    blk.TimeStamp,
		Proof:        blk.Proof,
		Transactions: toTxs(blk.Transactions, ns),
	}
}

// newTx is the payload a wallet submits. The sender is the hex encoded
// compressed public key that produced the signature.
type newTx struct {
	Sender    database.AccountID `json:"sender" validate:"required,account"`
	Recipient database.AccountID `json:"recipient" validate:"required,account"`
	Amount    float64            `json:"amount" validate:"gte=0"`
	Signature string             `json:"signature" validate:"required"`
}

func (ntx newTx) toTx() database.Tx {
	return database.Tx{
		Sender:    ntx.Sender,
		Recipient: ntx.Recipient,
		Amount:    ntx.Amount,
		Signature: ntx.Signature,
	}
}

type newPeer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

type verify struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
