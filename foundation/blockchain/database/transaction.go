package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Set of errors returned when validating transactions.
var (
	ErrInvalidAmount     = errors.New("invalid transaction amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidSignature  = errors.New("invalid transaction signature")
)

// MiningReward is the amount credited to the node that mines a block.
const MiningReward float64 = 10

// =============================================================================

// Tx is the transfer of an amount between two parties. The signature is only
// empty on the reward transaction created during mining.
type Tx struct {
	Sender    AccountID `json:"sender"`
	Recipient AccountID `json:"recipient"`
	Amount    float64   `json:"amount"`
	Signature string    `json:"signature,omitempty"`
}

// NewTx constructs a new unsigned transaction.
func NewTx(sender AccountID, recipient AccountID, amount float64) (Tx, error) {
	if err := validateAmount(amount); err != nil {
		return Tx{}, err
	}

	tx := Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}

	return tx, nil
}

// NewRewardTx constructs the reward transaction crediting the beneficiary.
func NewRewardTx(beneficiaryID AccountID) Tx {
	return Tx{
		Sender:    MiningAccountID,
		Recipient: beneficiaryID,
		Amount:    MiningReward,
	}
}

// Sign uses the specified private key to sign the transaction. The sender of
// the transaction must be the account of the private key.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if PublicKeyToAccountID(privateKey.PublicKey) != tx.Sender {
		return Tx{}, errors.New("private key does not belong to the sender")
	}

	sig, err := signature.Sign(tx.payload(), privateKey)
	if err != nil {
		return Tx{}, err
	}

	tx.Signature = sig

	return tx, nil
}

// IsReward reports whether this is a mining reward transaction.
func (tx Tx) IsReward() bool {
	return tx.Sender == MiningAccountID
}

// VerifySignature checks the signature was produced by the sender over the
// sender, recipient and amount. Reward transactions are exempt.
func (tx Tx) VerifySignature() error {
	if tx.IsReward() {
		return nil
	}

	if tx.Signature == "" {
		return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}

	if err := signature.VerifySignature(tx.payload(), string(tx.Sender), tx.Signature); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%g", shortID(tx.Sender), shortID(tx.Recipient), tx.Amount)
}

// payload returns the canonical signed and proof-of-work representation of
// the transaction. The field order is part of the digest.
func (tx Tx) payload() txPayload {
	return txPayload{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
	}
}

// txPayload is the part of a transaction covered by the signature and by the
// proof of work guess.
type txPayload struct {
	Sender    AccountID `json:"sender"`
	Recipient AccountID `json:"recipient"`
	Amount    float64   `json:"amount"`
}

// =============================================================================

// VerifyTransaction checks the sender can cover the amount of the transaction.
// The balanceOf function must reflect confirmed blocks and pending debits.
func VerifyTransaction(tx Tx, balanceOf func(AccountID) float64) error {
	if err := validateAmount(tx.Amount); err != nil {
		return err
	}

	if bal := balanceOf(tx.Sender); bal < tx.Amount {
		return fmt.Errorf("%w: account %s, balance %g, needed %g", ErrInsufficientFunds, shortID(tx.Sender), bal, tx.Amount)
	}

	return nil
}

// VerifyTransactions checks every open transaction against the balance its
// sender had when it was admitted: confirmed balance less the sender's earlier
// entries in the pool.
func VerifyTransactions(trans []Tx, confirmedOf func(AccountID) float64) error {
	pending := make(map[AccountID]float64)

	for i, tx := range trans {
		balanceOf := func(id AccountID) float64 {
			return confirmedOf(id) - pending[id]
		}

		if err := VerifyTransaction(tx, balanceOf); err != nil {
			return fmt.Errorf("open tx[%d]: %w", i, err)
		}

		pending[tx.Sender] += tx.Amount
	}

	return nil
}

// =============================================================================

// validateAmount rejects negative and non-finite amounts.
func validateAmount(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidAmount, amount)
	}

	return nil
}

// shortID trims an account id for log output.
func shortID(id AccountID) string {
	const size = 10

	if len(id) <= size {
		return string(id)
	}

	return string(id[:size])
}
