// Package signature provides helper functions for handling the ledger's
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ledgerID is an arbitrary number added to the recovery id of every signature
// produced here. This makes it clear a signature comes from this ledger.
// Ethereum and Bitcoin do this as well, but they use the value of 27.
const ledgerID = 29

// =============================================================================

// Hash returns a hex encoded sha256 digest of the JSON representation of the
// value. Struct fields are marshaled in declaration order, so the digest is
// stable for any two values with the same field values. An empty string is
// returned if the value can't be marshaled.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	return HashBytes(data)
}

// HashBytes returns the hex encoded sha256 digest of the specified data.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// PublicKeyString returns the hex encoded compressed form of the public key.
// This is the identity used for accounts on the ledger.
func PublicKeyString(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&pk))
}

// Sign uses the specified private key to sign the value. The signature is
// returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and the signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(&privateKey.PublicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += ledgerID

	return hexutil.Encode(sig), nil
}

// VerifySignature checks the hex encoded signature was produced over the value
// by the private key belonging to the hex encoded public key.
func VerifySignature(value any, publicKey string, signature string) error {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}

	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length, got %d, exp %d", len(sig), crypto.SignatureLength)
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - ledgerID
	if v != 0 && v != 1 {
		return errors.New("invalid recovery id")
	}

	// Prepare the data that was signed.
	data, err := stamp(value)
	if err != nil {
		return err
	}

	if !crypto.VerifySignature(pub, data, sig[:crypto.RecoveryIDOffset]) {
		return errors.New("signature does not match public key")
	}

	return nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide a data
	// length consistency with all data.
	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures we produce when signing data
	// are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, txHash), nil
}
