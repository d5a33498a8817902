package signature_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	t.Log("Given the need to sign and verify data.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate a private key.", success)

		sig, err := signature.Sign(value, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign data.", success)

		if len(sig) != 2+2*crypto.SignatureLength {
			t.Logf("\t%s\tgot: %d", failed, len(sig))
			t.Logf("\t%s\texp: %d", failed, 2+2*crypto.SignatureLength)
			t.Fatalf("\t%s\tShould get back a 65 byte hex signature.", failed)
		}
		t.Logf("\t%s\tShould get back a 65 byte hex signature.", success)

		pub := signature.PublicKeyString(pk.PublicKey)
		if err := signature.VerifySignature(value, pub, sig); err != nil {
			t.Fatalf("\t%s\tShould be able to verify the signature: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to verify the signature.", success)

		value.Name = "Jill"
		if err := signature.VerifySignature(value, pub, sig); err == nil {
			t.Fatalf("\t%s\tShould reject the signature for different data.", failed)
		}
		t.Logf("\t%s\tShould reject the signature for different data.", success)
	}
}

func Test_WrongKey(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	t.Log("Given the need to reject signatures from another key.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}

		other, err := crypto.HexToECDSA(otherHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}

		sig, err := signature.Sign(value, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}

		if err := signature.VerifySignature(value, signature.PublicKeyString(other.PublicKey), sig); err == nil {
			t.Fatalf("\t%s\tShould reject a signature checked against another public key.", failed)
		}
		t.Logf("\t%s\tShould reject a signature checked against another public key.", success)

		if err := signature.VerifySignature(value, signature.PublicKeyString(pk.PublicKey), "0x1234"); err == nil {
			t.Fatalf("\t%s\tShould reject a malformed signature.", failed)
		}
		t.Logf("\t%s\tShould reject a malformed signature.", success)
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	// sha256 of {"Name":"Bill"}.
	hash := "0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}

	if signature.HashBytes([]byte(`{"Name":"Bill"}`)) != hash {
		t.Fatalf("Should get the same hash from the raw bytes.")
	}
}
