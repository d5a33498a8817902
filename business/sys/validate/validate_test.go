package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type newTx struct {
	Sender    string  `json:"sender" validate:"required,account"`
	Recipient string  `json:"recipient" validate:"required,account"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

func Test_Check(t *testing.T) {
	const account = "0x0263a7ffe3b11f1c4b5e92f2ca0cab7d7a28185fa2bbee4f2e16fd5b8a1ef84dd3"

	t.Log("Given the need to validate request models.")
	{
		ok := newTx{Sender: account, Recipient: account, Amount: 5}
		if err := validate.Check(ok); err != nil {
			t.Fatalf("\t%s\tShould accept a valid model: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid model.", success)

		bad := newTx{Sender: "bill", Amount: -1}
		err := validate.Check(bad)
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould return field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould return field errors.", success)

		fields := validate.GetFieldErrors(err).Fields()
		for _, name := range []string{"sender", "recipient", "amount"} {
			if _, exists := fields[name]; !exists {
				t.Fatalf("\t%s\tShould report the %s field: %v", failed, name, fields)
			}
		}
		t.Logf("\t%s\tShould report every bad field by its JSON name.", success)

		if fields["sender"] != "sender must be a valid account id" {
			t.Fatalf("\t%s\tShould translate the account error, got %q.", failed, fields["sender"])
		}
		t.Logf("\t%s\tShould translate the account error.", success)
	}
}
