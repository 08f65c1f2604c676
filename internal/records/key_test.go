package records

import (
	"encoding/json"
	"testing"
)

func TestKeyDecodesNumbersAndStrings(t *testing.T) {
	var sale Sale
	payload := `{"numeroTransaccion": 42, "cliente": "0102030405", "cuenta": null, "subtotal": "10", "total": 11.5}`
	if err := json.Unmarshal([]byte(payload), &sale); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sale.ID != "42" {
		t.Fatalf("unexpected id %q", sale.ID)
	}
	if sale.Client != "0102030405" {
		t.Fatalf("unexpected client %q", sale.Client)
	}
	if !sale.Account.IsZero() {
		t.Fatalf("expected blank account, got %q", sale.Account)
	}
	if sale.Total.String() != "11.50" {
		t.Fatalf("unexpected total %s", sale.Total)
	}
}

func TestKeyRejectsObjects(t *testing.T) {
	var k Key
	if err := json.Unmarshal([]byte(`{"a":1}`), &k); err == nil {
		t.Fatalf("expected error decoding object into key")
	}
}
