package reporting

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotal(t *testing.T) {
	cases := map[string]string{
		"100":   "115.00",
		"0":     "0.00",
		"10.01": "11.51",
		"19.99": "22.99",
		"0.03":  "0.03",
	}
	for in, want := range cases {
		got := ComputeTotal(decimal.RequireFromString(in))
		if got.StringFixed(2) != want {
			t.Fatalf("ComputeTotal(%s) = %s, want %s", in, got.StringFixed(2), want)
		}
	}
}

func TestComputeTotalInputPropagatesInvalid(t *testing.T) {
	if got := ComputeTotalInput("doce"); got.Valid {
		t.Fatalf("expected invalid total for non-numeric subtotal, got %s", got.Decimal)
	}
	if got := ComputeTotalInput(""); got.Valid {
		t.Fatalf("expected invalid total for empty subtotal")
	}
	got := ComputeTotalInput("100")
	if !got.Valid || got.Decimal.StringFixed(2) != "115.00" {
		t.Fatalf("unexpected total %+v", got)
	}
}
