package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/negocios/consola/internal/money"
)

// TaxRate is the VAT applied to every sale and purchase subtotal.
var TaxRate = decimal.New(15, -2)

var taxMultiplier = decimal.NewFromInt(1).Add(TaxRate)

// ComputeTotal derives a transaction total from its subtotal.
func ComputeTotal(subtotal decimal.Decimal) decimal.Decimal {
	return money.Round2(subtotal.Mul(taxMultiplier))
}

// ComputeTotalInput applies ComputeTotal to a raw form value. A subtotal that
// is not numeric yields an invalid total instead of zero so the entry form can
// refuse to submit it.
func ComputeTotalInput(raw any) decimal.NullDecimal {
	subtotal, ok := money.Parse(raw)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: ComputeTotal(subtotal), Valid: true}
}
