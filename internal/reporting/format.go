// Package reporting implements the daily and monthly report pipeline: label
// resolution, date-window filtering, totals folding and table rendering.
package reporting

import (
	"github.com/negocios/consola/internal/money"
)

const zeroAmount = "0.00"

// FormatAmount renders v with exactly two decimals, rounding half away from
// zero. Anything that is not a finite number renders as "0.00".
func FormatAmount(v any) string {
	d, ok := money.Parse(v)
	if !ok {
		return zeroAmount
	}
	return d.StringFixed(money.Places)
}

// FormatCurrency is FormatAmount with a dollar sign.
func FormatCurrency(v any) string {
	return "$" + FormatAmount(v)
}

// FormatCount renders a count column. Invalid values render as "0".
func FormatCount(v any) string {
	d, ok := money.Parse(v)
	if !ok {
		return "0"
	}
	return d.String()
}
