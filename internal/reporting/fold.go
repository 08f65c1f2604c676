package reporting

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/negocios/consola/internal/money"
)

// FieldSpec names a numeric column to total and how to read it from a row.
type FieldSpec[R any] struct {
	Name  string
	Value func(R) money.Amount
}

// Total is one folded column.
type Total struct {
	Name  string
	Value decimal.Decimal
}

// Totals holds folded columns in the order their specs were given.
type Totals []Total

// Get returns the named total, or zero when the column is unknown.
func (t Totals) Get(name string) decimal.Decimal {
	for _, total := range t {
		if total.Name == name {
			return total.Value
		}
	}
	return decimal.Zero
}

// MarshalJSON writes the totals as an object preserving column order.
func (t Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, total := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(total.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(total.Value.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Fold sums every spec'd column across rows. Missing or non-numeric values
// count as zero, so the result never depends on row order and an empty input
// yields zero for every column.
func Fold[R any](rows []R, specs []FieldSpec[R]) Totals {
	sums := make([]decimal.Decimal, len(specs))
	for _, row := range rows {
		for i, spec := range specs {
			sums[i] = sums[i].Add(spec.Value(row).OrZero())
		}
	}
	out := make(Totals, len(specs))
	for i, spec := range specs {
		out[i] = Total{Name: spec.Name, Value: sums[i]}
	}
	return out
}
