// Package money holds the decimal amount type shared by transaction records and
// report rows.
package money

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimals money values are presented with.
const Places = 2

// Amount is a numeric field as delivered by the record store. The store emits
// numbers, numeric strings or null for the same column, so decoding never
// fails: anything that is not a finite number becomes an invalid Amount.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// New wraps a decimal value.
func New(v decimal.Decimal) Amount {
	return Amount{Value: v, Valid: true}
}

// FromFloat builds an Amount from a float. NaN and infinities are invalid.
func FromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}
	}
	return New(decimal.NewFromFloat(f))
}

// FromInt builds an Amount from an integer count.
func FromInt(n int64) Amount {
	return New(decimal.NewFromInt(n))
}

// MustParse parses s and panics when it is not numeric. Intended for fixtures.
func MustParse(s string) Amount {
	d, ok := Parse(s)
	if !ok {
		panic("money: invalid amount " + strconv.Quote(s))
	}
	return New(d)
}

// OrZero returns the value, or zero when the amount is invalid.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// Round2 rounds half away from zero to two decimals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse interprets v as a finite decimal number.
func Parse(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case Amount:
		return n.Value, n.Valid
	case *Amount:
		if n == nil {
			return decimal.Zero, false
		}
		return n.Value, n.Valid
	case decimal.Decimal:
		return n, true
	case decimal.NullDecimal:
		return n.Decimal, n.Valid
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromUint64(uint64(n)), true
	case uint16:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case json.Number:
		return parseString(string(n))
	case string:
		return parseString(n)
	case *string:
		if n == nil {
			return decimal.Zero, false
		}
		return parseString(*n)
	default:
		return decimal.Zero, false
	}
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Amount{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if d, ok := parseString(s); ok {
			*a = New(d)
		}
		return nil
	}
	if d, ok := parseString(string(data)); ok {
		*a = New(d)
	}
	return nil
}

// MarshalJSON writes the exact decimal as a JSON number, or null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// String renders the amount with two decimals; invalid amounts render as
// "0.00".
func (a Amount) String() string {
	return a.OrZero().StringFixed(Places)
}
