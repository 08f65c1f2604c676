// Package records defines the read-only entities served by the record store.
package records

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Key is an identifier column. The store serves some identifiers as JSON
// numbers and others as strings, so both decode to the same textual form.
type Key string

// UnmarshalJSON accepts a string, a number or null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*k = Key(n.String())
	return nil
}

// String returns the key text.
func (k Key) String() string { return string(k) }

// IsZero reports whether the key is blank.
func (k Key) IsZero() bool { return strings.TrimSpace(string(k)) == "" }
