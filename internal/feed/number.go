package feed

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on accepted feed numbers. Anything larger is not a price, code or
// timestamp, and big exponents make every later conversion allocate 10^exp.
const (
	maxNumberLength   = 64
	maxNumberExponent = 30
	maxNumberDigits   = 40
)

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Number is a permissive numeric feed field. The feed sends numbers, numeric
// strings, null, or omits the key; anything else decodes as present-but-invalid
// instead of failing the whole payload.
type Number struct {
	value   decimal.Decimal
	present bool
	valid   bool
}

// NewNumber builds a valid Number, mostly for tests and fixtures.
func NewNumber(f float64) Number {
	return Number{value: decimal.NewFromFloat(f), present: true, valid: true}
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	n.present = true

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	} else if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		// true, false, objects and arrays
		return nil
	}

	if len(text) > maxNumberLength {
		return nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	if exp := d.Exponent(); exp > maxNumberExponent || exp < -maxNumberExponent || d.NumDigits() > maxNumberDigits {
		return nil
	}
	n.value = d
	n.valid = true
	return nil
}

// MarshalJSON writes the parsed value, or null when absent or invalid.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

// Present reports whether the key carried a non-null value.
func (n Number) Present() bool {
	return n.present
}

// Valid reports whether the value parsed as a number.
func (n Number) Valid() bool {
	return n.valid
}

// Float64 returns the value and whether it parsed.
func (n Number) Float64() (float64, bool) {
	if !n.valid {
		return 0, false
	}
	return n.value.InexactFloat64(), true
}

// Int returns the value when it is an integral number within int32 range.
func (n Number) Int() (int, bool) {
	if !n.valid || !n.value.IsInteger() {
		return 0, false
	}
	if n.value.LessThan(minInt32) || n.value.GreaterThan(maxInt32) {
		return 0, false
	}
	return int(n.value.IntPart()), true
}

// Int64 is Int for identifiers and timestamps.
func (n Number) Int64() (int64, bool) {
	if !n.valid || !n.value.IsInteger() {
		return 0, false
	}
	if n.value.LessThan(minInt64) || n.value.GreaterThan(maxInt64) {
		return 0, false
	}
	return n.value.IntPart(), true
}
