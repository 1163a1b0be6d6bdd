package chapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is an exact decimal chapter number. The zero value is absent,
// which is how oneshots without a chapter number decode.
type Number struct {
	value decimal.Decimal
	valid bool
}

// NewNumber parses s as a decimal chapter number. An empty string yields an
// absent Number.
func NewNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("invalid chapter number %q: %w", s, err)
	}
	return Number{value: d, valid: true}, nil
}

// MustNumber is like NewNumber but panics on malformed input
func MustNumber(s string) Number {
	n, err := NewNumber(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Valid reports whether the chapter number is present
func (n Number) Valid() bool {
	return n.valid
}

// IsIntegral reports whether the number has no fractional part (1.0 is integral)
func (n Number) IsIntegral() bool {
	return n.valid && n.value.Equal(n.value.Truncate(0))
}

// Cmp compares two numbers; absent numbers sort before present ones
func (n Number) Cmp(other Number) int {
	switch {
	case !n.valid && !other.valid:
		return 0
	case !n.valid:
		return -1
	case !other.valid:
		return 1
	}
	return n.value.Cmp(other.value)
}

// Equal reports whether both numbers denote the same value
func (n Number) Equal(other Number) bool {
	return n.Cmp(other) == 0
}

// Float64 returns the number as a float for plotting
func (n Number) Float64() float64 {
	f, _ := n.value.Float64()
	return f
}

// String returns the canonical decimal form ("1", "1.5") or "" when absent
func (n Number) String() string {
	if !n.valid {
		return ""
	}
	return n.value.String()
}

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid chapter number: %w", err)
		}
	}

	parsed, err := NewNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// MarshalJSON writes the canonical string form, or null when absent
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String())
}
