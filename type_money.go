package costbasis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes handled by the cost basis computation.
const (
	USD = money.USD
	GBP = money.GBP
)

// ErrIncomparable is returned when comparing amounts in different currencies.
var ErrIncomparable = errors.New("incomparable currencies")

// Money represents an exact monetary value in a given currency.
//
// Arithmetic keeps every digit; rounding to the currency's minor unit only
// happens when formatting.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ValidateCurrency checks that code is a known ISO 4217 currency code.
func ValidateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to the currency minor unit.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Round returns m rounded to its currency minor unit. It is meant for display only.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Neg() Money               { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money     { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money     { return Money{value: safeDiv(m.value, n.value), cur: m.cur} }
func (m Money) Percent(of Money) Percent { return percentOf(m.value, of.value) }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Convert returns m expressed in currency 'to' using a rate quoted as 'to' per unit of m's currency.
func (m Money) Convert(rate Rate, to string) Money {
	return Money{value: m.value.Mul(rate.value), cur: to}
}

// Compare returns -1, 0 or +1 like [decimal.Decimal.Cmp].
// Amounts in different currencies are incomparable.
func (m Money) Compare(n Money) (int, error) {
	if m.cur != n.cur && m.cur != "" && n.cur != "" {
		return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, m.cur, n.cur)
	}
	return m.value.Cmp(n.value), nil
}

// makes the "" currency totally weak.
//
// Mixing two different currencies is a programming error: it panics rather than convert silently.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// MarshalJSON writes the full precision amount, the currency is omitted when unset.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value)
	return w.MarshalJSON()
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var jm struct {
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(b, &jm); err != nil {
		return err
	}
	m.cur, m.value = jm.Currency, jm.Amount
	return nil
}
