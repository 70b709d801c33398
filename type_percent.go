package costbasis

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent is an exact percentage: 50 means 50%.
type Percent struct {
	value decimal.Decimal
}

// Pct returns a Percent from a plain number of percents.
func Pct[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

// percentOf returns a/b*100, zero when b is zero.
func percentOf(a, b decimal.Decimal) Percent {
	return Percent{value: safeDiv(a.Mul(hundred), b)}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) Equal(q Percent) bool     { return p.value.Equal(q.value) }
func (p Percent) IsZero() bool             { return p.value.IsZero() }

func (p Percent) String() string {
	return p.value.StringFixed(2) + "%"
}

func (p Percent) SignedString() string {
	res := p.value.StringFixed(2)
	if res == "0.00" || res == "-0.00" {
		return "-"
	}
	if p.value.IsPositive() {
		res = "+" + res
	}
	return res + "%"
}

func (p Percent) MarshalJSON() ([]byte, error) { return p.value.MarshalJSON() }

func (p *Percent) UnmarshalJSON(b []byte) error { return p.value.UnmarshalJSON(b) }
