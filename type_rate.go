package costbasis

import "github.com/shopspring/decimal"

// Rate is an exchange rate quoted as GBP per 1 USD.
//
// Converting a USD amount to GBP multiplies by the rate:
//
//	gbp = usd × rate
//
// So a rate of 0.80 means one dollar buys eighty pence.
type Rate struct {
	value decimal.Decimal
}

// FX returns a Rate for the given GBP-per-USD value.
func FX[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a decimal string such as "0.7931".
func ParseRate(s string) (Rate, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, err
	}
	return Rate{value: v}, nil
}

func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) Equal(s Rate) bool        { return r.value.Equal(s.value) }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) IsPositive() bool         { return r.value.IsPositive() }
func (r Rate) String() string           { return r.value.String() }

// Inverse returns the USD-per-GBP rate, zero if r is zero.
func (r Rate) Inverse() Rate { return Rate{value: safeDiv(decimal.NewFromInt(1), r.value)} }

func (r Rate) MarshalJSON() ([]byte, error) { return r.value.MarshalJSON() }

func (r *Rate) UnmarshalJSON(b []byte) error { return r.value.UnmarshalJSON(b) }
