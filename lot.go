package costbasis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/costbasis/date"
)

// ErrInvalidLot is returned by NewLot for lots that cannot be accounted for.
var ErrInvalidLot = errors.New("invalid lot")

// Lot represents a single purchase of a security, used for cost basis calculations.
//
// Lots are values: they are created once from a purchase record and never
// modified. A correction is a new compensating record upstream.
type Lot struct {
	Date     date.Date // acquisition day
	Shares   Quantity
	PriceUSD Money // per share, in USD
	FXRate   Rate  // GBP per USD on the acquisition day
}

// NewLot returns a validated lot.
func NewLot(on date.Date, shares Quantity, priceUSD Money, fx Rate) (Lot, error) {
	l := Lot{Date: on, Shares: shares, PriceUSD: priceUSD, FXRate: fx}
	if err := l.Validate(); err != nil {
		return Lot{}, err
	}
	return l, nil
}

// Validate checks the lot is a plausible purchase record.
func (l Lot) Validate() error {
	var errs []error
	if l.Date.IsZero() {
		errs = append(errs, errors.New("missing date"))
	}
	if !l.Shares.IsPositive() {
		errs = append(errs, fmt.Errorf("shares must be positive, got %v", l.Shares))
	}
	if l.PriceUSD.Currency() != USD {
		errs = append(errs, fmt.Errorf("price must be in %s, got %q", USD, l.PriceUSD.Currency()))
	}
	if l.PriceUSD.IsNegative() {
		errs = append(errs, fmt.Errorf("price must not be negative, got %v", l.PriceUSD))
	}
	if !l.FXRate.IsPositive() {
		errs = append(errs, fmt.Errorf("fx rate must be positive, got %v", l.FXRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w on %s: %w", ErrInvalidLot, l.Date, errors.Join(errs...))
	}
	return nil
}

// TotalUSD is the purchase cost of the lot in USD.
func (l Lot) TotalUSD() Money { return l.PriceUSD.Mul(l.Shares) }

// TotalGBP is the purchase cost of the lot in GBP, at the acquisition rate.
func (l Lot) TotalGBP() Money { return l.TotalUSD().Convert(l.FXRate, GBP) }

// HoldingDays returns the number of calendar days the lot has been held on asOf.
func (l Lot) HoldingDays(asOf date.Date) int { return date.DaysBetween(l.Date, asOf) }

// HoldingPeriod returns the lot's tax classification on asOf.
func (l Lot) HoldingPeriod(asOf date.Date) HoldingPeriod { return Classify(l.Date, asOf) }

// IsLongTerm reports whether the lot is held long-term on asOf.
func (l Lot) IsLongTerm(asOf date.Date) bool { return l.HoldingPeriod(asOf) == LongTerm }

// MarketValueUSD is the lot's value at the given USD price.
func (l Lot) MarketValueUSD(price Money) Money { return price.Mul(l.Shares) }

// UnrealizedPnLUSD is the gain (or loss) of the lot if sold at the given USD price.
func (l Lot) UnrealizedPnLUSD(price Money) Money { return l.MarketValueUSD(price).Sub(l.TotalUSD()) }

// Equal reports whether l and m record the same purchase.
func (l Lot) Equal(m Lot) bool {
	return l.Date == m.Date && l.Shares.Equal(m.Shares) && l.PriceUSD.Equal(m.PriceUSD) && l.FXRate.Equal(m.FXRate)
}

func (l Lot) String() string {
	return fmt.Sprintf("%s %s @ %s (fx %s)", l.Date, l.Shares, l.PriceUSD, l.FXRate)
}

// MarshalJSON writes the lot and its derived totals.
func (l Lot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", l.Date)
	w.Append("shares", l.Shares)
	w.Append("priceUsd", l.PriceUSD)
	w.Append("fxRate", l.FXRate)
	w.Append("totalUsd", l.TotalUSD())
	w.Append("totalGbp", l.TotalGBP())
	return w.MarshalJSON()
}

// UnmarshalJSON reads back the lot written by MarshalJSON. Derived fields are ignored.
func (l *Lot) UnmarshalJSON(b []byte) error {
	var jl struct {
		Date     date.Date `json:"date"`
		Shares   Quantity  `json:"shares"`
		PriceUSD Money     `json:"priceUsd"`
		FXRate   Rate      `json:"fxRate"`
	}
	if err := json.Unmarshal(b, &jl); err != nil {
		return err
	}
	*l = Lot{Date: jl.Date, Shares: jl.Shares, PriceUSD: jl.PriceUSD, FXRate: jl.FXRate}
	return nil
}
