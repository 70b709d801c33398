package costbasis

import (
	"encoding/json"
	"slices"

	"github.com/etnz/costbasis/date"
)

// Market holds the live market inputs used to mark a position to market.
type Market struct {
	PriceUSD Money // current price per share
	FXRate   Rate  // current GBP per USD
}

// Historical is the part of a cost basis summary that only depends on the
// lots and the as-of date.
type Historical struct {
	Symbol string
	AsOf   date.Date
	// Lots in the order they were supplied. Use SortedLots for display.
	Lots []Lot

	TotalShares  Quantity
	TotalCostUSD Money
	TotalCostGBP Money

	AverageCostUSD        Money
	AverageCostGBP        Money
	WeightedAverageFXRate Rate // share-weighted mean of the lots' rates

	ShortTermShares  Quantity
	LongTermShares   Quantity
	ShortTermCostUSD Money
	LongTermCostUSD  Money

	LongTermPercentage Percent // share of long-term shares
}

// LotCount is the number of lots contributing to the summary.
func (h Historical) LotCount() int { return len(h.Lots) }

// SortedLots returns a copy of the lots sorted by acquisition date. Lots on
// the same day keep their original order.
func (h Historical) SortedLots() []Lot {
	lots := slices.Clone(h.Lots)
	slices.SortStableFunc(lots, func(a, b Lot) int {
		return date.DaysBetween(b.Date, a.Date)
	})
	return lots
}

// Pricing holds the market dependent figures of a summary.
type Pricing struct {
	CurrentPriceUSD Money
	CurrentFXRate   Rate

	MarketValueUSD          Money
	UnrealizedPnLUSD        Money
	UnrealizedPnLGBP        Money // converted at the current rate
	UnrealizedPnLPercentage Percent

	ShortTermUnrealizedPnLUSD Money
	LongTermUnrealizedPnLUSD  Money
}

// IsProfitable reports whether the position shows a strictly positive unrealized gain.
func (p Pricing) IsProfitable() bool { return p.UnrealizedPnLUSD.IsPositive() }

// Summary is the cost basis of one security as of a given day.
//
// A Summary is either historical only, or priced when market data has been
// attached. Pricing reports which. The priced figures can only be produced by
// Summarize or AttachMarketData, never set by hand.
//
// A summary over zero lots is a valid result: every total is zero.
type Summary struct {
	Historical
	pricing *Pricing
}

// Pricing returns the market dependent figures, and false if no market data was attached.
func (s Summary) Pricing() (Pricing, bool) {
	if s.pricing == nil {
		return Pricing{}, false
	}
	return *s.pricing, true
}

// IsPriced reports whether market data has been attached.
func (s Summary) IsPriced() bool { return s.pricing != nil }

// MarshalJSON writes the historical figures and, if priced, the market ones.
func (s Summary) MarshalJSON() ([]byte, error) {
	h := s.Historical
	var w jsonObjectWriter
	w.Append("symbol", h.Symbol)
	w.Append("asOf", h.AsOf)
	w.Append("lotCount", h.LotCount())
	w.Append("totalShares", h.TotalShares)
	w.Append("totalCostUsd", h.TotalCostUSD)
	w.Append("totalCostGbp", h.TotalCostGBP)
	w.Append("averageCostUsd", h.AverageCostUSD)
	w.Append("averageCostGbp", h.AverageCostGBP)
	w.Append("weightedAverageFxRate", h.WeightedAverageFXRate)
	w.Append("shortTermShares", h.ShortTermShares)
	w.Append("longTermShares", h.LongTermShares)
	w.Append("shortTermCostUsd", h.ShortTermCostUSD)
	w.Append("longTermCostUsd", h.LongTermCostUSD)
	w.Append("longTermPercentage", h.LongTermPercentage)
	if p, ok := s.Pricing(); ok {
		w.Append("currentPriceUsd", p.CurrentPriceUSD)
		w.Append("currentFxRate", p.CurrentFXRate)
		w.Append("marketValueUsd", p.MarketValueUSD)
		w.Append("unrealizedPnlUsd", p.UnrealizedPnLUSD)
		w.Append("unrealizedPnlGbp", p.UnrealizedPnLGBP)
		w.Append("unrealizedPnlPercentage", p.UnrealizedPnLPercentage)
		w.Append("shortTermUnrealizedPnlUsd", p.ShortTermUnrealizedPnLUSD)
		w.Append("longTermUnrealizedPnlUsd", p.LongTermUnrealizedPnLUSD)
		w.Append("isProfitable", p.IsProfitable())
	}
	w.Append("lots", lotsOrEmpty(h.Lots))
	return w.MarshalJSON()
}

// UnmarshalJSON reads a summary written by MarshalJSON.
//
// Every figure is recomputed from the lots and the market inputs; the
// figures found in b are ignored.
func (s *Summary) UnmarshalJSON(b []byte) error {
	var js struct {
		Symbol          string    `json:"symbol"`
		AsOf            date.Date `json:"asOf"`
		Lots            []Lot     `json:"lots"`
		CurrentPriceUSD *Money    `json:"currentPriceUsd"`
		CurrentFXRate   *Rate     `json:"currentFxRate"`
	}
	if err := json.Unmarshal(b, &js); err != nil {
		return err
	}
	var market *Market
	if js.CurrentPriceUSD != nil && js.CurrentFXRate != nil {
		market = &Market{PriceUSD: *js.CurrentPriceUSD, FXRate: *js.CurrentFXRate}
	}
	*s = Summarize(js.Symbol, js.Lots, js.AsOf, market)
	return nil
}

func lotsOrEmpty(lots []Lot) []Lot {
	if lots == nil {
		return []Lot{}
	}
	return lots
}
