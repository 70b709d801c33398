package costbasis

import (
	"slices"

	"github.com/etnz/costbasis/date"
	"github.com/shopspring/decimal"
)

// Summarize computes the cost basis summary of symbol from its lots, as of a given day.
//
// Lots do not need to be sorted, and the input slice is left untouched. When
// market is nil the summary is historical only; market data can be attached
// later with AttachMarketData at no extra cost.
//
// Summarize never fails. Ratios over an empty position (average cost, long
// term percentage, P&L percentage) are zero, see safeDiv.
//
// Summarize is a pure function: it is safe to call concurrently.
func Summarize(symbol string, lots []Lot, asOf date.Date, market *Market) Summary {
	h := Historical{
		Symbol:           symbol,
		AsOf:             asOf,
		Lots:             slices.Clone(lots),
		TotalCostUSD:     M(0, USD),
		TotalCostGBP:     M(0, GBP),
		ShortTermCostUSD: M(0, USD),
		LongTermCostUSD:  M(0, USD),
	}

	weightedFX := decimal.Zero // Σ shares × fx
	for _, l := range lots {
		usd := l.TotalUSD()
		h.TotalShares = h.TotalShares.Add(l.Shares)
		h.TotalCostUSD = h.TotalCostUSD.Add(usd)
		// GBP derives from the very same per-lot USD total.
		h.TotalCostGBP = h.TotalCostGBP.Add(usd.Convert(l.FXRate, GBP))
		weightedFX = weightedFX.Add(l.Shares.value.Mul(l.FXRate.value))

		switch l.HoldingPeriod(asOf) {
		case LongTerm:
			h.LongTermShares = h.LongTermShares.Add(l.Shares)
			h.LongTermCostUSD = h.LongTermCostUSD.Add(usd)
		default:
			h.ShortTermShares = h.ShortTermShares.Add(l.Shares)
			h.ShortTermCostUSD = h.ShortTermCostUSD.Add(usd)
		}
	}

	h.AverageCostUSD = h.TotalCostUSD.Div(h.TotalShares)
	h.AverageCostGBP = h.TotalCostGBP.Div(h.TotalShares)
	h.WeightedAverageFXRate = Rate{value: safeDiv(weightedFX, h.TotalShares.value)}
	h.LongTermPercentage = h.LongTermShares.Percent(h.TotalShares)

	s := Summary{Historical: h}
	if market != nil {
		s = AttachMarketData(s, *market)
	}
	return s
}

// AttachMarketData returns a copy of s marked to the given market data.
//
// It does not walk the lots again: the per holding period totals kept in the
// historical part are enough. Attaching to an already priced summary
// replaces the previous market data in the returned copy; s is unchanged.
func AttachMarketData(s Summary, m Market) Summary {
	p := price(s.Historical, m)
	return Summary{Historical: s.Historical, pricing: &p}
}

func price(h Historical, m Market) Pricing {
	p := Pricing{
		CurrentPriceUSD: m.PriceUSD,
		CurrentFXRate:   m.FXRate,
		MarketValueUSD:  m.PriceUSD.Mul(h.TotalShares),
	}
	p.UnrealizedPnLUSD = p.MarketValueUSD.Sub(h.TotalCostUSD)
	// unrealized: marked to today, hence today's rate.
	p.UnrealizedPnLGBP = p.UnrealizedPnLUSD.Convert(m.FXRate, GBP)
	p.UnrealizedPnLPercentage = p.UnrealizedPnLUSD.Percent(h.TotalCostUSD)
	p.ShortTermUnrealizedPnLUSD = m.PriceUSD.Mul(h.ShortTermShares).Sub(h.ShortTermCostUSD)
	p.LongTermUnrealizedPnLUSD = m.PriceUSD.Mul(h.LongTermShares).Sub(h.LongTermCostUSD)
	return p
}
