// Package renderer formats cost basis summaries as markdown.
//
// Amounts are rounded here, and only here.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/costbasis"
)

// SummaryMarkdown renders the cost basis summary of a single security.
func SummaryMarkdown(s costbasis.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cost Basis of %s on %s\n\n", s.Symbol, s.AsOf)
	if s.LotCount() == 0 {
		fmt.Fprintln(&b, "No lots recorded.")
		return b.String()
	}

	fmt.Fprintln(&b, "| | USD | GBP |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	fmt.Fprintf(&b, "| Total Cost | %s | %s |\n", s.TotalCostUSD, s.TotalCostGBP)
	fmt.Fprintf(&b, "| Average Cost | %s | %s |\n", s.AverageCostUSD, s.AverageCostGBP)
	ConditionalBlock(&b, func(w io.Writer) bool {
		p, ok := s.Pricing()
		if !ok {
			return false
		}
		fmt.Fprintf(w, "| Unrealized P&L | %s | %s |\n", p.UnrealizedPnLUSD.SignedString(), p.UnrealizedPnLGBP.SignedString())
		return true
	})
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "- Lots: %d\n", s.LotCount())
	fmt.Fprintf(&b, "- Shares: %s (short-term %s, long-term %s)\n", s.TotalShares, s.ShortTermShares, s.LongTermShares)
	fmt.Fprintf(&b, "- Long-term: %s\n", s.LongTermPercentage)
	fmt.Fprintf(&b, "- Weighted average FX rate: %s GBP/USD\n", s.WeightedAverageFXRate.Decimal().StringFixed(4))

	ConditionalBlock(&b, func(w io.Writer) bool {
		p, ok := s.Pricing()
		if !ok {
			return false
		}
		fmt.Fprintf(w, "\n## Market\n\n")
		fmt.Fprintf(w, "- Price: %s\n", p.CurrentPriceUSD)
		fmt.Fprintf(w, "- FX rate: %s GBP/USD\n", p.CurrentFXRate.Decimal().StringFixed(4))
		fmt.Fprintf(w, "- Market value: %s\n", p.MarketValueUSD)
		fmt.Fprintf(w, "- Return: %s\n", p.UnrealizedPnLPercentage.SignedString())
		fmt.Fprintf(w, "- Short-term P&L: %s\n", p.ShortTermUnrealizedPnLUSD.SignedString())
		fmt.Fprintf(w, "- Long-term P&L: %s\n", p.LongTermUnrealizedPnLUSD.SignedString())
		return true
	})

	return b.String()
}

// OverviewMarkdown renders one line per security.
func OverviewMarkdown(summaries []costbasis.Summary) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Cost Basis Overview\n\n")
	fmt.Fprintln(&b, "| Security | Shares | Cost (USD) | Cost (GBP) | Long-term | Unrealized (USD) | Return |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")
	for _, s := range summaries {
		pnl, ret := "", ""
		if p, ok := s.Pricing(); ok {
			pnl, ret = p.UnrealizedPnLUSD.SignedString(), p.UnrealizedPnLPercentage.SignedString()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			s.Symbol,
			s.TotalShares,
			s.TotalCostUSD,
			s.TotalCostGBP,
			s.LongTermPercentage,
			pnl,
			ret,
		)
	}
	return b.String()
}
