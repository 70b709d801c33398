package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/costbasis"
)

// LotsMarkdown renders the lots of a summary, oldest first, with their holding period.
func LotsMarkdown(s costbasis.Summary) string {
	var b strings.Builder
	p, priced := s.Pricing()

	fmt.Fprintf(&b, "# Lots of %s on %s\n\n", s.Symbol, s.AsOf)
	header := "| Date | Shares | Price | FX | Cost (USD) | Cost (GBP) | Days | Holding |"
	align := "|:---|---:|---:|---:|---:|---:|---:|:---|"
	if priced {
		header += " Unrealized (USD) |"
		align += "---:|"
	}
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, align)

	for _, l := range s.SortedLots() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %d | %s |",
			l.Date,
			l.Shares,
			l.PriceUSD,
			l.FXRate,
			l.TotalUSD(),
			l.TotalGBP(),
			l.HoldingDays(s.AsOf),
			l.HoldingPeriod(s.AsOf),
		)
		if priced {
			fmt.Fprintf(&b, " %s |", l.UnrealizedPnLUSD(p.CurrentPriceUSD).SignedString())
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
