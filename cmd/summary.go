package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/date"
	"github.com/etnz/costbasis/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date   string
	symbol string
	price  bool
	json   bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the cost basis summary of one or all symbols" }
func (*summaryCmd) Usage() string {
	return `cbs summary [-d <date>] [-s <symbol>] [-price] [-json]

  Displays the cost basis of a symbol: total shares, total and average cost
  in USD and GBP, and the short-term/long-term split as of the given date.
  Without -s, an overview of every symbol is displayed.

  With -price, the summary is marked to market using the market file.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Date for the summary. See the user manual for supported date formats.")
	f.StringVar(&c.symbol, "s", "", "Symbol to summarize. Summarizes all symbols by default.")
	f.BoolVar(&c.price, "price", false, "Mark the summary to market with the current market data.")
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.ParseRelative(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	svc, err := newService()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	var summaries []costbasis.Summary
	if c.symbol == "" {
		summaries, err = svc.SummarizeAll(ctx, on, c.price)
	} else {
		var s costbasis.Summary
		if c.price {
			s, err = svc.GetPricedCostBasis(ctx, c.symbol, on)
		} else {
			s, err = svc.GetCostBasis(ctx, c.symbol, on)
		}
		summaries = []costbasis.Summary{s}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error computing cost basis: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		var v any = summaries
		if c.symbol != "" {
			v = summaries[0]
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(stderr, "Error encoding summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if c.symbol != "" {
		printMarkdown(renderer.SummaryMarkdown(summaries[0]))
	} else {
		printMarkdown(renderer.OverviewMarkdown(summaries))
	}
	return subcommands.ExitSuccess
}
