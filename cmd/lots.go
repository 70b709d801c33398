package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/costbasis/date"
	"github.com/etnz/costbasis/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	date   string
	symbol string
	price  bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the purchase lots of a symbol with their holding period" }
func (*lotsCmd) Usage() string {
	return `cbs lots -s <symbol> [-d <date>] [-price]

  Lists the purchase lots of a symbol, oldest first, with the number of days
  held and the holding period as of the given date.
`
}

func (p *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", "0d", "Date the holding periods are computed on.")
	f.StringVar(&p.symbol, "s", "", "Symbol to list (required).")
	f.BoolVar(&p.price, "price", false, "Add the unrealized gain of each lot.")
}

func (p *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.symbol == "" {
		fmt.Fprintln(stderr, "Error: -s flag is required.")
		return subcommands.ExitUsageError
	}
	on, err := date.ParseRelative(p.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	svc, err := newService()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	get := svc.GetCostBasis
	if p.price {
		get = svc.GetPricedCostBasis
	}
	s, err := get(ctx, p.symbol, on)
	if err != nil {
		fmt.Fprintf(stderr, "Error computing cost basis: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LotsMarkdown(s))
	return subcommands.ExitSuccess
}
