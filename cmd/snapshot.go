package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/date"
	"github.com/etnz/costbasis/renderer"
	"github.com/etnz/costbasis/snapshot"
	"github.com/google/subcommands"
)

type snapshotCmd struct {
	date   string
	symbol string
	price  bool
	list   bool
	get    string
}

func (*snapshotCmd) Name() string { return "snapshot" }
func (*snapshotCmd) Synopsis() string {
	return "save cost basis summaries to the audit database, or list them"
}
func (*snapshotCmd) Usage() string {
	return `cbs snapshot [-d <date>] [-s <symbol>] [-price]
cbs snapshot -list [-s <symbol>]
cbs snapshot -get <id>

  Saves the summary of a symbol (or of every symbol) to the snapshot database,
  so that the figures reported on a given day can be audited later.

  With -list, lists the saved snapshots, oldest first. With -get, displays a
  saved snapshot. Figures are recomputed from the saved lots and market data;
  a snapshot whose recomputed figures differ from the saved ones is flagged
  as drifted.
`
}

func (p *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", "0d", "Date for the summaries to save.")
	f.StringVar(&p.symbol, "s", "", "Symbol to save or list. All symbols by default.")
	f.BoolVar(&p.price, "price", false, "Mark the saved summaries to market.")
	f.BoolVar(&p.list, "list", false, "List the saved snapshots.")
	f.StringVar(&p.get, "get", "", "ID of a saved snapshot to display.")
}

func (p *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.list && p.get != "" {
		fmt.Fprintln(stderr, "Error: -list and -get flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	store, err := snapshot.Open(snapshotDB, logger())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	switch {
	case p.get != "":
		snap, err := store.Get(ctx, p.get)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		if snap.Drifted {
			fmt.Fprintf(stderr, "Warning: snapshot %s no longer matches the figures reported on %s, recomputed figures are displayed.\n",
				snap.ID, snap.CreatedAt.Format(time.DateTime))
		}
		printMarkdown(renderer.SummaryMarkdown(snap.Summary))
		return subcommands.ExitSuccess

	case p.list:
		snaps, err := store.List(ctx, p.symbol)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		printMarkdown(snapshotsMarkdown(snaps))
		return subcommands.ExitSuccess
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

	var summaries []costbasis.Summary
	switch {
	case p.symbol == "":
		summaries, err = svc.SummarizeAll(ctx, on, p.price)
	case p.price:
		var s costbasis.Summary
		s, err = svc.GetPricedCostBasis(ctx, p.symbol, on)
		summaries = append(summaries, s)
	default:
		var s costbasis.Summary
		s, err = svc.GetCostBasis(ctx, p.symbol, on)
		summaries = append(summaries, s)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error computing cost basis: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, s := range summaries {
		id, err := store.Save(ctx, s)
		if err != nil {
			fmt.Fprintf(stderr, "Error saving snapshot of %q: %v\n", s.Symbol, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", id, s.Symbol, s.AsOf)
	}
	return subcommands.ExitSuccess
}

// snapshotsMarkdown renders the list of snapshots as a table.
func snapshotsMarkdown(snaps []snapshot.Snapshot) string {
	var b strings.Builder
	if len(snaps) == 0 {
		b.WriteString("No snapshots.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Saved | Symbol | As Of | Shares | Total Cost | Priced | Drifted |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|:---:|:---:|")
	for _, s := range snaps {
		priced, drifted := "", ""
		if s.Summary.IsPriced() {
			priced = "yes"
		}
		if s.Drifted {
			drifted = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.ID,
			s.CreatedAt.Format(time.DateTime),
			s.Summary.Symbol,
			s.Summary.AsOf,
			s.Summary.TotalShares,
			s.Summary.TotalCostUSD,
			priced,
			drifted,
		)
	}
	return b.String()
}
