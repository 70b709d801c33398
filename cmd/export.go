package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/costbasis/date"
	"github.com/etnz/costbasis/xlsx"
	"github.com/google/subcommands"
)

type exportCmd struct {
	date   string
	output string
	price  bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the cost basis of every symbol as an Excel workbook" }
func (*exportCmd) Usage() string {
	return `cbs export [-d <date>] [-o <file.xlsx>] [-price]

  Writes an Excel workbook with one sheet per symbol: the cost basis summary
  followed by the lot table.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", "0d", "Date for the summaries.")
	f.StringVar(&p.output, "o", "costbasis.xlsx", "Path of the workbook to write.")
	f.BoolVar(&p.price, "price", false, "Mark the summaries to market with the current market data.")
}

func (p *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	summaries, err := svc.SummarizeAll(ctx, on, p.price)
	if err != nil {
		fmt.Fprintf(stderr, "Error computing cost basis: %v\n", err)
		return subcommands.ExitFailure
	}

	content, err := xlsx.New(logger()).Export(summaries)
	if err != nil {
		fmt.Fprintf(stderr, "Error exporting workbook: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(p.output, content, 0644); err != nil {
		fmt.Fprintf(stderr, "Error writing %q: %v\n", p.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully exported %d symbols to %s\n", len(summaries), p.output)
	return subcommands.ExitSuccess
}
