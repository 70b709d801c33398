package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the lots file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cbs fmt [-check]

  Validates and formats the lots file. Every lot is validated, then lots are
  sorted by symbol and date and written back in a canonical JSONL format.
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.check, "check", false, "Only validate the lots file, do not rewrite it.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, err := DecodeLots()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	if p.check {
		fmt.Fprintf(stdout, "%s is valid (%d lots)\n", lotsFile, book.Len())
		return subcommands.ExitSuccess
	}
	if err := EncodeLots(book); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
