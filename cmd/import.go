package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/costbasis"
	"github.com/google/subcommands"
)

type importCmd struct {
	mapping costbasis.Mapping
	dryRun  bool
	force   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import purchase lots from a broker JSON export" }
func (*importCmd) Usage() string {
	return `cbs import [-lots <path>] [-symbol <path>|-default-symbol <symbol>] [...] <export.json>...

  Extracts purchase lots from broker JSON exports and merges them into the
  lots file, which is then rewritten in canonical order (by symbol, then date).

  Lots already in the lots file (same symbol, date, shares, price and fx) are
  skipped, so importing overlapping exports records each purchase once. Use
  -force to record them again.

  Every field is located with a JSONPath expression. -lots selects the list of
  purchase records in the document, the other paths are evaluated against a
  single record.

Usage Examples:
# An export where only buy orders are purchases, with day/month/year dates.
$ cbs import -lots '$.orders[?(@.side=="BUY")]' -date '$.when' -date-layout 02/01/2006 orders.json
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	d := costbasis.DefaultMapping
	f.StringVar(&p.mapping.Lots, "lots", d.Lots, "JSONPath of the list of purchase records.")
	f.StringVar(&p.mapping.Symbol, "symbol", d.Symbol, "JSONPath of the symbol in a record. Empty to use -default-symbol.")
	f.StringVar(&p.mapping.DefaultSymbol, "default-symbol", "", "Symbol of every record when -symbol is empty.")
	f.StringVar(&p.mapping.Date, "date", d.Date, "JSONPath of the purchase date in a record.")
	f.StringVar(&p.mapping.DateLayout, "date-layout", "", "Go time layout of dates that are neither ISO-8601 nor RFC3339.")
	f.StringVar(&p.mapping.Shares, "shares", d.Shares, "JSONPath of the number of shares in a record.")
	f.StringVar(&p.mapping.Price, "price", d.Price, "JSONPath of the USD price per share in a record.")
	f.StringVar(&p.mapping.FX, "fx", d.FX, "JSONPath of the GBP per USD exchange rate in a record.")
	f.BoolVar(&p.dryRun, "n", false, "Print the merged lots instead of writing the lots file.")
	f.BoolVar(&p.force, "force", false, "Record lots even if identical lots are already in the lots file.")
}

func (p *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one export file is required.")
		return subcommands.ExitUsageError
	}
	log := logger()

	book, err := DecodeLots()
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("file", lotsFile).Msg("lots file does not exist, it will be created")
		book, err = costbasis.NewLotBook(), nil
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	for _, name := range f.Args() {
		doc, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading export %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		imported, err := costbasis.ImportJSON(doc, p.mapping)
		if err != nil {
			fmt.Fprintf(stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		added, err := merge(ctx, book, imported, p.force)
		if err != nil {
			fmt.Fprintf(stderr, "Error merging %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		log.Info().Str("file", name).Int("lots", imported.Len()).Int("added", added).Msg("export imported")
	}

	if p.dryRun {
		if err := costbasis.EncodeLots(stdout, book); err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := EncodeLots(book); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully imported lots into %s (%d lots)\n", lotsFile, book.Len())
	return subcommands.ExitSuccess
}

// merge appends the lots of src into dst and returns how many were recorded.
// Lots already in dst are skipped unless force is set.
func merge(ctx context.Context, dst, src *costbasis.LotBook, force bool) (int, error) {
	symbols, err := src.Symbols(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, s := range symbols {
		lots, err := src.Lots(ctx, s)
		if err != nil {
			return added, err
		}
		if force {
			if err := dst.Append(s, lots...); err != nil {
				return added, err
			}
			added += len(lots)
			continue
		}
		n, err := dst.AppendNew(s, lots...)
		if err != nil {
			return added, err
		}
		added += n
	}
	return added, nil
}
