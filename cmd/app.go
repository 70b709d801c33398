// Package cmd implements the CLI application to report the cost basis of holdings.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	lotsFile    = "lots.jsonl"
	marketFile  = "market.jsonl"
	snapshotDB  = "snapshots.db"
	logLevel    = "info"
	parallelism = 0
	raw         = false

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Register the subcommands and the global flags, using cfg for the flag defaults.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander, cfg *config.Config) {
	lotsFile = cfg.LotsFile
	marketFile = cfg.MarketFile
	snapshotDB = cfg.SnapshotDB
	logLevel = cfg.LogLevel
	parallelism = cfg.Parallelism

	flag.StringVar(&lotsFile, "lots-file", lotsFile, "Path to the lots file (JSONL format)")
	flag.StringVar(&marketFile, "market-file", marketFile, "Path to the market data file (JSONL format)")
	flag.StringVar(&snapshotDB, "snapshot-db", snapshotDB, "Path to the snapshot database")
	flag.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	flag.BoolVar(&raw, "raw", raw, "Print markdown as is, without terminal rendering")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&importCmd{}, "lots")
	c.Register(&fmtCmd{}, "lots")

	c.Register(&snapshotCmd{}, "audit")

	c.Register(&topicCmd{}, "help")
}

// logger returns the console logger for the configured level.
func logger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

// DecodeLots decodes the lots of the app lots file.
func DecodeLots() (*costbasis.LotBook, error) {
	f, err := os.Open(lotsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open lots file %q: %w", lotsFile, err)
	}
	defer f.Close()
	book, err := costbasis.DecodeLots(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode lots file %q: %w", lotsFile, err)
	}
	return book, nil
}

// DecodeMarket decodes the app market file. A missing file is an empty market.
func DecodeMarket() (*costbasis.MarketBook, error) {
	f, err := os.Open(marketFile)
	if errors.Is(err, fs.ErrNotExist) {
		log := logger()
		log.Warn().Str("file", marketFile).Msg("market file does not exist, using an empty market")
		return costbasis.NewMarketBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open market file %q: %w", marketFile, err)
	}
	defer f.Close()
	book, err := costbasis.DecodeMarket(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode market file %q: %w", marketFile, err)
	}
	return book, nil
}

// EncodeLots writes book into the app lots file, in canonical order.
func EncodeLots(book *costbasis.LotBook) error {
	f, err := os.Create(lotsFile)
	if err != nil {
		return fmt.Errorf("could not create lots file %q: %w", lotsFile, err)
	}
	if err := costbasis.EncodeLots(f, book); err != nil {
		f.Close()
		return fmt.Errorf("could not write lots file %q: %w", lotsFile, err)
	}
	return f.Close()
}

// newService builds a service on the app lots and market files.
func newService() (*costbasis.Service, error) {
	lots, err := DecodeLots()
	if err != nil {
		return nil, err
	}
	market, err := DecodeMarket()
	if err != nil {
		return nil, err
	}
	s := costbasis.NewService(lots, market, logger())
	s.Parallelism = parallelism
	return s, nil
}

// printMarkdown prints md to stdout, rendered for the terminal unless -raw is set.
func printMarkdown(md string) {
	if raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	log := logger()
	log.Debug().Err(err).Msg("terminal rendering failed, printing raw markdown")
	fmt.Fprint(stdout, md)
}
