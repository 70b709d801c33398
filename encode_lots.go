package costbasis

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/costbasis/date"
	"github.com/shopspring/decimal"
)

// This file persists lots and market data as JSONL, one record per line, so
// that files remain human-readable and git-friendly.
//
//	{"symbol":"VUSA","date":"2024-01-10","shares":"10","price":"85.12","fx":"0.7861"}
//	{"symbol":"VUSA","price":"101.5","fx":"0.7912"}
//
// Numbers are written as strings to keep every digit; plain JSON numbers are accepted on read.

// jlot is the JSONL record of a lot.
type jlot struct {
	Symbol string          `json:"symbol"`
	Date   date.Date       `json:"date"`
	Shares decimal.Decimal `json:"shares"`
	Price  decimal.Decimal `json:"price"` // USD per share
	FX     decimal.Decimal `json:"fx"`    // GBP per USD
}

// jmarket is the JSONL record of market data.
type jmarket struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	FX     decimal.Decimal `json:"fx"`
}

// decodeLines calls fn for every non blank line, with its 1-based line number.
func decodeLines(r io.Reader, fn func(i int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(i, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DecodeLots reads a JSONL stream of lots. Errors report the offending line number.
func DecodeLots(r io.Reader) (*LotBook, error) {
	book := NewLotBook()
	err := decodeLines(r, func(i int, line []byte) error {
		var jl jlot
		if err := json.Unmarshal(line, &jl); err != nil {
			return fmt.Errorf("format error on line %d %q: %w", i, string(line), err)
		}
		l := Lot{Date: jl.Date, Shares: Q(jl.Shares), PriceUSD: M(jl.Price, USD), FXRate: FX(jl.FX)}
		if err := book.Append(jl.Symbol, l); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// EncodeLots writes the book in its canonical form: symbols sorted, and lots
// sorted by date within a symbol.
func EncodeLots(w io.Writer, book LotSource) error {
	ctx := context.Background()
	symbols, err := book.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("could not list symbols: %w", err)
	}
	slices.Sort(symbols)
	enc := json.NewEncoder(w)
	for _, symbol := range symbols {
		lots, err := book.Lots(ctx, symbol)
		if err != nil {
			return err
		}
		slices.SortStableFunc(lots, func(a, b Lot) int { return date.DaysBetween(b.Date, a.Date) })
		for _, l := range lots {
			jl := jlot{
				Symbol: symbol,
				Date:   l.Date,
				Shares: l.Shares.value,
				Price:  l.PriceUSD.value,
				FX:     l.FXRate.value,
			}
			if err := enc.Encode(jl); err != nil {
				return fmt.Errorf("could not encode lot %v: %w", l, err)
			}
		}
	}
	return nil
}

// DecodeMarket reads a JSONL stream of market data. A later line for the same
// symbol replaces an earlier one.
func DecodeMarket(r io.Reader) (*MarketBook, error) {
	book := NewMarketBook()
	err := decodeLines(r, func(i int, line []byte) error {
		var jm jmarket
		if err := json.Unmarshal(line, &jm); err != nil {
			return fmt.Errorf("format error on line %d %q: %w", i, string(line), err)
		}
		if jm.Symbol == "" {
			return fmt.Errorf("line %d: missing symbol", i)
		}
		if err := book.Set(jm.Symbol, Market{PriceUSD: M(jm.Price, USD), FXRate: FX(jm.FX)}); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}
