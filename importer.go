package costbasis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/costbasis/date"
	"github.com/shopspring/decimal"
)

// Mapping describes where purchase records live in a broker JSON export.
//
// Lots selects the list of purchase records in the document. Every other
// path is evaluated against a single record.
type Mapping struct {
	Lots   string // e.g. `$.orders[?(@.side=="BUY")]`
	Symbol string // e.g. `$.ticker`; empty when the whole export is for one symbol
	Date   string
	Shares string
	Price  string // USD per share
	FX     string // GBP per USD

	// DefaultSymbol is used when Symbol is empty.
	DefaultSymbol string
	// DateLayout parses dates that are neither "2006-01-02" nor RFC3339.
	DateLayout string
}

// DefaultMapping matches exports shaped like:
//
//	{"purchases":[{"symbol":"VUSA","executedAt":"2024-01-10T09:30:00Z","quantity":10,"priceUsd":85.1,"fxRate":0.79}]}
var DefaultMapping = Mapping{
	Lots:   "$.purchases[*]",
	Symbol: "$.symbol",
	Date:   "$.executedAt",
	Shares: "$.quantity",
	Price:  "$.priceUsd",
	FX:     "$.fxRate",
}

// ImportJSON extracts lots from a broker JSON export into a new LotBook.
func ImportJSON(doc []byte, m Mapping) (*LotBook, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber() // keep every digit of prices and rates
	var jdoc any
	if err := dec.Decode(&jdoc); err != nil {
		return nil, fmt.Errorf("invalid json document: %w", err)
	}

	jrecords, err := jsonpath.Get(m.Lots, jdoc)
	if err != nil {
		return nil, fmt.Errorf("error selecting lots with %q: %w", m.Lots, err)
	}
	records, ok := jrecords.([]any)
	if !ok {
		// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer
		records = []any{jrecords}
	}

	book := NewLotBook()
	for i, rec := range records {
		symbol, l, err := m.lot(rec)
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", i, err)
		}
		if err := book.Append(symbol, l); err != nil {
			return nil, fmt.Errorf("record #%d: %w", i, err)
		}
	}
	return book, nil
}

// lot extracts a single lot from a record.
func (m Mapping) lot(rec any) (symbol string, l Lot, err error) {
	symbol = m.DefaultSymbol
	if m.Symbol != "" {
		if symbol, err = getString(m.Symbol, rec); err != nil {
			return
		}
	}
	raw, err := getString(m.Date, rec)
	if err != nil {
		return
	}
	if l.Date, err = m.parseDate(raw); err != nil {
		return
	}
	shares, err := getDecimal(m.Shares, rec)
	if err != nil {
		return
	}
	price, err := getDecimal(m.Price, rec)
	if err != nil {
		return
	}
	fx, err := getDecimal(m.FX, rec)
	if err != nil {
		return
	}
	l.Shares, l.PriceUSD, l.FXRate = Q(shares), M(price, USD), FX(fx)
	return
}

func (m Mapping) parseDate(raw string) (date.Date, error) {
	if d, err := date.Parse(raw); err == nil {
		return d, nil
	}
	layouts := []string{time.RFC3339}
	if m.DateLayout != "" {
		layouts = append([]string{m.DateLayout}, layouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return date.FromTime(t), nil
		}
	}
	return date.Date{}, fmt.Errorf("unsupported date %q", raw)
}

// get evaluates path on a record, unwrapping single element results.
func get(path string, rec any) (any, error) {
	v, err := jsonpath.Get(path, rec)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	if list, ok := v.([]any); ok {
		if len(list) != 1 {
			return nil, fmt.Errorf("%q: want a single value, got %d", path, len(list))
		}
		v = list[0]
	}
	return v, nil
}

func getString(path string, rec any) (string, error) {
	v, err := get(path, rec)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%q: want a string, got %T", path, v)
	}
}

func getDecimal(path string, rec any) (decimal.Decimal, error) {
	v, err := get(path, rec)
	if err != nil {
		return decimal.Zero, err
	}
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case string:
		s = n
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Zero, fmt.Errorf("%q: want a number, got %T", path, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", path, err)
	}
	return d, nil
}
