package costbasis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownSymbol is returned by sources that have no data for a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// LotBook is an in-memory collection of lots, grouped by symbol.
//
// Lots can only be appended. A LotBook is safe for concurrent use.
type LotBook struct {
	mu      sync.RWMutex
	symbols []string // in order of first appearance
	lots    map[string][]Lot
}

// NewLotBook returns an empty LotBook.
func NewLotBook() *LotBook {
	return &LotBook{lots: make(map[string][]Lot)}
}

// Append records new lots for symbol. Lots are validated first, nothing is
// recorded if one of them is invalid.
func (b *LotBook) Append(symbol string, lots ...Lot) error {
	if symbol == "" {
		return errors.New("missing symbol")
	}
	for _, l := range lots {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("symbol %q: %w", symbol, err)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.lots[symbol]; !exists {
		b.symbols = append(b.symbols, symbol)
	}
	b.lots[symbol] = append(b.lots[symbol], lots...)
	return nil
}

// AppendNew is like Append but skips the lots already recorded for symbol,
// so that appending the same purchases twice records them once.
//
// Lots are matched one to one: two identical purchases already in the book
// absorb at most two identical incoming lots. It returns the number of lots
// actually recorded.
func (b *LotBook) AppendNew(symbol string, lots ...Lot) (int, error) {
	if symbol == "" {
		return 0, errors.New("missing symbol")
	}
	for _, l := range lots {
		if err := l.Validate(); err != nil {
			return 0, fmt.Errorf("symbol %q: %w", symbol, err)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	existing := b.lots[symbol]
	matched := make([]bool, len(existing))
	var fresh []Lot
	for _, l := range lots {
		dup := false
		for i, e := range existing {
			if !matched[i] && e.Equal(l) {
				matched[i], dup = true, true
				break
			}
		}
		if !dup {
			fresh = append(fresh, l)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if _, exists := b.lots[symbol]; !exists {
		b.symbols = append(b.symbols, symbol)
	}
	b.lots[symbol] = append(b.lots[symbol], fresh...)
	return len(fresh), nil
}

// Len returns the total number of lots in the book.
func (b *LotBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, l := range b.lots {
		n += len(l)
	}
	return n
}

// Symbols returns the symbols with at least one lot, sorted.
func (b *LotBook) Symbols(context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	symbols := slices.Clone(b.symbols)
	slices.Sort(symbols)
	return symbols, nil
}

// Lots returns a copy of the lots recorded for symbol, in insertion order.
func (b *LotBook) Lots(_ context.Context, symbol string) ([]Lot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lots, ok := b.lots[symbol]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSymbol, symbol)
	}
	return slices.Clone(lots), nil
}

// MarketBook holds the latest market data per symbol. It is safe for concurrent use.
type MarketBook struct {
	mu     sync.RWMutex
	market map[string]Market
}

// NewMarketBook returns an empty MarketBook.
func NewMarketBook() *MarketBook {
	return &MarketBook{market: make(map[string]Market)}
}

// Set records the market data of symbol, replacing any previous value.
func (b *MarketBook) Set(symbol string, m Market) error {
	if m.PriceUSD.Currency() != USD {
		return fmt.Errorf("symbol %q: price must be in %s, got %q", symbol, USD, m.PriceUSD.Currency())
	}
	if !m.FXRate.IsPositive() {
		return fmt.Errorf("symbol %q: fx rate must be positive, got %v", symbol, m.FXRate)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.market[symbol] = m
	return nil
}

// Market returns the market data of symbol.
func (b *MarketBook) Market(_ context.Context, symbol string) (Market, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.market[symbol]
	if !ok {
		return Market{}, fmt.Errorf("no market data: %w %q", ErrUnknownSymbol, symbol)
	}
	return m, nil
}

var _ LotSource = (*LotBook)(nil)
var _ MarketSource = (*MarketBook)(nil)
