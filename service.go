package costbasis

import (
	"context"
	"fmt"

	"github.com/etnz/costbasis/date"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LotSource provides the full purchase history of securities.
type LotSource interface {
	Symbols(ctx context.Context) ([]string, error)
	Lots(ctx context.Context, symbol string) ([]Lot, error)
}

// MarketSource provides current market data.
type MarketSource interface {
	Market(ctx context.Context, symbol string) (Market, error)
}

// Service computes cost basis summaries from a lot source and a market source.
//
// Any error fetching lots or market data is returned to the caller; the
// computation itself cannot fail.
type Service struct {
	lots   LotSource
	market MarketSource
	log    zerolog.Logger

	// Parallelism bounds SummarizeAll. Zero or less means unbounded.
	Parallelism int
}

// NewService creates a new Service. market may be nil when only historical
// summaries are needed.
func NewService(lots LotSource, market MarketSource, log zerolog.Logger) *Service {
	return &Service{
		lots:   lots,
		market: market,
		log:    log.With().Str("component", "costbasis").Logger(),
	}
}

// GetCostBasis returns the historical summary of symbol as of the given day.
func (s *Service) GetCostBasis(ctx context.Context, symbol string, asOf date.Date) (Summary, error) {
	lots, err := s.lots.Lots(ctx, symbol)
	if err != nil {
		return Summary{}, fmt.Errorf("could not get lots for %q: %w", symbol, err)
	}
	summary := Summarize(symbol, lots, asOf, nil)
	s.log.Debug().
		Str("symbol", symbol).
		Stringer("asOf", asOf).
		Int("lots", summary.LotCount()).
		Stringer("shares", summary.TotalShares).
		Msg("cost basis computed")
	return summary, nil
}

// AttachCurrentMarketData returns summary priced with the current market data of its symbol.
func (s *Service) AttachCurrentMarketData(ctx context.Context, summary Summary) (Summary, error) {
	if s.market == nil {
		return Summary{}, fmt.Errorf("no market source to price %q", summary.Symbol)
	}
	m, err := s.market.Market(ctx, summary.Symbol)
	if err != nil {
		return Summary{}, fmt.Errorf("could not get market data for %q: %w", summary.Symbol, err)
	}
	return AttachMarketData(summary, m), nil
}

// GetPricedCostBasis is GetCostBasis followed by AttachCurrentMarketData.
func (s *Service) GetPricedCostBasis(ctx context.Context, symbol string, asOf date.Date) (Summary, error) {
	summary, err := s.GetCostBasis(ctx, symbol, asOf)
	if err != nil {
		return Summary{}, err
	}
	return s.AttachCurrentMarketData(ctx, summary)
}

// SummarizeAll computes the summaries of every symbol of the lot source, in
// parallel, and returns them in the lot source's symbol order. When priced is
// true each summary is marked to market.
func (s *Service) SummarizeAll(ctx context.Context, asOf date.Date, priced bool) ([]Summary, error) {
	symbols, err := s.lots.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list symbols: %w", err)
	}

	summaries := make([]Summary, len(symbols))
	g, ctx := errgroup.WithContext(ctx)
	if s.Parallelism > 0 {
		g.SetLimit(s.Parallelism)
	}
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			get := s.GetCostBasis
			if priced {
				get = s.GetPricedCostBasis
			}
			summary, err := get(ctx, symbol, asOf)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Info().Int("symbols", len(symbols)).Stringer("asOf", asOf).Bool("priced", priced).Msg("summaries computed")
	return summaries, nil
}
