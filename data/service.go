// Package data serves market history to the simulator, caching provider
// fetches in the store and refreshing the cache only when it has gone stale.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/dripsim/market"
	"github.com/quantfold/dripsim/store"
	"github.com/rs/zerolog"
)

// DefaultFreshness is how long a cached history is served without asking the
// provider again.
const DefaultFreshness = time.Hour

// Provider fetches daily price and dividend history from a remote source.
type Provider interface {
	History(ctx context.Context, symbol string, from, to market.Date) (market.PriceSeries, market.DividendSeries, error)
}

// Service is the caching layer between a remote provider and the simulator.
type Service struct {
	Store     *store.SQLite
	Provider  Provider
	Log       zerolog.Logger
	Freshness time.Duration
}

// NewService wires a provider to a store with the default freshness window.
func NewService(s *store.SQLite, p Provider, log zerolog.Logger) *Service {
	return &Service{
		Store:     s,
		Provider:  p,
		Log:       log,
		Freshness: DefaultFreshness,
	}
}

// History returns the price and dividend history for ticker covering
// [from, to]. Cached data newer than the freshness window is served as is;
// otherwise the missing tail is fetched from the provider and cached first.
// force skips the freshness check and refetches the full range.
func (s *Service) History(ctx context.Context, ticker string, from, to market.Date, force bool) (market.PriceSeries, market.DividendSeries, error) {
	// the provider has nothing for days that have not traded yet
	yesterday := market.Today().AddDays(-1)
	if to.After(yesterday) {
		to = yesterday
	}
	if to.Before(from) {
		return nil, nil, fmt.Errorf("history range %s..%s is empty", from, to)
	}

	if !force {
		fresh, err := s.isFresh(ticker)
		if err != nil {
			return nil, nil, err
		}
		if fresh {
			s.Log.Debug().Str("ticker", ticker).Msg("serving cached history")
			return s.read(ticker, from, to)
		}
	}

	if err := s.refresh(ctx, ticker, from, to, force); err != nil {
		return nil, nil, err
	}
	return s.read(ticker, from, to)
}

// isFresh reports whether the ticker's cache was written recently enough to
// serve without asking the provider. The last cached bar is the most recent
// trading day, which normally trails the requested end, so freshness is
// judged by update time alone.
func (s *Service) isFresh(ticker string) (bool, error) {
	updated, ok, err := s.Store.LastUpdated(ticker)
	if err != nil {
		return false, err
	}
	return ok && time.Since(updated) < s.Freshness, nil
}

// refresh fetches the uncached tail (or the full range on force) and writes
// it through to the store.
func (s *Service) refresh(ctx context.Context, ticker string, from, to market.Date, force bool) error {
	fetchFrom := from
	if !force {
		if last, ok, err := s.Store.LastPriceDate(ticker); err != nil {
			return err
		} else if ok && !last.Before(from) {
			if !last.Before(to) {
				fetchFrom = to
			} else {
				fetchFrom = last.AddDays(1)
			}
		}
	}

	s.Log.Info().
		Str("ticker", ticker).
		Stringer("from", fetchFrom).
		Stringer("to", to).
		Bool("force", force).
		Msg("fetching history")

	bars, divs, err := s.Provider.History(ctx, ticker, fetchFrom, to)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ticker, err)
	}

	now := time.Now().UTC()
	if err := s.Store.SavePrices(ticker, bars, now); err != nil {
		return fmt.Errorf("cache prices for %s: %w", ticker, err)
	}
	if err := s.Store.SaveDividends(ticker, divs, now); err != nil {
		return fmt.Errorf("cache dividends for %s: %w", ticker, err)
	}

	s.Log.Debug().
		Str("ticker", ticker).
		Int("bars", len(bars)).
		Int("dividends", len(divs)).
		Msg("history cached")
	return nil
}

func (s *Service) read(ticker string, from, to market.Date) (market.PriceSeries, market.DividendSeries, error) {
	bars, err := s.Store.PriceSeries(ticker, from, to)
	if err != nil {
		return nil, nil, err
	}
	divs, err := s.Store.DividendSeries(ticker, from, to)
	if err != nil {
		return nil, nil, err
	}
	return bars, divs, nil
}
