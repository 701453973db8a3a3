package holdings

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Quoter provides assets by ticker. Implementations fetch candle histories
// from a price repository (see the yahoo package) or serve fixtures in tests.
type Quoter interface {
	Quote(ctx context.Context, ticker string) (*Asset, error)
}

// Market is a memoizing front over a Quoter. It guarantees identity: two
// lookups of the same ticker return the same *Asset, so positions sharing an
// instrument share its history.
type Market struct {
	quoter Quoter

	mu     sync.Mutex
	assets map[string]*Asset
}

// NewMarket returns a market backed by q.
func NewMarket(q Quoter) *Market {
	return &Market{quoter: q, assets: make(map[string]*Asset)}
}

// Get returns the asset for 'ticker', fetching it on first use.
func (m *Market) Get(ctx context.Context, ticker string) (*Asset, error) {
	m.mu.Lock()
	a, ok := m.assets[ticker]
	m.mu.Unlock()
	if ok {
		return a, nil
	}

	a, err := m.quoter.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quoting %q: %w", ticker, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.assets[ticker]; ok {
		return prev, nil
	}
	m.assets[ticker] = a
	return a, nil
}

// Prefetch resolves all tickers concurrently and caches the results. It
// returns the combined errors of the failed lookups; assets that did resolve
// remain cached and usable.
func (m *Market) Prefetch(ctx context.Context, tickers ...string) error {
	var g errgroup.Group
	g.SetLimit(8)

	var mu sync.Mutex
	var errs error
	for _, t := range tickers {
		g.Go(func() error {
			if _, err := m.Get(ctx, t); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errs
}
