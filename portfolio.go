package holdings

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jzelinka/holdings/date"
)

// Portfolio is a named collection of positions valued in one base currency.
// One position exists per resolved ticker; recording a transaction for an
// unseen ticker creates its position.
type Portfolio struct {
	name     string
	currency string
	policy   RangePolicy

	market   *Market
	fx       *Converter
	resolver Resolver

	positions map[string]*Position
}

// NewPortfolio returns an empty portfolio valued in 'currency'. The resolver
// may be nil, in which case identifiers are used as tickers directly.
func NewPortfolio(name, currency string, market *Market, resolver Resolver, policy RangePolicy) *Portfolio {
	if resolver == nil {
		resolver = PassthroughResolver{}
	}
	return &Portfolio{
		name:      name,
		currency:  currency,
		policy:    policy,
		market:    market,
		fx:        NewConverter(market),
		resolver:  resolver,
		positions: make(map[string]*Position),
	}
}

func (p *Portfolio) Name() string     { return p.name }
func (p *Portfolio) Currency() string { return p.currency }

// ChangeCurrency re-bases future valuations to 'currency'. Positions keep
// their native tables; only the conversion target changes.
func (p *Portfolio) ChangeCurrency(currency string) { p.currency = currency }

// Positions returns the held positions sorted by ticker.
func (p *Portfolio) Positions() []*Position {
	tickers := make([]string, 0, len(p.positions))
	for t := range p.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	out := make([]*Position, len(tickers))
	for i, t := range tickers {
		out[i] = p.positions[t]
	}
	return out
}

// Position returns the position for 'ticker', or nil.
func (p *Portfolio) Position(ticker string) *Position { return p.positions[ticker] }

// resolveTicker maps identifier+venue to a ticker. Lookup failures fall back
// to the identifier unchanged with a warning.
func (p *Portfolio) resolveTicker(ctx context.Context, identifier, venue string) string {
	ticker, err := p.resolver.Resolve(ctx, identifier, venue)
	if err != nil {
		logger.Warn().Str("identifier", identifier).Str("venue", venue).Err(err).
			Msg("symbol resolution failed, using identifier as ticker")
		return identifier
	}
	return ticker
}

// NewTransaction records a ledger event against the asset identified by
// 'identifier' and 'venue', creating the position on first use.
func (p *Portfolio) NewTransaction(ctx context.Context, identifier, venue string, k Kind, day date.Date, requested Quantity, price Money) (*Transaction, error) {
	ticker := p.resolveTicker(ctx, identifier, venue)
	pos, ok := p.positions[ticker]
	if !ok {
		asset, err := p.market.Get(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("opening position %q: %w", ticker, err)
		}
		pos = NewPosition(asset, p.policy)
	}
	t, err := pos.NewTransaction(k, day, requested, price)
	if err != nil {
		return nil, err
	}
	// A new position joins the portfolio only once its first transaction is
	// accepted, so a rejected event cannot leave an empty position behind.
	p.positions[ticker] = pos
	return t, nil
}

// Valuation returns one position's daily table converted to the portfolio
// currency.
func (p *Portfolio) Valuation(ctx context.Context, ticker string) (*Series, error) {
	pos, ok := p.positions[ticker]
	if !ok {
		return nil, fmt.Errorf("no position for ticker %q", ticker)
	}
	return pos.Valuation(ctx, p.fx, p.currency)
}

// anchor returns the earliest first-transaction date across positions.
func (p *Portfolio) anchor() date.Date {
	var a date.Date
	for _, pos := range p.positions {
		first := pos.FirstDate()
		if first.IsZero() {
			continue
		}
		if a.IsZero() || first.Before(a) {
			a = first
		}
	}
	return a
}

// Evaluate aggregates all position valuations, converted to the portfolio
// currency, into one daily table from the anchor date to today. A synthetic
// origin row one day before the anchor carries zero value and growth 1, so
// charts and performance math start from a defined point. Evaluation is
// idempotent; it never mutates the positions.
func (p *Portfolio) Evaluate(ctx context.Context) (*Series, error) {
	a := p.anchor()
	if a.IsZero() {
		return nil, fmt.Errorf("portfolio %q has no transactions", p.name)
	}
	s := NewSeries(date.NewRange(a, today()))
	for _, pos := range p.Positions() {
		v, err := pos.Valuation(ctx, p.fx, p.currency)
		if err != nil {
			return nil, fmt.Errorf("valuing %q: %w", pos.Ticker(), err)
		}
		s.Accumulate(v)
	}
	s.RecomputeProfit()
	s.RecomputeGrowth()
	return s.WithZeroRow(), nil
}

// PerformancePA returns the annualized growth rate since the anchor date:
// totalGrowth^(365.25/elapsedDays) - 1, as a percentage. It is zero when no
// time has elapsed.
func (p *Portfolio) PerformancePA(ctx context.Context) (Percent, error) {
	s, err := p.Evaluate(ctx)
	if err != nil {
		return 0, err
	}
	_, last := s.Last()
	days := today().Sub(p.anchor())
	if days <= 0 || last.Growth <= 0 {
		return 0, nil
	}
	rate := math.Pow(last.Growth, 365.25/float64(days)) - 1
	return Percent(rate * 100), nil
}

// LastValues snapshots every position in the portfolio currency, sorted by
// ticker.
func (p *Portfolio) LastValues(ctx context.Context) ([]PositionValue, error) {
	out := make([]PositionValue, 0, len(p.positions))
	for _, pos := range p.Positions() {
		v, err := pos.LastValue(ctx, p.fx, p.currency)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
