package holdings

import (
	"context"
	"sort"

	"github.com/jzelinka/holdings/date"
)

// Position is one asset's full ledger: its ordered transactions, the running
// held quantity and the derived daily valuation table. Transactions enter
// only through NewTransaction, which is not safe for concurrent use on the
// same position.
type Position struct {
	asset  *Asset
	policy RangePolicy

	txs  []*Transaction
	held Quantity

	native *Series // lazily aggregated, in the asset's currency
}

// NewPosition returns an empty position over 'asset'.
func NewPosition(asset *Asset, policy RangePolicy) *Position {
	return &Position{asset: asset, policy: policy}
}

func (p *Position) Asset() *Asset    { return p.asset }
func (p *Position) Ticker() string   { return p.asset.Ticker() }
func (p *Position) Currency() string { return p.asset.Currency() }
func (p *Position) Held() Quantity   { return p.held }

// FirstDate returns the date of the earliest transaction.
func (p *Position) FirstDate() date.Date {
	if len(p.txs) == 0 {
		return date.Date{}
	}
	return p.txs[0].Date()
}

// Transactions returns the ledger events in chronological order.
func (p *Position) Transactions() []*Transaction { return p.txs }

// NewTransaction records a ledger event. 'requested' is a number of units for
// whole-unit events and a monetary amount for value-based ones; 'price' is
// the optional execution price of a whole-unit event. Over-sells are clamped
// to a full close. The aggregated table is invalidated.
func (p *Position) NewTransaction(k Kind, day date.Date, requested Quantity, price Money) (*Transaction, error) {
	t, err := newTransaction(p.asset, k, day, requested, price, p.held, p.policy)
	if err != nil {
		return nil, err
	}
	p.txs = append(p.txs, t)
	// Chronological order with insertion order breaking date ties, so FIFO
	// replay consumes same-day lots in the order they were recorded.
	sort.SliceStable(p.txs, func(i, j int) bool { return p.txs[i].Date().Before(p.txs[j].Date()) })
	p.held = p.held.Add(t.Amount())
	p.native = nil
	return t, nil
}

// Realized returns the profit locked in by sold lots, per FIFO matching, in
// the asset's currency.
func (p *Position) Realized() Money {
	realized, _ := replay(p.txs)
	return M(realized.Decimal(), p.asset.Currency())
}

// BreakEven returns the weighted-average remaining cost per held unit.
func (p *Position) BreakEven() Money {
	_, open := replay(p.txs)
	return M(breakEven(open).Decimal(), p.asset.Currency())
}

// aggregate sums the transactions' series into the position table in the
// asset's native currency. Base and Price add with zero fill, the mask ANDs
// with vacuous truth before a transaction starts, and Profit is recomputed
// as Price minus Base to keep the columns consistent.
func (p *Position) aggregate() *Series {
	if p.native != nil {
		return p.native
	}
	span := date.NewRange(p.FirstDate(), today())
	s := NewSeries(span)
	for _, t := range p.txs {
		s.Accumulate(t.Series())
	}
	s.RecomputeProfit()
	s.RecomputeGrowth()
	p.native = s
	return s
}

// Valuation returns the position's daily table converted to 'ccy' and
// cleaned of post-closure artifacts. The native aggregate is cached and
// never mutated, so repeated calls with any currency give identical results.
//
// Cost basis converts per transaction at the rate of that transaction's own
// date; market value converts at each day's rate. The mask picks up the FX
// series' own validity. Missing exchange data is a hard error.
func (p *Position) Valuation(ctx context.Context, fx *Converter, ccy string) (*Series, error) {
	native := p.aggregate()
	if ccy == "" || ccy == p.Currency() {
		c := native.Clone()
		c.Clean()
		return c, nil
	}

	rates, genuine, err := fx.RateSeries(ctx, p.Currency(), ccy, native.Span())
	if err != nil {
		return nil, err
	}

	s := NewSeries(native.Span())
	for _, t := range p.txs {
		txBase := t.Price().Mul(t.Amount()).AsFloat() * rates[s.span.Index(t.Date())]
		for i := s.span.Index(t.Date()); i < s.Len(); i++ {
			s.base[i] += txBase
		}
	}
	for i := range s.price {
		s.price[i] = native.price[i] * rates[i]
		s.mask[i] = native.mask[i] && genuine[i]
	}
	s.RecomputeProfit()
	s.RecomputeGrowth()
	s.Clean()
	return s, nil
}

// PositionValue is a read-only snapshot of a position's latest state.
type PositionValue struct {
	Ticker    string
	Name      string
	Currency  string
	Held      Quantity
	Value     Money   // market value on the latest day
	Profit    Money   // total profit, realized plus unrealized
	Realized  Money   // profit locked in by sold lots
	Growth    Percent // cumulative growth since entry
	BreakEven Money
	LastClose Money
	AsOf      date.Date
}

// LastValue snapshots the position as of the latest day of its valuation,
// in 'ccy'. For a fully closed position the realized figure falls back to the
// total profit, since nothing unrealized remains.
func (p *Position) LastValue(ctx context.Context, fx *Converter, ccy string) (PositionValue, error) {
	s, err := p.Valuation(ctx, fx, ccy)
	if err != nil {
		return PositionValue{}, err
	}
	day, row := s.Last()

	realized := p.Realized()
	if ccy != "" && ccy != p.Currency() {
		rate, err := fx.SpotRate(ctx, p.Currency(), ccy, today())
		if err != nil {
			return PositionValue{}, err
		}
		realized = M(realized.AsFloat()*rate, ccy)
	}
	if !p.held.IsPositive() {
		realized = M(row.Profit, realized.Currency())
	}

	_, close := p.asset.LastClose()
	return PositionValue{
		Ticker:    p.Ticker(),
		Name:      p.asset.Name(),
		Currency:  realized.Currency(),
		Held:      p.held,
		Value:     M(row.Price, realized.Currency()),
		Profit:    M(row.Profit, realized.Currency()),
		Realized:  realized,
		Growth:    Percent((row.Growth - 1) * 100),
		BreakEven: p.BreakEven(),
		LastClose: M(close, p.Currency()),
		AsOf:      day,
	}, nil
}
