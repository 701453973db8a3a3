package holdings

import (
	"errors"
	"fmt"

	"github.com/jzelinka/holdings/date"
)

// today is replaceable in tests that need a fixed valuation horizon.
var today = date.Today

// Kind selects how a ledger event's quantity is interpreted.
type Kind int

const (
	// WholeUnit events carry an explicit number of units, with an optional
	// execution price.
	WholeUnit Kind = iota
	// ValueBased events carry a monetary amount instead; the quantity is
	// derived from that day's closing price.
	ValueBased
)

func (k Kind) String() string {
	switch k {
	case WholeUnit:
		return "whole-unit"
	case ValueBased:
		return "value-based"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RangePolicy decides what to do with an execution price outside the day's
// trading range.
type RangePolicy int

const (
	// ClampRescale clamps the price to the nearest bound and rescales the
	// quantity so the total consideration is preserved.
	ClampRescale RangePolicy = iota
	// Reject refuses the transaction with ErrPriceOutOfRange.
	Reject
)

// ErrPriceOutOfRange is returned under the Reject policy when a supplied
// execution price falls outside the day's low/high range.
var ErrPriceOutOfRange = errors.New("execution price outside the day's trading range")

// Transaction is one immutable ledger event with its derived daily valuation
// series from the execution date to today.
type Transaction struct {
	asset  *Asset
	day    date.Date
	amount Quantity // signed, positive buys
	price  Money    // resolved unit price
	series *Series
}

func (t *Transaction) Date() date.Date  { return t.day }
func (t *Transaction) Amount() Quantity { return t.amount }
func (t *Transaction) Price() Money     { return t.price }

// Series returns the transaction's daily valuation table.
func (t *Transaction) Series() *Series { return t.series }

// resolveOrder turns the user's requested figure into a signed quantity plus
// unit price, per kind. For whole-unit events a zero price means "use the
// close at or before the date". Value-based events always trade at that
// close.
func resolveOrder(a *Asset, k Kind, day date.Date, requested Quantity, price Money) (Quantity, Money) {
	switch k {
	case ValueBased:
		close, ok := a.CloseAsOf(day)
		if !ok {
			logger.Warn().Str("ticker", a.Ticker()).Stringer("date", day).
				Msg("no quote at or before date, using earliest close")
		}
		unit := M(close, a.Currency())
		return M(requested.Decimal(), a.Currency()).DivPrice(unit), unit
	default:
		if !price.IsZero() {
			return requested, price
		}
		close, ok := a.CloseAsOf(day)
		if !ok {
			logger.Warn().Str("ticker", a.Ticker()).Stringer("date", day).
				Msg("no quote at or before date, using earliest close")
		}
		return requested, M(close, a.Currency())
	}
}

// checkRange validates a supplied price against the day's candle under the
// given policy. Under ClampRescale the price moves to the nearest bound and
// the quantity is rescaled so amount x price is unchanged.
func checkRange(a *Asset, day date.Date, amount Quantity, price Money, policy RangePolicy) (Quantity, Money, error) {
	c, ok := a.CandleAsOf(day)
	if !ok || (c.Low == 0 && c.High == 0) {
		return amount, price, nil
	}
	p := price.AsFloat()
	if p >= c.Low && p <= c.High {
		return amount, price, nil
	}
	if policy == Reject {
		return amount, price, fmt.Errorf("%w: %v not in [%v, %v] on %s",
			ErrPriceOutOfRange, p, c.Low, c.High, day)
	}
	bound := c.Low
	if p > c.High {
		bound = c.High
	}
	clamped := M(bound, price.Currency())
	total := price.Mul(amount)
	rescaled := total.DivPrice(clamped)
	logger.Warn().Str("ticker", a.Ticker()).Stringer("date", day).
		Float64("price", p).Float64("clamped", bound).
		Msg("price outside day's range, clamped and quantity rescaled")
	return rescaled, clamped, nil
}

// newTransaction builds a validated transaction and synthesizes its daily
// series. 'held' is the quantity currently held, used to clamp over-sells to
// a full close.
func newTransaction(a *Asset, k Kind, day date.Date, requested Quantity, price Money, held Quantity, policy RangePolicy) (*Transaction, error) {
	if c := price.Currency(); c != "" && c != a.Currency() {
		logger.Warn().Str("ticker", a.Ticker()).Stringer("date", day).
			Str("price_currency", c).Str("asset_currency", a.Currency()).
			Msg("price currency differs from the asset's, keeping the amount in the asset currency")
		price = M(price.Decimal(), a.Currency())
	}
	userPrice := k == WholeUnit && !price.IsZero()
	amount, unit := resolveOrder(a, k, day, requested, price)

	if userPrice {
		var err error
		amount, unit, err = checkRange(a, day, amount, unit, policy)
		if err != nil {
			return nil, err
		}
	}

	if held.Add(amount).IsNegative() {
		logger.Warn().Str("ticker", a.Ticker()).Stringer("date", day).
			Stringer("requested", amount).Stringer("held", held).
			Msg("selling more than held, clamping to full close")
		amount = held.Neg()
	}

	t := &Transaction{asset: a, day: day, amount: amount, price: unit}
	t.series = t.synthesize()
	return t, nil
}

// synthesize builds the valuation table over [date, today].
//
// The growth column compounds the asset's daily returns, with missing days
// contributing a flat 1.0 multiplier. Day zero instead carries the intraday
// factor (close - execution price)/execution price + 1, so a fill away from
// the close is absorbed immediately. A transaction predating the quote
// history computes that factor against the earliest close and treats the gap
// days as flat warm-up.
func (t *Transaction) synthesize() *Series {
	span := date.NewRange(t.day, today())
	s := NewSeries(span)

	base := t.price.Mul(t.amount).AsFloat()
	exec := t.price.AsFloat()
	close0, _ := t.asset.CloseAsOf(t.day)

	growth := 1.0
	if exec != 0 {
		growth = (close0-exec)/exec + 1
	}
	for day := range span.Days() {
		i := span.Index(day)
		if i > 0 {
			if r, ok := t.asset.Return(day); ok {
				growth *= 1 + r
			}
		}
		s.base[i] = base
		s.growth[i] = growth
		s.profit[i] = base * (growth - 1)
		s.price[i] = base + s.profit[i]
		s.mask[i] = t.asset.Genuine(day)
	}
	return s
}
