package holdings

import (
	"context"
	"fmt"
	"testing"

	"github.com/jzelinka/holdings/date"
)

// fixedToday pins the valuation horizon for the duration of a test.
func fixedToday(t *testing.T, day date.Date) {
	t.Helper()
	prev := today
	today = func() date.Date { return day }
	t.Cleanup(func() { today = prev })
}

// testAsset builds an asset quoted on consecutive days starting at 'first',
// one close per element. Bars are wide (half to double the close), so only
// deliberately wild prices trigger the range check.
func testAsset(ticker, currency string, first date.Date, closes ...float64) *Asset {
	var history date.History[Candle]
	for i, close := range closes {
		c := Candle{
			Open:  close,
			Low:   close * 0.5,
			High:  close * 2,
			Close: close,
		}
		if i > 0 {
			c.Return = close/closes[i-1] - 1
		}
		history.Append(first.Add(i), c)
	}
	return NewAsset(ticker, ticker+" test", currency, "XTST", &history)
}

// stubQuoter serves fixture assets and counts lookups.
type stubQuoter struct {
	assets map[string]*Asset
	calls  int
}

func (q *stubQuoter) Quote(_ context.Context, ticker string) (*Asset, error) {
	q.calls++
	a, ok := q.assets[ticker]
	if !ok {
		return nil, fmt.Errorf("unknown ticker %q", ticker)
	}
	return a, nil
}

// newTestMarket wraps fixture assets in a market.
func newTestMarket(assets ...*Asset) *Market {
	q := &stubQuoter{assets: make(map[string]*Asset)}
	for _, a := range assets {
		q.assets[a.Ticker()] = a
	}
	return NewMarket(q)
}

// rows flattens a series for comparison.
func rows(s *Series) []Row {
	var out []Row
	for _, r := range s.Rows() {
		out = append(out, r)
	}
	return out
}
