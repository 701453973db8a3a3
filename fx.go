package holdings

import (
	"context"
	"fmt"

	"github.com/jzelinka/holdings/date"
)

// fxTicker is the quote symbol of a currency pair, like "USDEUR=X".
func fxTicker(from, to string) string { return from + to + "=X" }

// Converter turns amounts of one currency into another using daily exchange
// rates quoted as ordinary assets.
type Converter struct {
	market *Market
}

// NewConverter returns a converter reading pair quotes from 'market'.
func NewConverter(market *Market) *Converter {
	return &Converter{market: market}
}

// pair fetches the exchange-rate asset for from/to.
func (c *Converter) pair(ctx context.Context, from, to string) (*Asset, error) {
	a, err := c.market.Get(ctx, fxTicker(from, to))
	if err != nil {
		return nil, fmt.Errorf("no exchange data for %s/%s: %w", from, to, err)
	}
	if a.Candles().Len() == 0 {
		return nil, fmt.Errorf("no exchange data for %s/%s: empty history", from, to)
	}
	return a, nil
}

// SpotRate returns the from/to rate on 'day', using the most recent quote at
// or before it. Days before the first quote get the earliest known rate.
func (c *Converter) SpotRate(ctx context.Context, from, to string, day date.Date) (float64, error) {
	if from == to {
		return 1, nil
	}
	a, err := c.pair(ctx, from, to)
	if err != nil {
		return 0, err
	}
	rate, _ := a.CloseAsOf(day)
	return rate, nil
}

// RateSeries returns one rate per day of 'span' along with a mask marking the
// days that had a genuine quote. Gaps are carried forward from the last quote;
// days before the first quote are filled backward from it.
func (c *Converter) RateSeries(ctx context.Context, from, to string, span date.Range) (rates []float64, genuine []bool, err error) {
	n := span.Len()
	rates = make([]float64, n)
	genuine = make([]bool, n)
	if from == to {
		for i := range rates {
			rates[i] = 1
			genuine[i] = true
		}
		return rates, genuine, nil
	}
	a, err := c.pair(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	for day := range span.Days() {
		i := span.Index(day)
		rates[i], _ = a.CloseAsOf(day)
		genuine[i] = a.Genuine(day)
	}
	return rates, genuine, nil
}
