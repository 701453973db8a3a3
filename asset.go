package holdings

import (
	"github.com/jzelinka/holdings/date"
)

// Candle is one day of quoted prices for an asset.
//
// Return is the fractional change of Close against the previous genuine
// record (Close[d]/Close[prev] - 1). It is zero on the earliest record,
// where no previous close exists.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Return float64
}

// Asset represents a priced instrument: a stock, ETF, crypto coin or a
// currency pair. Its candle history holds genuine quotes only; the price
// repository is expected to have cleaned outliers, duplicates and flat bars
// before the asset is handed to the engine. Assets are never mutated by the
// ledger.
type Asset struct {
	ticker   string
	name     string
	currency string
	venue    string // MIC or provider exchange code, may be empty
	candles  date.History[Candle]
}

// NewAsset creates an asset from its descriptive fields and candle history.
func NewAsset(ticker, name, currency, venue string, candles *date.History[Candle]) *Asset {
	a := &Asset{ticker: ticker, name: name, currency: currency, venue: venue}
	if candles != nil {
		a.candles = *candles
	}
	return a
}

func (a *Asset) Ticker() string   { return a.ticker }
func (a *Asset) Name() string     { return a.name }
func (a *Asset) Currency() string { return a.currency }
func (a *Asset) Venue() string    { return a.venue }

// EarliestRecordDate returns the date of the first genuine quote.
func (a *Asset) EarliestRecordDate() date.Date {
	day, _ := a.candles.First()
	return day
}

// Candles returns the asset's quote history.
func (a *Asset) Candles() *date.History[Candle] { return &a.candles }

// Genuine reports whether the asset has a genuine quote on 'day'.
func (a *Asset) Genuine(day date.Date) bool { return a.candles.Has(day) }

// Return returns the daily fractional return on 'day' and whether the day
// had a genuine quote.
func (a *Asset) Return(day date.Date) (float64, bool) {
	c, ok := a.candles.Get(day)
	if !ok {
		return 0, false
	}
	return c.Return, true
}

// CandleAsOf returns the candle on 'day' or the most recent one before it.
// When 'day' precedes the earliest record it returns the earliest candle and
// false, so callers can warn about the data gap.
func (a *Asset) CandleAsOf(day date.Date) (Candle, bool) {
	if c, ok := a.candles.ValueAsOf(day); ok {
		return c, true
	}
	_, first := a.candles.First()
	return first, false
}

// CloseAsOf returns the closing price on 'day' or the most recent close
// before it, falling back to the earliest known close for pre-history days.
func (a *Asset) CloseAsOf(day date.Date) (float64, bool) {
	c, ok := a.CandleAsOf(day)
	return c.Close, ok
}

// LastClose returns the date and closing price of the latest genuine quote.
func (a *Asset) LastClose() (date.Date, float64) {
	day, c := a.candles.Latest()
	return day, c.Close
}
