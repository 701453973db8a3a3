package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

const baseURL = "https://query1.finance.yahoo.com"

// Service fetches daily histories from the Yahoo chart API. It satisfies
// holdings.Quoter; wrap it in a holdings.Market for per-process memoization.
type Service struct {
	client *http.Client
	base   string
}

var _ holdings.Quoter = (*Service)(nil)

// NewService returns a service with a daily disk cache behind it.
func NewService() *Service {
	return &Service{client: newCachingClient(), base: baseURL}
}

// chartPayload is the part of the chart response read with typed decoding.
// Quote columns contain nulls on half-days and halts, hence the pointers.
type chartPayload struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// jstr extracts a string by jsonpath, returning "" when the path is absent.
func jstr(jobj any, path string) string {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return ""
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, _ := jval.(string)
	return s
}

// Quote downloads and normalizes the full daily history of 'ticker'.
func (s *Service) Quote(ctx context.Context, ticker string) (*holdings.Asset, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=max&interval=1d", s.base, url.PathEscape(ticker))
	body, err := wget(ctx, s.client, addr)
	if err != nil {
		return nil, fmt.Errorf("chart for %q: %w", ticker, err)
	}

	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("chart for %q: %w", ticker, err)
	}
	if e := payload.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart for %q: %s: %s", ticker, e.Code, e.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart for %q: empty result", ticker)
	}
	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	// Meta fields vary by instrument type; jsonpath tolerates the holes.
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, err
	}
	currency := jstr(jobj, "$.chart.result[0].meta.currency")
	venue := jstr(jobj, "$.chart.result[0].meta.fullExchangeName")
	name := jstr(jobj, "$.chart.result[0].meta.shortName")
	if name == "" {
		name = ticker
	}

	deref := func(col []*float64, i int) float64 {
		if i < len(col) && col[i] != nil {
			return *col[i]
		}
		return 0
	}
	var bars []bar
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bars = append(bars, bar{
			day: date.FromTime(time.Unix(ts, 0).UTC()),
			candle: holdings.Candle{
				Open:  deref(quote.Open, i),
				High:  deref(quote.High, i),
				Low:   deref(quote.Low, i),
				Close: *quote.Close[i],
			},
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].day.Before(bars[j].day) })
	bars = normalize(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("chart for %q: no usable quotes after cleaning", ticker)
	}

	var history date.History[holdings.Candle]
	for _, b := range bars {
		history.Append(b.day, b.candle)
	}
	return holdings.NewAsset(ticker, name, currency, venue, &history), nil
}
