// Package figi resolves ISINs to tradable tickers through the OpenFIGI
// mapping API. An ISIN plus a listing venue maps to the venue's exchange
// ticker, suffixed the way Yahoo quotes that venue.
package figi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/jzelinka/holdings"
)

const baseURL = "https://api.openfigi.com/v3/mapping"

// venueInfo ties a listing venue to its OpenFIGI exchange code and the
// ticker suffix Yahoo uses for it.
type venueInfo struct {
	figiCode    string
	yahooSuffix string
}

// venues maps MIC codes and common venue names. Venues quoting in the US
// need no suffix.
var venues = map[string]venueInfo{
	"XNAS":   {"UW", ""},
	"NASDAQ": {"UW", ""},
	"XNYS":   {"UN", ""},
	"NYSE":   {"UN", ""},
	"XLON":   {"LN", ".L"},
	"XPAR":   {"FP", ".PA"},
	"XAMS":   {"NA", ".AS"},
	"XETR":   {"GY", ".DE"},
	"XETRA":  {"GY", ".DE"},
	"XSWX":   {"SW", ".SW"},
	"XWAR":   {"PW", ".WA"},
	"XPRA":   {"CP", ".PR"},
	"XTSE":   {"CT", ".TO"},
}

// Resolver implements holdings.Resolver over OpenFIGI. Mapping responses are
// memoized per ISIN for the process lifetime. Without an API key OpenFIGI
// applies a low rate limit; set OPENFIGI_API_KEY to raise it.
type Resolver struct {
	client *http.Client
	apiKey string
	base   string

	mu    sync.Mutex
	cache map[string]map[string]string // isin -> exchCode -> ticker
}

var _ holdings.Resolver = (*Resolver)(nil)

// NewResolver returns a resolver using the OPENFIGI_API_KEY environment
// variable when present.
func NewResolver() *Resolver {
	return &Resolver{
		client: http.DefaultClient,
		apiKey: os.Getenv("OPENFIGI_API_KEY"),
		base:   baseURL,
		cache:  make(map[string]map[string]string),
	}
}

// mappingJob and mappingResult mirror the v3/mapping request and response.
type mappingJob struct {
	IDType  string `json:"idType"`
	IDValue string `json:"idValue"`
}

type mappingResult struct {
	Data []struct {
		Ticker   string `json:"ticker"`
		ExchCode string `json:"exchCode"`
	} `json:"data"`
	Error string `json:"error"`
}

// tickerMap fetches (or recalls) the exchange-code to ticker map of an ISIN.
func (r *Resolver) tickerMap(ctx context.Context, isin string) (map[string]string, error) {
	r.mu.Lock()
	m, ok := r.cache[isin]
	r.mu.Unlock()
	if ok {
		return m, nil
	}

	body, err := json.Marshal([]mappingJob{{IDType: "ID_ISIN", IDValue: isin}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-OPENFIGI-APIKEY", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfigi mapping %q: %s", isin, resp.Status)
	}

	var results []mappingResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("openfigi mapping %q: %w", isin, err)
	}

	m = make(map[string]string)
	for _, res := range results {
		if res.Error != "" {
			return nil, fmt.Errorf("openfigi mapping %q: %s", isin, res.Error)
		}
		for _, entry := range res.Data {
			if entry.ExchCode != "" && entry.Ticker != "" {
				m[entry.ExchCode] = entry.Ticker
			}
		}
	}

	r.mu.Lock()
	r.cache[isin] = m
	r.mu.Unlock()
	return m, nil
}

// Resolve maps an ISIN listed on 'venue' to the ticker Yahoo quotes it
// under. Identifiers that are not ISINs pass through unchanged.
func (r *Resolver) Resolve(ctx context.Context, identifier, venue string) (string, error) {
	if !holdings.IsISIN(identifier) {
		return identifier, nil
	}
	info, ok := venues[venue]
	if !ok {
		return "", fmt.Errorf("unknown venue %q for %q", venue, identifier)
	}
	m, err := r.tickerMap(ctx, identifier)
	if err != nil {
		return "", err
	}
	ticker, ok := m[info.figiCode]
	if !ok {
		return "", fmt.Errorf("no listing of %q on %q", identifier, venue)
	}
	return ticker + info.yahooSuffix, nil
}
