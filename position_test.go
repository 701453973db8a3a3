package holdings

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jzelinka/holdings/date"
)

func TestPositionFIFOPartialSell(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	a := testAsset("AAA", "USD", d0, 100, 200, 300)
	pos := NewPosition(a, ClampRescale)

	steps := []struct {
		day      date.Date
		quantity float64
		price    float64
	}{
		{d0, 10, 100},
		{d0.Add(1), 10, 200},
		{d0.Add(2), -5, 300},
	}
	for _, s := range steps {
		if _, err := pos.NewTransaction(WholeUnit, s.day, Q(s.quantity), M(s.price, "USD")); err != nil {
			t.Fatal(err)
		}
	}

	if !pos.Held().Equal(Q(15)) {
		t.Errorf("Held() = %s, want 15", pos.Held())
	}
	if realized := pos.Realized(); !realized.Equal(M(1000, "USD")) {
		t.Errorf("Realized() = %s, want 1000 USD", realized)
	}
	// remaining lots 5@100 and 10@200: (500+2000)/15.
	if bep := pos.BreakEven().AsFloat(); math.Abs(bep-166.6666666666667) > 1e-9 {
		t.Errorf("BreakEven() = %v, want 166.667", bep)
	}
}

func TestPositionOverSellNeverGoesShort(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(1))
	a := testAsset("AAA", "USD", d0, 100, 150)
	pos := NewPosition(a, ClampRescale)

	if _, err := pos.NewTransaction(WholeUnit, d0, Q(10), M(100, "USD")); err != nil {
		t.Fatal(err)
	}
	if _, err := pos.NewTransaction(WholeUnit, d0.Add(1), Q(-15), M(150, "USD")); err != nil {
		t.Fatal(err)
	}

	if !pos.Held().IsZero() {
		t.Errorf("Held() = %s, want 0", pos.Held())
	}
	if realized := pos.Realized(); !realized.Equal(M(500, "USD")) {
		t.Errorf("Realized() = %s, want 500 USD", realized)
	}
}

func TestPositionFullCloseAndReopen(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	a := testAsset("AAA", "USD", d0, 100, 150, 200)
	pos := NewPosition(a, ClampRescale)

	for _, s := range []struct {
		day      date.Date
		quantity float64
		price    float64
	}{
		{d0, 10, 100},
		{d0.Add(1), -10, 150},
		{d0.Add(2), 5, 200},
	} {
		if _, err := pos.NewTransaction(WholeUnit, s.day, Q(s.quantity), M(s.price, "USD")); err != nil {
			t.Fatal(err)
		}
	}

	if !pos.Held().Equal(Q(5)) {
		t.Errorf("Held() = %s, want 5", pos.Held())
	}
	if realized := pos.Realized(); !realized.Equal(M(500, "USD")) {
		t.Errorf("Realized() = %s, want 500 USD carried over the round trip", realized)
	}
	if bep := pos.BreakEven(); !bep.Equal(M(200, "USD")) {
		t.Errorf("BreakEven() = %s, want 200 USD", bep)
	}

	s, err := pos.Valuation(context.Background(), nil, "USD")
	if err != nil {
		t.Fatal(err)
	}
	// closed on day 1: cleaned to a flat zero before the reopen.
	if row, _ := s.Row(d0.Add(1)); row.Base != 0 || row.Price != 0 {
		t.Errorf("closed day Base/Price = %v/%v, want 0/0", row.Base, row.Price)
	}
	if _, row := s.Last(); math.Abs(row.Price-1000) > 1e-9 || math.Abs(row.Profit-500) > 1e-9 {
		t.Errorf("last Price/Profit = %v/%v, want 1000/500", row.Price, row.Profit)
	}
}

func TestPositionAggregateInvariant(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	a := testAsset("AAA", "USD", d0, 100, 200, 300)
	pos := NewPosition(a, ClampRescale)
	for _, s := range []struct {
		day      date.Date
		quantity float64
		price    float64
	}{
		{d0, 10, 100},
		{d0.Add(1), 10, 200},
		{d0.Add(2), -5, 300},
	} {
		if _, err := pos.NewTransaction(WholeUnit, s.day, Q(s.quantity), M(s.price, "USD")); err != nil {
			t.Fatal(err)
		}
	}

	s, err := pos.Valuation(context.Background(), nil, "USD")
	if err != nil {
		t.Fatal(err)
	}
	for day, row := range s.Rows() {
		if math.Abs(row.Price-row.Base-row.Profit) > 1e-9 {
			t.Errorf("on %s: Price %v != Base %v + Profit %v", day, row.Price, row.Base, row.Profit)
		}
	}
	if _, row := s.Last(); math.Abs(row.Price-4500) > 1e-9 {
		t.Errorf("last Price = %v, want 4500 (15 units at 300)", row.Price)
	}
}

func TestPositionValuationIdempotent(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	usd := testAsset("AAA", "USD", d0, 100, 110, 120)
	fx := testAsset("USDEUR=X", "EUR", d0, 0.9, 0.9, 0.8)
	conv := NewConverter(newTestMarket(usd, fx))

	pos := NewPosition(usd, ClampRescale)
	if _, err := pos.NewTransaction(WholeUnit, d0, Q(10), M(100, "USD")); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, ccy := range []string{"EUR", "USD", "EUR"} {
		s1, err := pos.Valuation(ctx, conv, ccy)
		if err != nil {
			t.Fatal(err)
		}
		s2, err := pos.Valuation(ctx, conv, ccy)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rows(s1), rows(s2)); diff != "" {
			t.Errorf("Valuation(%s) not idempotent (-first +second):\n%s", ccy, diff)
		}
	}
}

func TestPositionCurrencyRebasing(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	usd := testAsset("AAA", "USD", d0, 100, 100, 120)
	// rate moves after the purchase: basis stays at the historical rate,
	// market value follows the current one.
	fx := testAsset("USDEUR=X", "EUR", d0, 0.9, 0.9, 0.8)
	conv := NewConverter(newTestMarket(usd, fx))

	pos := NewPosition(usd, ClampRescale)
	if _, err := pos.NewTransaction(WholeUnit, d0, Q(10), M(100, "USD")); err != nil {
		t.Fatal(err)
	}

	s, err := pos.Valuation(context.Background(), conv, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	for day := range s.Span().Days() {
		row, _ := s.Row(day)
		if math.Abs(row.Base-900) > 1e-9 {
			t.Errorf("Base[%s] = %v, want 900 at the acquisition rate", day, row.Base)
		}
	}
	_, last := s.Last()
	// 10 units at 120 USD, at the current 0.8 rate.
	if math.Abs(last.Price-960) > 1e-9 {
		t.Errorf("last Price = %v, want 960", last.Price)
	}
	if math.Abs(last.Profit-60) > 1e-9 {
		t.Errorf("last Profit = %v, want 60", last.Profit)
	}
}

func TestPositionForeignPriceCurrencyFallsBackToAsset(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(1))
	a := testAsset("AAA", "USD", d0, 100, 150)
	pos := NewPosition(a, ClampRescale)

	// a mistagged EUR price on a USD asset is kept as a USD amount, so FIFO
	// replay never mixes currencies.
	tx, err := pos.NewTransaction(WholeUnit, d0, Q(10), M(100, "EUR"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tx.Price().Currency(); got != "USD" {
		t.Errorf("Price().Currency() = %q, want USD", got)
	}
	if _, err := pos.NewTransaction(WholeUnit, d0.Add(1), Q(-5), M(150, "USD")); err != nil {
		t.Fatal(err)
	}
	if realized := pos.Realized(); !realized.Equal(M(250, "USD")) {
		t.Errorf("Realized() = %s, want 250 USD", realized)
	}
}

func TestPositionLastValue(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	fixedToday(t, d0.Add(2))
	a := testAsset("AAA", "USD", d0, 100, 200, 300)
	pos := NewPosition(a, ClampRescale)
	for _, s := range []struct {
		day      date.Date
		quantity float64
		price    float64
	}{
		{d0, 10, 100},
		{d0.Add(2), -5, 300},
	} {
		if _, err := pos.NewTransaction(WholeUnit, s.day, Q(s.quantity), M(s.price, "USD")); err != nil {
			t.Fatal(err)
		}
	}

	v, err := pos.LastValue(context.Background(), nil, "USD")
	if err != nil {
		t.Fatal(err)
	}
	if v.Ticker != "AAA" || !v.Held.Equal(Q(5)) {
		t.Errorf("LastValue = %+v, want ticker AAA held 5", v)
	}
	if math.Abs(v.Value.AsFloat()-1500) > 1e-9 {
		t.Errorf("Value = %s, want 1500 (5 units at 300)", v.Value)
	}
	if !v.Realized.Equal(M(1000, "USD")) {
		t.Errorf("Realized = %s, want 1000 USD", v.Realized)
	}
	if !v.LastClose.Equal(M(300, "USD")) {
		t.Errorf("LastClose = %s, want 300 USD", v.LastClose)
	}
}
