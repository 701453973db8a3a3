package yahoo

import (
	"math"
	"testing"
	"time"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

func day(d int) date.Date { return date.New(2025, time.June, d) }

func mkbar(d int, low, high, close float64) bar {
	return bar{day: day(d), candle: holdings.Candle{Open: close, Low: low, High: high, Close: close}}
}

func closes(bars []bar) []float64 {
	var out []float64
	for _, b := range bars {
		out = append(out, b.candle.Close)
	}
	return out
}

func TestDeleteOutliersDropsSpikeBlock(t *testing.T) {
	// 100, 100000, 100000, 101: the block between the spike and the crash
	// is corrupt provider data.
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(2, 90000, 110000, 100000),
		mkbar(3, 90000, 110000, 100000),
		mkbar(4, 95, 105, 101),
	}
	got := deleteOutliers(bars)
	want := []float64{100, 101}
	if len(got) != len(want) {
		t.Fatalf("kept %d bars, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].candle.Close != want[i] {
			t.Errorf("close[%d] = %v, want %v", i, got[i].candle.Close, want[i])
		}
	}
}

func TestDeleteOutliersKeepsOrdinaryVolatility(t *testing.T) {
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(2, 120, 160, 150), // +50%, plausible
		mkbar(3, 80, 120, 100),  // -33%, plausible
	}
	if got := deleteOutliers(bars); len(got) != 3 {
		t.Errorf("kept %d bars, want all 3", len(got))
	}
}

func TestDeleteDuplicatesCollapsesStaleCloses(t *testing.T) {
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(2, 95, 105, 100), // stale repeat
		mkbar(3, 96, 106, 101),
	}
	got := deleteDuplicates(bars)
	want := []float64{100, 101}
	gotCloses := closes(got)
	if len(gotCloses) != len(want) {
		t.Fatalf("closes = %v, want %v", gotCloses, want)
	}
	for i := range want {
		if gotCloses[i] != want[i] {
			t.Errorf("closes = %v, want %v", gotCloses, want)
			break
		}
	}
}

func TestDeleteFlatDropsLowEqualsHigh(t *testing.T) {
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(2, 101, 101, 101), // flat bar
		mkbar(3, 96, 106, 102),
	}
	got := deleteFlat(bars)
	if len(got) != 2 || got[1].candle.Close != 102 {
		t.Errorf("deleteFlat kept %v, want closes [100 102]", closes(got))
	}
}

func TestCloseInitialGap(t *testing.T) {
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(10, 96, 106, 101),
	}
	got := closeInitialGap(bars)
	if got[0].day != day(9) {
		t.Errorf("first day = %s, want %s", got[0].day, day(9))
	}
}

func TestNormalizeComputesReturns(t *testing.T) {
	bars := []bar{
		mkbar(1, 95, 105, 100),
		mkbar(2, 105, 115, 110),
		mkbar(3, 94, 104, 99),
	}
	got := normalize(bars)
	if len(got) != 3 {
		t.Fatalf("kept %d bars, want 3", len(got))
	}
	wantReturns := []float64{0, 0.1, -0.1}
	for i, want := range wantReturns {
		if math.Abs(got[i].candle.Return-want) > 1e-9 {
			t.Errorf("Return[%d] = %v, want %v", i, got[i].candle.Return, want)
		}
	}
}
