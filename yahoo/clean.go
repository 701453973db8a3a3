package yahoo

import (
	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

// bar is one raw quote day before it enters the candle history.
type bar struct {
	day    date.Date
	candle holdings.Candle
}

// growthThreshold and fallThreshold bound plausible one-day moves. A day
// gaining more than +100% followed later by a day losing more than 50% is
// treated as one corrupt block of provider data.
const (
	growthThreshold = 1.0
	fallThreshold   = -0.5
)

// deleteOutliers removes corrupt blocks: each spike above growthThreshold is
// paired with the next crash below fallThreshold, and the bars from the spike
// up to the day before the crash are dropped. The crash day itself survives,
// back at the pre-spike level.
func deleteOutliers(bars []bar) []bar {
	var spikes, crashes []int
	for i := 1; i < len(bars); i++ {
		r := bars[i].candle.Close/bars[i-1].candle.Close - 1
		switch {
		case r > growthThreshold:
			spikes = append(spikes, i)
		case r < fallThreshold:
			crashes = append(crashes, i)
		}
	}
	if len(spikes) == 0 || len(crashes) == 0 {
		return bars
	}
	drop := make(map[int]bool)
	for i, start := range spikes {
		if i >= len(crashes) {
			break
		}
		for j := start; j < crashes[i]; j++ {
			drop[j] = true
		}
	}
	out := bars[:0]
	for i, b := range bars {
		if !drop[i] {
			out = append(out, b)
		}
	}
	return out
}

// deleteDuplicates drops bars whose close repeats the previous bar's close,
// a stale fill some venues report on untraded days.
func deleteDuplicates(bars []bar) []bar {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.candle.Close == bars[i-1].candle.Close {
			continue
		}
		out = append(out, b)
	}
	return out
}

// deleteFlat drops bars where Low equals High, the signature of synthetic or
// erroneous data.
func deleteFlat(bars []bar) []bar {
	out := bars[:0]
	for _, b := range bars {
		if b.candle.Low == b.candle.High {
			continue
		}
		out = append(out, b)
	}
	return out
}

// closeInitialGap moves the first bar to the day before the second, so the
// filtered history starts without a leading hole.
func closeInitialGap(bars []bar) []bar {
	if len(bars) >= 2 {
		bars[0].day = bars[1].day.Add(-1)
	}
	return bars
}

// normalize runs the full cleaning pipeline and computes the daily return
// column against the previous surviving close. The earliest bar keeps a zero
// return.
func normalize(bars []bar) []bar {
	bars = deleteOutliers(bars)
	bars = deleteDuplicates(bars)
	bars = deleteFlat(bars)
	bars = closeInitialGap(bars)
	for i := range bars {
		if i == 0 {
			bars[i].candle.Return = 0
			continue
		}
		bars[i].candle.Return = bars[i].candle.Close/bars[i-1].candle.Close - 1
	}
	return bars
}
