package holdings

import (
	"math"
	"testing"

	"github.com/jzelinka/holdings/date"
)

func TestSeriesAccumulateZeroFillsAndAndsMask(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	total := NewSeries(date.NewRange(d0, d0.Add(3)))

	part := NewSeries(date.NewRange(d0.Add(2), d0.Add(3)))
	part.base[0], part.price[0], part.mask[0] = 100, 110, false
	part.base[1], part.price[1], part.mask[1] = 100, 120, true

	total.Accumulate(part)

	for i, want := range []float64{0, 0, 100, 100} {
		if total.base[i] != want {
			t.Errorf("base[%d] = %v, want %v", i, total.base[i], want)
		}
	}
	// days the part does not cover stay vacuously true.
	for i, want := range []bool{true, true, false, true} {
		if total.mask[i] != want {
			t.Errorf("mask[%d] = %v, want %v", i, total.mask[i], want)
		}
	}
}

func TestSeriesCleanFlattensClosedTail(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	s := NewSeries(date.NewRange(d0, d0.Add(2)))
	s.base[0], s.price[0], s.growth[0] = 1000, 1500, 1.5
	// closed from day 1 on: residual float dust instead of exact zero.
	s.base[1], s.price[1], s.growth[1] = -500, 1e-9, -2e-12
	s.base[2], s.price[2], s.growth[2] = -500, 1e-9, -2e-12

	s.Clean()

	for i := 1; i <= 2; i++ {
		if s.base[i] != 0 || s.price[i] != 0 {
			t.Errorf("day %d Base/Price = %v/%v, want 0/0", i, s.base[i], s.price[i])
		}
		if s.growth[i] != 1.5 {
			t.Errorf("day %d Growth = %v, want 1.5 carried forward", i, s.growth[i])
		}
	}
	if s.price[0] != 1500 {
		t.Errorf("day 0 Price = %v, want untouched 1500", s.price[0])
	}
}

func TestSeriesWithZeroRow(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	s := NewSeries(date.NewRange(d0, d0.Add(1)))
	s.base[0], s.price[0], s.growth[0] = 1000, 1100, 1.1
	s.base[1], s.price[1], s.growth[1] = 1000, 1200, 1.2

	z := s.WithZeroRow()
	if got, want := z.Span().From, d0.Add(-1); got != want {
		t.Fatalf("Span().From = %s, want %s", got, want)
	}
	origin, _ := z.Row(d0.Add(-1))
	if origin.Base != 0 || origin.Price != 0 || origin.Growth != 1 || !origin.Mask {
		t.Errorf("origin = %+v, want zeros with growth 1 and mask true", origin)
	}
	moved, _ := z.Row(d0.Add(1))
	if moved.Price != 1200 || math.Abs(moved.Growth-1.2) > 1e-12 {
		t.Errorf("moved row = %+v, want original values preserved", moved)
	}
}

func TestSeriesRecomputeGrowthGuardsZeroBase(t *testing.T) {
	d0 := date.New(2025, 6, 1)
	s := NewSeries(date.NewRange(d0, d0.Add(2)))
	s.base[0], s.price[0] = 1000, 1500
	// base 0 on later days must not divide.
	s.base[1], s.price[1] = 0, 0
	s.base[2], s.price[2] = 0, 0

	s.RecomputeGrowth()
	if s.growth[0] != 1.5 {
		t.Errorf("growth[0] = %v, want 1.5", s.growth[0])
	}
	for i := 1; i <= 2; i++ {
		if s.growth[i] != 1.5 {
			t.Errorf("growth[%d] = %v, want 1.5 carried forward", i, s.growth[i])
		}
	}
}
