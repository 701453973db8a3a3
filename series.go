package holdings

import (
	"iter"
	"math"

	"github.com/jzelinka/holdings/date"
)

// closedEps is the market value below which a position counts as closed.
const closedEps = 1e-4

// Row is one day of a valuation series.
//
// Base is the cost basis, Price the market value, Profit their difference
// plus any realized gains baked into Price upstream, Growth the cumulative
// multiplier since entry. Mask is false on days where some underlying quote
// had to be filled rather than observed.
type Row struct {
	Base   float64
	Price  float64
	Profit float64
	Growth float64
	Mask   bool
}

// Series is a dense per-day valuation table anchored at a first date. Every
// column holds one value per calendar day of the span, weekends included.
type Series struct {
	span   date.Range
	base   []float64
	price  []float64
	profit []float64
	growth []float64
	mask   []bool
}

// NewSeries returns a zeroed series over 'span'. The mask starts all true;
// days only become untrustworthy when a contribution marks them so.
func NewSeries(span date.Range) *Series {
	n := span.Len()
	s := &Series{
		span:   span,
		base:   make([]float64, n),
		price:  make([]float64, n),
		profit: make([]float64, n),
		growth: make([]float64, n),
		mask:   make([]bool, n),
	}
	for i := range s.mask {
		s.mask[i] = true
	}
	return s
}

func (s *Series) Span() date.Range { return s.span }
func (s *Series) Len() int         { return s.span.Len() }

// Row returns the row for 'day', reporting false outside the span.
func (s *Series) Row(day date.Date) (Row, bool) {
	if !s.span.Contains(day) {
		return Row{}, false
	}
	i := s.span.Index(day)
	return Row{s.base[i], s.price[i], s.profit[i], s.growth[i], s.mask[i]}, true
}

// Last returns the final day and row of the series.
func (s *Series) Last() (date.Date, Row) {
	r, _ := s.Row(s.span.To)
	return s.span.To, r
}

// Rows iterates the series in chronological order.
func (s *Series) Rows() iter.Seq2[date.Date, Row] {
	return func(yield func(date.Date, Row) bool) {
		for day := range s.span.Days() {
			r, _ := s.Row(day)
			if !yield(day, r) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (s *Series) Clone() *Series {
	c := &Series{
		span:   s.span,
		base:   append([]float64(nil), s.base...),
		price:  append([]float64(nil), s.price...),
		profit: append([]float64(nil), s.profit...),
		growth: append([]float64(nil), s.growth...),
		mask:   append([]bool(nil), s.mask...),
	}
	return c
}

// Accumulate adds the Base and Price columns of 'other' into s and ANDs the
// masks. Days of s that 'other' does not cover are left untouched: values get
// a zero contribution and the mask a vacuous true. 'other' must not span days
// outside s.
func (s *Series) Accumulate(other *Series) {
	for day := range other.span.Days() {
		if !s.span.Contains(day) {
			continue
		}
		i, j := s.span.Index(day), other.span.Index(day)
		s.base[i] += other.base[j]
		s.price[i] += other.price[j]
		s.mask[i] = s.mask[i] && other.mask[j]
	}
}

// RecomputeProfit sets Profit = Price - Base on every day, so aggregation
// cannot let the three columns drift apart.
func (s *Series) RecomputeProfit() {
	for i := range s.profit {
		s.profit[i] = s.price[i] - s.base[i]
	}
}

// RecomputeGrowth sets Growth = Price/Base. Days with a zero basis carry the
// previous day's growth forward, starting from 1.
func (s *Series) RecomputeGrowth() {
	prev := 1.0
	for i := range s.growth {
		if math.Abs(s.base[i]) < closedEps {
			s.growth[i] = prev
		} else {
			s.growth[i] = s.price[i] / s.base[i]
		}
		prev = s.growth[i]
	}
}

// Clean flattens the tail of a closed position. On days where the market
// value is effectively zero, Base and Price are zeroed exactly and Growth
// carries the last defined value forward, keeping charts flat instead of
// producing division artifacts.
func (s *Series) Clean() {
	prev := 1.0
	for i := range s.price {
		if math.Abs(s.price[i]) < closedEps {
			s.base[i] = 0
			s.price[i] = 0
			s.growth[i] = prev
		}
		prev = s.growth[i]
	}
}

// WithZeroRow returns a copy extended one day before the span with a
// synthetic origin row: everything zero, Growth 1, Mask true. Charts and
// performance math get a well-defined starting point from it.
func (s *Series) WithZeroRow() *Series {
	span := date.Range{From: s.span.From.Add(-1), To: s.span.To}
	c := NewSeries(span)
	c.growth[0] = 1
	for day := range s.span.Days() {
		i, j := span.Index(day), s.span.Index(day)
		c.base[i] = s.base[j]
		c.price[i] = s.price[j]
		c.profit[i] = s.profit[j]
		c.growth[i] = s.growth[j]
		c.mask[i] = s.mask[j]
	}
	return c
}
