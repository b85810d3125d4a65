// Package stats holds streaming summaries used by the frame aggregates.
package stats

import (
	"math"
	"sort"
)

const (
	headSize          = 50000
	compressThreshold = 10000
)

type tuple struct {
	value float64
	g     int64 // rank gap to the previous tuple
	delta int64 // rank uncertainty
}

// Summary is a Greenwald-Khanna quantile summary. A query for quantile q
// returns a value whose rank is within relativeError*Count() of q*Count().
// Inserts are buffered and merged in sorted batches.
type Summary struct {
	relativeError float64
	samples       []tuple
	head          []float64
	count         int64
}

func NewSummary(relativeError float64) *Summary {
	return &Summary{relativeError: relativeError, head: make([]float64, 0, 64)}
}

func (s *Summary) Insert(x float64) {
	s.head = append(s.head, x)
	if len(s.head) >= headSize {
		s.flush()
		if len(s.samples) >= compressThreshold {
			s.compress()
		}
	}
}

// Count is the number of inserted values.
func (s *Summary) Count() int64 { return s.count + int64(len(s.head)) }

func (s *Summary) flush() {
	if len(s.head) == 0 {
		return
	}
	sort.Float64s(s.head)
	merged := make([]tuple, 0, len(s.samples)+len(s.head))
	si := 0
	cur := s.count
	for hi, x := range s.head {
		for si < len(s.samples) && s.samples[si].value <= x {
			merged = append(merged, s.samples[si])
			si++
		}
		cur++
		var delta int64
		if len(merged) > 0 && !(si == len(s.samples) && hi == len(s.head)-1) {
			delta = int64(math.Floor(2 * s.relativeError * float64(cur)))
		}
		merged = append(merged, tuple{value: x, g: 1, delta: delta})
	}
	merged = append(merged, s.samples[si:]...)
	s.samples = merged
	s.count = cur
	s.head = s.head[:0]
}

// compress merges neighbouring tuples whose combined band stays under
// 2*relativeError*count. The first and last tuples are always kept.
func (s *Summary) compress() {
	s.flush()
	if len(s.samples) <= 2 {
		return
	}
	threshold := int64(math.Floor(2 * s.relativeError * float64(s.count)))
	out := make([]tuple, 0, len(s.samples))
	head := s.samples[len(s.samples)-1]
	for i := len(s.samples) - 2; i >= 1; i-- {
		t := s.samples[i]
		if t.g+head.g+head.delta < threshold {
			head.g += t.g
			continue
		}
		out = append(out, head)
		head = t
	}
	out = append(out, head, s.samples[0])
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.samples = out
}

// Query returns the estimated q-quantile, ok is false when nothing was inserted.
func (s *Summary) Query(q float64) (float64, bool) {
	s.compress()
	if len(s.samples) == 0 {
		return 0, false
	}
	last := s.samples[len(s.samples)-1].value
	if q <= s.relativeError {
		return s.samples[0].value, true
	}
	if q >= 1-s.relativeError {
		return last, true
	}
	rank := math.Ceil(q * float64(s.count))
	var widest int64
	for _, t := range s.samples {
		if w := t.g + t.delta; w > widest {
			widest = w
		}
	}
	targetError := float64(widest) / 2
	var minRank int64
	for _, t := range s.samples[:len(s.samples)-1] {
		minRank += t.g
		maxRank := minRank + t.delta
		if float64(maxRank)-targetError <= rank && rank <= float64(minRank)+targetError {
			return t.value, true
		}
	}
	return last, true
}
