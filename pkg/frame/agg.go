package frame

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/csvinsight/pkg/stats"
)

// NullCounts counts null cells of every column in one aggregation. Columns are
// scanned concurrently, at most parallelism at a time (<= 0 means unbounded).
func (f *Frame) NullCounts(ctx context.Context, parallelism int) ([]int, error) {
	out := make([]int, len(f.cols))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, c := range f.cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n := 0
			for r := 0; r < c.Len(); r++ {
				if c.IsNull(r) {
					n++
				}
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DistinctRows counts rows that differ in at least one column. Nulls compare
// equal to each other.
func (f *Frame) DistinctRows(ctx context.Context) (int, error) {
	seen := make(map[string]struct{}, f.nrows)
	var key []byte
	for r := 0; r < f.nrows; r++ {
		if r%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		key = key[:0]
		for _, c := range f.cols {
			key = c.appendKey(key, r)
		}
		seen[string(key)] = struct{}{}
	}
	return len(seen), nil
}

func (c *Vector[T]) appendKey(b []byte, i int) []byte {
	if c.nulls[i] {
		return append(b, 0)
	}
	b = append(b, 1)
	switch v := any(c.data[i]).(type) {
	case bool:
		if v {
			return append(b, 1)
		}
		return append(b, 0)
	case int64:
		return binary.LittleEndian.AppendUint64(b, uint64(v))
	case float64:
		return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	case string:
		b = binary.AppendUvarint(b, uint64(len(v)))
		return append(b, v...)
	case time.Time:
		return binary.LittleEndian.AppendUint64(b, uint64(v.UnixNano()))
	default:
		s := fmt.Sprint(v)
		b = binary.AppendUvarint(b, uint64(len(s)))
		return append(b, s...)
	}
}

// Floats returns the non-null values of a numeric column as float64.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	vals := make([]float64, 0, c.Len())
	switch col := c.(type) {
	case *FloatColumn:
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); ok && !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
	case *IntColumn:
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); ok {
				vals = append(vals, float64(v))
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s is %v", ErrNotNumeric, name, c.Kind())
	}
	return vals, nil
}

// Mean is the arithmetic mean of the non-null values. ok is false when the
// column holds no values.
func (f *Frame) Mean(name string) (mean float64, ok bool, err error) {
	vals, err := f.Floats(name)
	if err != nil {
		return 0, false, err
	}
	if len(vals) == 0 {
		return 0, false, nil
	}
	return stat.Mean(vals, nil), true, nil
}

// ApproxQuantile estimates the given quantiles of a numeric column with a
// Greenwald-Khanna summary. The rank of each answer is within
// relativeError*count of the exact rank.
func (f *Frame) ApproxQuantile(name string, probs []float64, relativeError float64) ([]float64, error) {
	if relativeError < 0 || relativeError >= 1 {
		return nil, fmt.Errorf("relative error must be in [0, 1), got %v", relativeError)
	}
	vals, err := f.Floats(name)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoValues, name)
	}
	s := stats.NewSummary(relativeError)
	for _, v := range vals {
		s.Insert(v)
	}
	out := make([]float64, len(probs))
	for i, p := range probs {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("quantile probability must be in [0, 1], got %v", p)
		}
		out[i], _ = s.Query(p)
	}
	return out, nil
}

// Mode returns the value of the largest GroupCount group, so nulls form one
// group and ties go to the value seen first. The value is nil when the null
// group wins.
func (f *Frame) Mode(name string) (any, error) {
	groups, err := f.GroupCount(name)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoValues, name)
	}
	return groups[0].Value, nil
}

// ValueCount is one group of GroupCount. Value is nil for the null group.
type ValueCount struct {
	Value any
	Count int
}

// GroupCount groups a column by value and returns the groups ordered by
// descending count. Groups with equal counts keep first-appearance order.
func (f *Frame) GroupCount(name string) ([]ValueCount, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	idx := make(map[string]int)
	var groups []ValueCount
	var key []byte
	for r := 0; r < c.Len(); r++ {
		key = c.appendKey(key[:0], r)
		if g, ok := idx[string(key)]; ok {
			groups[g].Count++
			continue
		}
		idx[string(key)] = len(groups)
		groups = append(groups, ValueCount{Value: c.Value(r), Count: 1})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	return groups, nil
}
