package frame

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

func peopleFrame() *Frame {
	s := Schema{Columns: []ColumnSchema{
		{Name: "x", Type: KindInt, Nullable: true},
		{Name: "s", Type: KindString, Nullable: true},
		{Name: "f", Type: KindFloat, Nullable: true},
	}}
	f := NewFrame(s)
	rows := [][]any{
		{int64(1), "a", 1.5},
		{int64(2), nil, nil},
		{int64(1), "a", 1.5},
		{nil, nil, nil},
		{nil, nil, nil},
		{int64(3), "b", 2.5},
	}
	for r, row := range rows {
		f.AppendNullRow()
		for c, v := range row {
			_ = f.SetCell(r, s.Columns[c].Name, v)
		}
	}
	return f
}

func TestNullCountsAndDistinct(t *testing.T) {
	f := peopleFrame()
	for _, par := range []int{0, 1} {
		counts, err := f.NullCounts(context.Background(), par)
		if err != nil {
			t.Fatal(err)
		}
		want := []int{2, 3, 3}
		for i := range want {
			if counts[i] != want[i] {
				t.Fatalf("parallelism %d column %d: expected %d nulls, got %d", par, i, want[i], counts[i])
			}
		}
	}
	d, err := f.DistinctRows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// rows 0/2 and the two all-null rows collapse
	if d != 4 {
		t.Fatalf("expected 4 distinct rows, got %d", d)
	}
}

func TestDistinctRowsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := peopleFrame().DistinctRows(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMeanAndQuantile(t *testing.T) {
	f := peopleFrame()
	m, ok, err := f.Mean("x")
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	if m != 7.0/4 {
		t.Fatalf("expected mean 1.75, got %v", m)
	}
	q, err := f.ApproxQuantile("f", []float64{0.5}, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	if q[0] != 1.5 {
		t.Fatalf("expected median 1.5, got %v", q[0])
	}
	if _, err := f.ApproxQuantile("s", []float64{0.5}, 0.001); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
	if _, err := f.ApproxQuantile("nope", []float64{0.5}, 0.001); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if _, err := f.ApproxQuantile("x", []float64{0.5}, 1.5); err == nil {
		t.Fatal("expected relative error validation")
	}
}

func TestAllNullColumn(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{{Name: "v", Type: KindFloat, Nullable: true}}})
	f.AppendNullRow()
	f.AppendNullRow()
	if _, ok, err := f.Mean("v"); err != nil || ok {
		t.Fatalf("expected no mean, got ok=%v err=%v", ok, err)
	}
	if _, err := f.ApproxQuantile("v", []float64{0.5}, 0.001); !errors.Is(err, ErrNoValues) {
		t.Fatalf("expected ErrNoValues, got %v", err)
	}
	if v, err := f.Mode("v"); err != nil || v != nil {
		t.Fatalf("expected null mode, got %v (%v)", v, err)
	}
}

func TestModeAndGroupCount(t *testing.T) {
	f := peopleFrame()
	groups, err := f.GroupCount("x")
	if err != nil {
		t.Fatal(err)
	}
	// 1 and null both appear twice; 1 comes first
	if len(groups) != 4 || groups[0].Value != int64(1) || groups[0].Count != 2 || groups[1].Value != nil {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if v, _ := f.Mode("x"); v != int64(1) {
		t.Fatalf("expected mode 1, got %v", v)
	}
	if v, _ := f.Mode("s"); v != nil {
		t.Fatalf("null group should win for s, got %v", v)
	}

	ties := NewFrame(Schema{Columns: []ColumnSchema{{Name: "t", Type: KindInt, Nullable: true}}})
	for i, v := range []int64{4, 2, 2, 4} {
		ties.AppendNullRow()
		_ = ties.SetCell(i, "t", v)
	}
	if v, _ := ties.Mode("t"); v != int64(4) {
		t.Fatalf("tie should go to the first value seen, got %v", v)
	}
	if _, err := NewFrame(ties.Schema()).Mode("t"); !errors.Is(err, ErrNoValues) {
		t.Fatalf("expected ErrNoValues for an empty column, got %v", err)
	}
	if _, err := ties.Mode("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

type sliceSource struct {
	schema Schema
	chunks []*Frame
}

func (s *sliceSource) Schema() Schema { return s.schema }

func (s *sliceSource) Next() (*Frame, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	f := s.chunks[0]
	s.chunks = s.chunks[1:]
	return f, nil
}

func TestCollect(t *testing.T) {
	a, b := peopleFrame(), peopleFrame()
	out, err := Collect(context.Background(), &sliceSource{schema: a.Schema(), chunks: []*Frame{a, b}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 12 {
		t.Fatalf("expected 12 rows, got %d", out.Rows())
	}
	other := NewFrame(Schema{Columns: []ColumnSchema{{Name: "x", Type: KindString}}})
	if err := out.AppendFrame(other); err == nil {
		t.Fatal("expected column count mismatch")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3, "3.0"},
		{2.5, "2.5"},
		{-1, "-1.0"},
		{0, "0.0"},
		{86.9375, "86.9375"},
		{999999, "999999.0"},
		{2e6, "2000000.0"},
		{1234567, "1234567.0"},
		{-2.5e6, "-2500000.0"},
		{1.5e15, "1500000000000000.0"},
		{1e16, "1e+16"},
		{1e21, "1e+21"},
		{0.0001, "0.0001"},
		{1e-5, "1e-05"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, c := range cases {
		if got := FormatFloat(c.in); got != c.want {
			t.Fatalf("FormatFloat(%v): expected %q, got %q", c.in, c.want, got)
		}
	}
	if FormatValue(nil) != "null" || FormatValue(int64(7)) != "7" || FormatValue(true) != "true" {
		t.Fatal("unexpected FormatValue output")
	}
}

func TestShow(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{{Name: "text", Type: KindString, Nullable: true}}})
	for _, s := range []string{"short", strings.Repeat("abcdefghij", 3), "third"} {
		f.AppendNullRow()
		_ = f.SetCell(f.Rows()-1, "text", s)
	}
	var buf bytes.Buffer
	f.Show(&buf, 2, 20)
	out := buf.String()
	for _, want := range []string{"text", "short", "abcdefghijabcdefg...", "only showing top 2 rows"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "third") {
		t.Fatalf("third row should be cut:\n%s", out)
	}
}
