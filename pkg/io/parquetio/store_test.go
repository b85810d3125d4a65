package parquetio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

func makeFrame(rows int) *fm.Frame {
	s := fm.Schema{Columns: []fm.ColumnSchema{
		{Name: "a", Type: fm.KindFloat, Nullable: true},
		{Name: "b", Type: fm.KindInt, Nullable: true},
		{Name: "name with spaces", Type: fm.KindString, Nullable: true},
		{Name: "ok", Type: fm.KindBool, Nullable: true},
		{Name: "at", Type: fm.KindTime, Nullable: true},
	}}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := fm.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		if i%7 == 3 {
			continue
		}
		_ = f.SetCell(i, "a", float64(i%100)/4)
		_ = f.SetCell(i, "b", int64(i%10))
		_ = f.SetCell(i, "name with spaces", "row")
		_ = f.SetCell(i, "ok", i%2 == 0)
		_ = f.SetCell(i, "at", base.Add(time.Duration(i)*time.Hour))
	}
	return f
}

func TestStoreRoundTrip(t *testing.T) {
	st, err := NewStore(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	in := makeFrame(50)
	if err := st.Put("k1", "in.csv", in); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(st.Dir(), "k1.parquet")); err != nil {
		t.Fatal(err)
	}
	out, ok, err := st.Get(context.Background(), "k1")
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if out.Rows() != in.Rows() || out.Cols() != in.Cols() {
		t.Fatalf("expected %dx%d, got %dx%d", in.Rows(), in.Cols(), out.Rows(), out.Cols())
	}
	for c, cs := range in.Schema().Columns {
		if got := out.Schema().Columns[c]; got.Name != cs.Name || got.Type != cs.Type {
			t.Fatalf("column %d: expected %s %v, got %s %v", c, cs.Name, cs.Type, got.Name, got.Type)
		}
		for r := 0; r < in.Rows(); r++ {
			want, got := in.Column(c).Value(r), out.Column(c).Value(r)
			if wt, ok := want.(time.Time); ok {
				if gt, ok := got.(time.Time); !ok || !gt.Equal(wt) {
					t.Fatalf("%s row %d: expected %v, got %v", cs.Name, r, want, got)
				}
				continue
			}
			if want != got {
				t.Fatalf("%s row %d: expected %v, got %v", cs.Name, r, want, got)
			}
		}
	}
}

func TestStoreMiss(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := st.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteAll(path, f); err != nil {
			b.Fatal(err)
		}
	}
}
