package profile

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
	"github.com/wdm0006/csvinsight/pkg/io/csvio"
	"github.com/wdm0006/csvinsight/pkg/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Options{Reader: csvio.ReaderOptions{HasHeader: true, Delimiter: ','}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func intTable(s *session.Session, name string, vals ...any) *session.Table {
	f := fm.NewFrame(fm.Schema{Columns: []fm.ColumnSchema{{Name: name, Type: fm.KindInt, Nullable: true}}})
	for i, v := range vals {
		f.AppendNullRow()
		_ = f.SetCell(i, name, v)
	}
	return s.Register(name, f)
}

func TestAnalyzePeople(t *testing.T) {
	s := newSession(t)
	var errOut bytes.Buffer
	tbl := Load(context.Background(), s, filepath.FromSlash("testdata/people.csv"), &errOut)
	if tbl == nil {
		t.Fatalf("load failed: %s", errOut.String())
	}
	var out bytes.Buffer
	r, err := NewAnalyzer(&out).Analyze(context.Background(), tbl)
	if err != nil {
		t.Fatal(err)
	}

	if r.NumRows != 5 || r.NumColumns != 6 {
		t.Fatalf("expected 5 rows x 6 columns, got %d x %d", r.NumRows, r.NumColumns)
	}
	wantNulls := map[string]int{"id": 0, "name": 0, "age": 2, "score": 1, "active": 0, "joined": 1}
	for k, v := range wantNulls {
		if r.NullCounts[k] != v {
			t.Fatalf("%s: expected %d nulls, got %d", k, v, r.NullCounts[k])
		}
	}
	if r.DuplicateRows != 1 {
		t.Fatalf("expected 1 duplicate row, got %d", r.DuplicateRows)
	}

	seen := map[string]int{}
	for _, c := range r.Numerical {
		seen[c]++
	}
	for _, c := range r.Categorical {
		seen[c]++
	}
	for _, c := range tbl.Columns() {
		if seen[c] != 1 {
			t.Fatalf("column %s classified %d times", c, seen[c])
		}
	}
	if len(seen) != r.NumColumns {
		t.Fatalf("classification covers %d columns, want %d", len(seen), r.NumColumns)
	}

	text := out.String()
	for _, want := range []string{
		"\nSchema:\nroot\n |-- id: integer (nullable = true)\n",
		" |-- score: double (nullable = true)\n",
		" |-- active: boolean (nullable = true)\n",
		" |-- joined: timestamp (nullable = true)\n",
		"\nNumber of Columns: 6\nNumber of Rows: 5\n",
		"\nNull Counts:\nid: 0\nname: 0\nage: 2\nscore: 1\nactive: 0\njoined: 1\n",
		"\nNumber of Duplicate Rows: 1\n",
		"\nNumerical Columns (3): ['id', 'age', 'score']\n",
		"Categorical Columns (3): ['name', 'active', 'joined']\n",
		"\nStatistics for Numerical Columns:\n",
		"\nid - Mean: 2.4, Median: 2.0, Mode: 2\n",
		"\nage - Mean: 34.666666666666664, Median: 34.0, Mode: None\n",
		"\nscore - Mean: 86.9375, Median: 88.5, Mode: 92.0\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestOneToFive(t *testing.T) {
	s := newSession(t)
	tbl := intTable(s, "v", int64(1), int64(2), int64(3), int64(4), int64(5))
	r, err := (&Analyzer{RelativeError: DefaultRelativeError}).Analyze(context.Background(), tbl)
	if err != nil {
		t.Fatal(err)
	}
	st := r.Stats[0]
	if st.Mean == nil || *st.Mean != 3.0 || st.Median != 3 || st.Mode != int64(1) {
		t.Fatalf("unexpected stats %+v", st)
	}
	if r.DuplicateRows != 0 {
		t.Fatalf("expected no duplicates, got %d", r.DuplicateRows)
	}
}

func TestAllNullNumericColumnAborts(t *testing.T) {
	s := newSession(t)
	tbl := intTable(s, "empty", nil, nil)
	var out bytes.Buffer
	_, err := NewAnalyzer(&out).Analyze(context.Background(), tbl)
	if !errors.Is(err, fm.ErrNoValues) {
		t.Fatalf("expected ErrNoValues, got %v", err)
	}
	if !strings.Contains(out.String(), "Number of Duplicate Rows: 1") {
		t.Fatalf("sections before the failure should stay printed:\n%s", out.String())
	}
}

func TestWideIntegersAreNumerical(t *testing.T) {
	r := csvio.NewReaderFrom(strings.NewReader("id,n\n3000000000,1\n-5000000000,2\n"), csvio.ReaderOptions{HasHeader: true, Delimiter: ','})
	schema, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if schema.Columns[0].Type != fm.KindInt {
		t.Fatalf("expected integer kind for values beyond 32 bits, got %v", schema.Columns[0].Type)
	}
	num, cat := Classify(schema)
	if len(num) != 2 || num[0] != "id" || len(cat) != 0 {
		t.Fatalf("expected both columns numerical, got %v / %v", num, cat)
	}
}

func TestNoNumericalColumns(t *testing.T) {
	s := newSession(t)
	f := fm.NewFrame(fm.Schema{Columns: []fm.ColumnSchema{{Name: "s", Type: fm.KindString, Nullable: true}}})
	f.AppendNullRow()
	var out bytes.Buffer
	r, err := NewAnalyzer(&out).Analyze(context.Background(), s.Register("strings", f))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Stats) != 0 || strings.Contains(out.String(), "Statistics") {
		t.Fatalf("no statistics expected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Numerical Columns (0): []") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := newSession(t)
	var errOut bytes.Buffer
	if tbl := Load(context.Background(), s, "testdata/nope.csv", &errOut); tbl != nil {
		t.Fatal("expected no table")
	}
	if !strings.HasPrefix(errOut.String(), "Error reading the CSV file. Details: ") {
		t.Fatalf("unexpected diagnostic %q", errOut.String())
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(nil).Analyze(ctx, intTable(s, "v", int64(1)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPyList(t *testing.T) {
	cases := map[string][]string{
		"[]":                  {},
		"['a']":               {"a"},
		`['a', "it's"]`:       {"a", "it's"},
		`['say "hi" \'x\'']`: {`say "hi" 'x'`},
	}
	for want, in := range cases {
		if got := pyList(in); got != want {
			t.Fatalf("pyList(%q): expected %s, got %s", in, want, got)
		}
	}
}
