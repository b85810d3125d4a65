package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
	"github.com/wdm0006/csvinsight/pkg/profile"
	"github.com/wdm0006/csvinsight/pkg/session"
)

// genSource produces random chunks. A fraction of rows repeats the previous
// row so the duplicate pass has work to do.
type genSource struct {
	schema fm.Schema
	remain int
	chunk  int
	missp  float64
	dupp   float64
	rnd    *rand.Rand
}

func (g *genSource) Schema() fm.Schema { return g.schema }

func (g *genSource) Next() (*fm.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := min(g.chunk, g.remain)
	g.remain -= n
	f := fm.NewFrame(g.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		if i > 0 && g.rnd.Float64() < g.dupp {
			for c, cs := range g.schema.Columns {
				_ = f.SetCell(i, cs.Name, f.Column(c).Value(i-1))
			}
			continue
		}
		for _, cs := range g.schema.Columns {
			if g.rnd.Float64() < g.missp {
				continue
			}
			switch cs.Type {
			case fm.KindFloat:
				_ = f.SetCell(i, cs.Name, g.rnd.NormFloat64()*15+100)
			case fm.KindInt:
				_ = f.SetCell(i, cs.Name, int64(g.rnd.Intn(100)))
			case fm.KindString:
				_ = f.SetCell(i, cs.Name, fmt.Sprintf("cat-%d", g.rnd.Intn(50)))
			}
		}
	}
	return f, nil
}

func main() {
	var (
		rows    = flag.Int("rows", 1_000_000, "total rows to generate")
		chunk   = flag.Int("chunk", 100_000, "rows per chunk")
		fcols   = flag.Int("float-cols", 4, "number of float columns")
		icols   = flag.Int("int-cols", 2, "number of int columns")
		scols   = flag.Int("string-cols", 2, "number of string columns")
		missp   = flag.Float64("missing", 0.05, "probability of missing values in each cell")
		dupp    = flag.Float64("dup", 0.01, "probability that a row repeats the previous one")
		relErr  = flag.Float64("relative-error", profile.DefaultRelativeError, "median relative error")
		par     = flag.Int("parallelism", 0, "aggregation fan-out (0 = one goroutine per column)")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	var cols []fm.ColumnSchema
	for i := 0; i < *fcols; i++ {
		cols = append(cols, fm.ColumnSchema{Name: fmt.Sprintf("f%d", i), Type: fm.KindFloat, Nullable: true})
	}
	for i := 0; i < *icols; i++ {
		cols = append(cols, fm.ColumnSchema{Name: fmt.Sprintf("i%d", i), Type: fm.KindInt, Nullable: true})
	}
	for i := 0; i < *scols; i++ {
		cols = append(cols, fm.ColumnSchema{Name: fmt.Sprintf("s%d", i), Type: fm.KindString, Nullable: true})
	}
	src := &genSource{
		schema: fm.Schema{Columns: cols},
		remain: *rows,
		chunk:  *chunk,
		missp:  *missp,
		dupp:   *dupp,
		rnd:    rand.New(rand.NewSource(*seed)),
	}

	sess, err := session.New(session.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
	defer func() { _ = sess.Close() }()

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	ctx := context.Background()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	f, err := fm.Collect(ctx, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
	loaded := time.Since(start)
	t := sess.Register("synthetic", f)
	a := &profile.Analyzer{Out: io.Discard, RelativeError: *relErr, Parallelism: *par}
	report, err := a.Analyze(ctx, t)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(*rows) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  *rows,
		"duplicate_rows":        report.DuplicateRows,
		"load_ms":               loaded.Milliseconds(),
		"analyze_ms":            (elapsed - loaded).Milliseconds(),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"cols":                  map[string]int{"float": *fcols, "int": *icols, "string": *scols},
		"chunk":                 *chunk,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d (duplicates %d)\n", *rows, report.DuplicateRows)
	fmt.Printf("Load: %s\n", loaded)
	fmt.Printf("Analyze: %s\n", elapsed-loaded)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
