package profile

import (
	"context"
	"fmt"
	"io"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// SchemaPass prints the schema tree.
type SchemaPass struct{}

func (SchemaPass) Name() string { return "schema" }

func (SchemaPass) Apply(_ context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	fmt.Fprintln(out, "\nSchema:")
	fmt.Fprintln(out, "root")
	r.Schema = make([]ColumnType, 0, f.Cols())
	for _, cs := range f.Schema().Columns {
		r.Schema = append(r.Schema, ColumnType{Name: cs.Name, Kind: cs.Type.String()})
		fmt.Fprintf(out, " |-- %s: %s (nullable = %t)\n", cs.Name, cs.Type, cs.Nullable)
	}
	fmt.Fprintln(out)
	return nil
}

// ShapePass records column and row counts.
type ShapePass struct{}

func (ShapePass) Name() string { return "shape" }

func (ShapePass) Apply(_ context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	r.NumColumns = f.Cols()
	r.NumRows = f.Rows()
	fmt.Fprintf(out, "\nNumber of Columns: %d\n", r.NumColumns)
	fmt.Fprintf(out, "Number of Rows: %d\n", r.NumRows)
	return nil
}

// NullPass counts nulls of all columns in one aggregation.
type NullPass struct {
	Parallelism int
}

func (NullPass) Name() string { return "null counts" }

func (p NullPass) Apply(ctx context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	counts, err := f.NullCounts(ctx, p.Parallelism)
	if err != nil {
		return err
	}
	r.NullCounts = make(map[string]int, len(counts))
	fmt.Fprintln(out, "\nNull Counts:")
	for i, cs := range f.Schema().Columns {
		r.NullCounts[cs.Name] = counts[i]
		fmt.Fprintf(out, "%s: %d\n", cs.Name, counts[i])
	}
	return nil
}

// DuplicatePass reports rows minus distinct rows.
type DuplicatePass struct{}

func (DuplicatePass) Name() string { return "duplicates" }

func (DuplicatePass) Apply(ctx context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	distinct, err := f.DistinctRows(ctx)
	if err != nil {
		return err
	}
	r.DuplicateRows = f.Rows() - distinct
	fmt.Fprintf(out, "\nNumber of Duplicate Rows: %d\n", r.DuplicateRows)
	return nil
}

// ClassifyPass splits columns into numerical and categorical, both in schema
// order.
type ClassifyPass struct{}

func (ClassifyPass) Name() string { return "classify" }

func (ClassifyPass) Apply(_ context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	r.Numerical, r.Categorical = Classify(f.Schema())
	fmt.Fprintf(out, "\nNumerical Columns (%d): %s\n", len(r.Numerical), pyList(r.Numerical))
	fmt.Fprintf(out, "Categorical Columns (%d): %s\n", len(r.Categorical), pyList(r.Categorical))
	return nil
}

// Classify partitions the schema's column names by kind.
func Classify(s fm.Schema) (numerical, categorical []string) {
	numerical, categorical = []string{}, []string{}
	for _, cs := range s.Columns {
		if cs.Type.Numeric() {
			numerical = append(numerical, cs.Name)
		} else {
			categorical = append(categorical, cs.Name)
		}
	}
	return numerical, categorical
}

// StatsPass computes mean, approximate median and mode of every numerical
// column found by ClassifyPass.
type StatsPass struct {
	RelativeError float64
}

func (StatsPass) Name() string { return "statistics" }

func (p StatsPass) Apply(ctx context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	r.Stats = []ColumnStats{}
	if len(r.Numerical) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nStatistics for Numerical Columns:")
	for _, name := range r.Numerical {
		if err := ctx.Err(); err != nil {
			return err
		}
		cs, err := columnStats(f, name, p.RelativeError)
		if err != nil {
			return err
		}
		r.Stats = append(r.Stats, cs)
		mean := "None"
		if cs.Mean != nil {
			mean = fm.FormatFloat(*cs.Mean)
		}
		fmt.Fprintf(out, "\n%s - Mean: %s, Median: %s, Mode: %s\n", name, mean, fm.FormatFloat(cs.Median), pyValue(cs.Mode))
	}
	return nil
}

func columnStats(f *fm.Frame, name string, relErr float64) (ColumnStats, error) {
	cs := ColumnStats{Column: name}
	mean, ok, err := f.Mean(name)
	if err != nil {
		return cs, err
	}
	if ok {
		cs.Mean = &mean
	}
	q, err := f.ApproxQuantile(name, []float64{0.5}, relErr)
	if err != nil {
		return cs, err
	}
	cs.Median = q[0]
	if cs.Mode, err = f.Mode(name); err != nil {
		return cs, err
	}
	return cs, nil
}
