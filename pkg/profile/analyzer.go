// Package profile computes and prints the descriptive statistics of a loaded
// table.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
	"github.com/wdm0006/csvinsight/pkg/session"
)

// DefaultRelativeError is the rank tolerance of the approximate median.
const DefaultRelativeError = 0.001

// Analyzer prints the report sections to Out as they are computed.
type Analyzer struct {
	Out           io.Writer
	RelativeError float64
	// Parallelism bounds the per-column fan-out of aggregations; <= 0 means
	// one goroutine per column.
	Parallelism int
}

func NewAnalyzer(out io.Writer) *Analyzer {
	return &Analyzer{Out: out, RelativeError: DefaultRelativeError}
}

func (a *Analyzer) pipeline() *Pipeline {
	return NewPipeline().
		Add(SchemaPass{}).
		Add(ShapePass{}).
		Add(NullPass{Parallelism: a.Parallelism}).
		Add(DuplicatePass{}).
		Add(ClassifyPass{}).
		Add(StatsPass{RelativeError: a.RelativeError})
}

// Analyze runs every pass over t. On error the sections printed so far stay
// printed and the partial report is returned with the error.
func (a *Analyzer) Analyze(ctx context.Context, t *session.Table) (*Report, error) {
	if t == nil {
		return nil, errors.New("analyze: no table")
	}
	return a.AnalyzeFrame(ctx, t.Source(), t.Frame())
}

func (a *Analyzer) AnalyzeFrame(ctx context.Context, source string, f *fm.Frame) (*Report, error) {
	out := a.Out
	if out == nil {
		out = io.Discard
	}
	r := &Report{Source: source}
	if err := a.pipeline().Run(ctx, f, r, out); err != nil {
		return r, fmt.Errorf("analyze %s: %w", source, err)
	}
	return r, nil
}
