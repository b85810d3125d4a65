package profile

import (
	"context"
	"fmt"
	"io"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// Pass computes one section of a Report and prints it to out.
type Pass interface {
	Name() string
	Apply(ctx context.Context, f *fm.Frame, r *Report, out io.Writer) error
}

// Pipeline runs passes in order. Later passes may read what earlier ones
// stored in the Report.
type Pipeline struct {
	steps []Pass
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(s Pass) *Pipeline {
	p.steps = append(p.steps, s)
	return p
}

func (p *Pipeline) Run(ctx context.Context, f *fm.Frame, r *Report, out io.Writer) error {
	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Apply(ctx, f, r, out); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}
