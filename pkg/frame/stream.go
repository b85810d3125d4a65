package frame

import (
	"context"
	"io"
)

// ChunkSource yields frames in chunks until io.EOF.
type ChunkSource interface {
	Schema() Schema
	Next() (*Frame, error)
}

// Collect drains src into a single materialized frame.
func Collect(ctx context.Context, src ChunkSource) (*Frame, error) {
	out := NewFrame(src.Schema())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := src.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if err := out.AppendFrame(chunk); err != nil {
			return nil, err
		}
	}
}
