package csvio

import (
	"io"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

const DefaultChunkSize = 8192

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows.
type StreamReader struct {
	r         *Reader
	closer    io.Closer
	schema    fm.Schema
	chunkSize int
}

// NewStreamReader opens the file, infers schema (respecting options), and returns a StreamReader.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	rr, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	schema, err := rr.InferSchema()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &StreamReader{r: rr, closer: c, schema: schema, chunkSize: chunkSize}, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*fm.Frame, error) {
	fr := fm.NewFrame(s.schema)
	err := s.r.fill(fr, s.chunkSize)
	if err == io.EOF {
		if fr.Rows() == 0 {
			return nil, io.EOF
		}
		return fr, nil
	}
	if err != nil {
		return nil, err
	}
	return fr, nil
}

func (s *StreamReader) Schema() fm.Schema { return s.schema }

// Warnings reports repairs made so far, empty when the input was clean.
func (s *StreamReader) Warnings() string { return s.r.Warnings() }

func (s *StreamReader) Close() error { return s.closer.Close() }
