package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// Source is a buffered input that can be peeked before parsing.
type Source struct {
	*bufio.Reader
	closeFn func() error
}

func (s *Source) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// OpenMaybeCompressed opens a file path or stdin ("-"). Input that is gzip
// (by .gz extension or magic bytes) is decompressed transparently.
func OpenMaybeCompressed(path string) (*Source, error) {
	if path == "-" {
		return wrapMaybeGzip(os.Stdin, false, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := wrapMaybeGzip(f, filepath.Ext(path) == ".gz", f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}

func wrapMaybeGzip(r io.Reader, forceGzip bool, closeFn func() error) (*Source, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	b, err := br.Peek(2)
	isGzip := err == nil && b[0] == 0x1f && b[1] == 0x8b
	if !forceGzip && !isGzip {
		return &Source{Reader: br, closeFn: closeFn}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	inner := closeFn
	closeFn = func() error {
		_ = zr.Close()
		if inner != nil {
			return inner()
		}
		return nil
	}
	return &Source{Reader: bufio.NewReaderSize(zr, 64<<10), closeFn: closeFn}, nil
}
