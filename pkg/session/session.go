// Package session owns loaded tables for the lifetime of a run. A Session is
// built explicitly, handed to whatever loads or analyzes data, and closed at
// exit.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
	"github.com/wdm0006/csvinsight/pkg/io/csvio"
	"github.com/wdm0006/csvinsight/pkg/io/parquetio"
)

var ErrClosed = errors.New("session closed")

type Options struct {
	Reader    csvio.ReaderOptions
	ChunkSize int
	// CacheDir, when set, persists cached tables as parquet so later sessions
	// skip CSV parsing for unchanged files.
	CacheDir string
	// Debug receives diagnostic lines; nil discards them.
	Debug io.Writer
	// Warn receives non-fatal problems; nil means stderr.
	Warn io.Writer
}

type Session struct {
	opt   Options
	store *parquetio.Store

	mu     sync.Mutex
	tables map[string]*Table
	closed bool
}

func New(opt Options) (*Session, error) {
	if opt.Debug == nil {
		opt.Debug = io.Discard
	}
	if opt.Warn == nil {
		opt.Warn = os.Stderr
	}
	s := &Session{opt: opt, tables: make(map[string]*Table)}
	if opt.CacheDir != "" {
		st, err := parquetio.NewStore(opt.CacheDir)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

func (s *Session) debugf(format string, args ...any) {
	fmt.Fprintf(s.opt.Debug, "debug: "+format+"\n", args...)
}

// ReadCSV loads path into a materialized table. Tables previously marked with
// Cache are returned without touching the file again.
func (s *Session) ReadCSV(ctx context.Context, path string) (*Table, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	key, err := s.cacheKey(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	t, ok := s.tables[key]
	s.mu.Unlock()
	if ok {
		s.debugf("memory cache hit for %s", path)
		return t, nil
	}

	if s.store != nil {
		f, ok, err := s.store.Get(ctx, key)
		switch {
		case err != nil:
			fmt.Fprintf(s.opt.Warn, "⚠ Warning: ignoring unreadable cache entry for %s: %v\n", path, err)
		case ok:
			s.debugf("parquet cache hit for %s (%d rows)", path, f.Rows())
			return &Table{sess: s, key: key, source: path, frame: f, persisted: true}, nil
		}
	}

	start := time.Now()
	sr, err := csvio.NewStreamReader(path, s.opt.Reader, s.opt.ChunkSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sr.Close() }()
	f, err := fm.Collect(ctx, sr)
	if err != nil {
		return nil, err
	}
	if w := sr.Warnings(); w != "" {
		s.debugf("csv repairs in %s: %s", path, w)
	}
	s.debugf("loaded %s: %d rows x %d columns in %s", path, f.Rows(), f.Cols(), time.Since(start))
	return &Table{sess: s, key: key, source: path, frame: f, ephemeral: path == "-"}, nil
}

// Register wraps an in-memory frame as a table of this session.
func (s *Session) Register(name string, f *fm.Frame) *Table {
	return &Table{sess: s, key: "mem:" + name, source: name, frame: f, ephemeral: true}
}

// cacheKey identifies a file version together with the options it was parsed
// with, so edits to the file or the reader settings miss the cache.
func (s *Session) cacheKey(path string) (string, error) {
	if path == "-" {
		return "stdin:" + strconv.FormatInt(time.Now().UnixNano(), 10), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	o := s.opt.Reader
	id := fmt.Sprintf("%s|%d|%d|%t|%d|%d|%q|%t|%t",
		abs, st.Size(), st.ModTime().UnixNano(),
		o.HasHeader, o.Delimiter, o.SampleRows, o.NullValue, o.LazyQuotes, o.Strict)
	return strconv.FormatUint(xxhash.Sum64String(id), 16), nil
}

func (s *Session) cache(t *Table) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.tables[t.key] = t
	s.mu.Unlock()

	if s.store == nil || t.persisted || t.ephemeral || t.frame.Cols() == 0 {
		return nil
	}
	if err := s.store.Put(t.key, t.source, t.frame); err != nil {
		return fmt.Errorf("persist cache for %s: %w", t.source, err)
	}
	t.persisted = true
	s.debugf("wrote parquet cache %s for %s", t.key, t.source)
	return nil
}

// Close drops every cached table. Persisted parquet entries stay on disk.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tables = nil
	return nil
}
