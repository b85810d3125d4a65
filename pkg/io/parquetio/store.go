package parquetio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// Store keeps materialized frames on disk as <key>.parquet plus a
// <key>.schema.yaml manifest holding the logical column names and kinds.
type Store struct {
	dir string
}

type manifest struct {
	Source  string           `yaml:"source"`
	Rows    int              `yaml:"rows"`
	Columns []manifestColumn `yaml:"columns"`
}

type manifestColumn struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) paths(key string) (data, meta string) {
	return filepath.Join(s.dir, key+".parquet"), filepath.Join(s.dir, key+".schema.yaml")
}

// Put writes f under key. The manifest is written last so a half-written
// entry is never visible to Get.
func (s *Store) Put(key, source string, f *fm.Frame) error {
	data, meta := s.paths(key)
	_ = os.Remove(meta)
	if err := WriteAll(data, f); err != nil {
		_ = os.Remove(data)
		return err
	}
	m := manifest{Source: source, Rows: f.Rows()}
	for _, cs := range f.Schema().Columns {
		m.Columns = append(m.Columns, manifestColumn{Name: cs.Name, Kind: cs.Type.String()})
	}
	b, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	return os.WriteFile(meta, b, 0o644)
}

// Get loads the frame stored under key. ok is false when there is no entry.
func (s *Store) Get(ctx context.Context, key string) (f *fm.Frame, ok bool, err error) {
	data, meta := s.paths(key)
	b, err := os.ReadFile(meta)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, false, fmt.Errorf("cache manifest %s: %w", meta, err)
	}
	schema := fm.Schema{Columns: make([]fm.ColumnSchema, len(m.Columns))}
	for i, mc := range m.Columns {
		k, err := fm.ParseKind(mc.Kind)
		if err != nil {
			return nil, false, fmt.Errorf("cache manifest %s: %w", meta, err)
		}
		schema.Columns[i] = fm.ColumnSchema{Name: mc.Name, Type: k, Nullable: true}
	}
	f, err = ReadAll(ctx, data, schema)
	if err != nil {
		return nil, false, err
	}
	if f.Rows() != m.Rows {
		return nil, false, fmt.Errorf("cache entry %s: manifest has %d rows, data has %d", key, m.Rows, f.Rows())
	}
	return f, true, nil
}
