// Package config loads run settings from YAML, TOML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/csvinsight/pkg/io/csvio"
)

type Config struct {
	Reader   Reader   `yaml:"reader" toml:"reader" json:"reader"`
	Analysis Analysis `yaml:"analysis" toml:"analysis" json:"analysis"`
	Cache    Cache    `yaml:"cache" toml:"cache" json:"cache"`
	Output   Output   `yaml:"output" toml:"output" json:"output"`
}

type Reader struct {
	// Delimiter is a single character, "tab", or "auto" to sniff it.
	Delimiter  string `yaml:"delimiter" toml:"delimiter" json:"delimiter"`
	Header     bool   `yaml:"header" toml:"header" json:"header"`
	SampleRows int    `yaml:"sample_rows" toml:"sample_rows" json:"sample_rows"`
	NullValue  string `yaml:"null_value" toml:"null_value" json:"null_value"`
	LazyQuotes bool   `yaml:"lazy_quotes" toml:"lazy_quotes" json:"lazy_quotes"`
	Strict     bool   `yaml:"strict" toml:"strict" json:"strict"`
	ChunkSize  int    `yaml:"chunk_size" toml:"chunk_size" json:"chunk_size"`
}

type Analysis struct {
	MedianRelativeError float64 `yaml:"median_relative_error" toml:"median_relative_error" json:"median_relative_error"`
	ShowRows            int     `yaml:"show_rows" toml:"show_rows" json:"show_rows"`
	Truncate            int     `yaml:"truncate" toml:"truncate" json:"truncate"`
	Parallelism         int     `yaml:"parallelism" toml:"parallelism" json:"parallelism"`
}

type Cache struct {
	Dir string `yaml:"dir" toml:"dir" json:"dir"`
}

type Output struct {
	Format string `yaml:"format" toml:"format" json:"format"` // text|json
}

func Default() Config {
	return Config{
		Reader: Reader{
			Delimiter: ",",
			Header:    true,
			ChunkSize: csvio.DefaultChunkSize,
		},
		Analysis: Analysis{
			MedianRelativeError: 0.001,
			ShowRows:            20,
			Truncate:            20,
		},
		Output: Output{Format: "text"},
	}
}

// Load reads path on top of Default. The decoder is chosen by extension.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if _, err := ParseDelimiter(c.Reader.Delimiter); err != nil {
		errs = append(errs, err)
	}
	if c.Reader.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("reader.chunk_size must be >= 0, got %d", c.Reader.ChunkSize))
	}
	if e := c.Analysis.MedianRelativeError; e < 0 || e >= 1 {
		errs = append(errs, fmt.Errorf("analysis.median_relative_error must be in [0, 1), got %v", e))
	}
	if c.Analysis.ShowRows < 0 {
		errs = append(errs, fmt.Errorf("analysis.show_rows must be >= 0, got %d", c.Analysis.ShowRows))
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("output.format must be text or json, got %q", c.Output.Format))
	}
	return errors.Join(errs...)
}

// ParseDelimiter maps a configured delimiter to a rune. Zero means sniff.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, n := utf8.DecodeRuneInString(s)
	if n != len(s) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// ReaderOptions converts the reader section for csvio.
func (c Config) ReaderOptions() csvio.ReaderOptions {
	d, _ := ParseDelimiter(c.Reader.Delimiter)
	return csvio.ReaderOptions{
		HasHeader:  c.Reader.Header,
		Delimiter:  d,
		SampleRows: c.Reader.SampleRows,
		NullValue:  c.Reader.NullValue,
		LazyQuotes: c.Reader.LazyQuotes,
		Strict:     c.Reader.Strict,
	}
}
