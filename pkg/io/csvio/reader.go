package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
	iox "github.com/wdm0006/csvinsight/pkg/io/ioutils"
)

var ErrEmptyFile = errors.New("empty CSV file")

var (
	intRe = regexp.MustCompile(`^[-+]?[0-9]+$`)
	numRe = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune   // 0 = sniff
	SampleRows int    // rows used for inference; <= 0 means every row
	NullValue  string // extra token read as null besides the empty string
	LazyQuotes bool
	Strict     bool // if true, error on short/long records
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
	badValues    int
}

// Open opens a (possibly gzip-compressed) CSV file and returns a Reader and
// the closer for the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	src, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	if opt.Delimiter == 0 {
		sample, _ := src.Peek(4096)
		opt.Delimiter = sniffDelimiter(sample)
	}
	return NewReaderFrom(src, opt), src, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.LazyQuotes = opt.LazyQuotes
	rr.ReuseRecord = true
	return &Reader{r: rr, opt: opt}
}

// InferSchema reads the header (if present) and samples rows to determine
// column kinds. Sampled rows are kept and replayed by Next.
func (r *Reader) InferSchema() (fm.Schema, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return fm.Schema{}, ErrEmptyFile
	}
	if err != nil {
		return fm.Schema{}, err
	}
	var names []string
	if r.opt.HasHeader {
		names = headerNames(rec)
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "_c" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, slices.Clone(rec))
	}

	max := r.opt.SampleRows
	for max <= 0 || len(r.buf) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fm.Schema{}, err
		}
		r.buf = append(r.buf, slices.Clone(rr))
	}

	kinds := inferKinds(r.buf, len(names), r.opt.NullValue)
	schema := fm.Schema{Columns: make([]fm.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = fm.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// headerNames cleans header cells: invalid UTF-8 replaced, BOM stripped, empty
// names become _c<i>, repeated names get their index appended.
func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	counts := map[string]int{}
	for i := range rec {
		n := strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		if i == 0 {
			n = strings.TrimPrefix(n, "\ufeff")
		}
		if n == "" {
			n = "_c" + strconv.Itoa(i)
		}
		names[i] = n
		counts[strings.ToLower(n)]++
	}
	for i, n := range names {
		if counts[strings.ToLower(n)] > 1 {
			names[i] = n + strconv.Itoa(i)
		}
	}
	return names
}

// ReadAll reads every remaining record, rows buffered by InferSchema first.
func (r *Reader) ReadAll(schema fm.Schema) (*fm.Frame, error) {
	fr := fm.NewFrame(schema)
	if err := r.fill(fr, 0); err != io.EOF {
		return nil, err
	}
	return fr, nil
}

// fill appends records to fr until it holds limit rows (limit <= 0 means no
// limit). It returns io.EOF once the input is exhausted.
func (r *Reader) fill(fr *fm.Frame, limit int) error {
	for len(r.buf) > 0 && (limit <= 0 || fr.Rows() < limit) {
		rec := r.buf[0]
		r.buf[0] = nil
		r.buf = r.buf[1:]
		if err := r.appendRecord(fr, rec); err != nil {
			return err
		}
	}
	for limit <= 0 || fr.Rows() < limit {
		rec, err := r.r.Read()
		if err != nil {
			return err
		}
		if err := r.appendRecord(fr, rec); err != nil {
			return err
		}
	}
	return nil
}

// appendRecord adds one CSV record to the frame, null-filling short records
// and dropping extra fields of long ones.
func (r *Reader) appendRecord(fr *fm.Frame, rec []string) error {
	schema := fr.Schema()
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", fr.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	if len(rec) < len(schema.Columns) {
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", fr.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	fr.AppendNullRow()
	row := fr.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			break
		}
		val := strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		if isNull(val, r.opt.NullValue) {
			continue
		}
		v, ok := parseValue(cs.Type, val)
		if !ok {
			r.badValues++
			continue
		}
		_ = fr.SetCell(row, cs.Name, v)
	}
	return nil
}

func parseValue(k fm.Kind, val string) (any, bool) {
	switch k {
	case fm.KindFloat:
		x, err := strconv.ParseFloat(val, 64)
		return x, err == nil
	case fm.KindInt:
		x, err := strconv.ParseInt(val, 10, 64)
		return x, err == nil
	case fm.KindBool:
		x, err := strconv.ParseBool(strings.ToLower(val))
		return x, err == nil
	case fm.KindTime:
		return parseTime(val)
	default:
		return val, true
	}
}

func isNull(v, nullValue string) bool {
	return v == "" || (nullValue != "" && v == nullValue)
}

func parseTime(v string) (any, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return nil, false
}

// inferKinds picks the narrowest kind that holds every non-null sampled value
// of a column. Integers widen to floats; any other mix becomes string.
func inferKinds(rows [][]string, ncol int, nullValue string) []fm.Kind {
	kinds := make([]fm.Kind, ncol)
	for c := 0; c < ncol; c++ {
		k := fm.KindInvalid
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if isNull(v, nullValue) {
				continue
			}
			k = widen(k, classify(v))
			if k == fm.KindString {
				break
			}
		}
		if k == fm.KindInvalid {
			k = fm.KindString
		}
		kinds[c] = k
	}
	return kinds
}

func classify(v string) fm.Kind {
	if intRe.MatchString(v) {
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return fm.KindInt
		}
		return fm.KindFloat
	}
	if numRe.MatchString(v) {
		return fm.KindFloat
	}
	if lv := strings.ToLower(v); lv == "true" || lv == "false" {
		return fm.KindBool
	}
	if _, ok := parseTime(v); ok {
		return fm.KindTime
	}
	return fm.KindString
}

func widen(a, b fm.Kind) fm.Kind {
	switch {
	case a == fm.KindInvalid:
		return b
	case a == b:
		return a
	case a.Numeric() && b.Numeric():
		return fm.KindFloat
	default:
		return fm.KindString
	}
}

func sniffDelimiter(sample []byte) rune {
	if len(sample) == 0 {
		return ','
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	return rune(best)
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	if r.badValues > 0 {
		parts = append(parts, fmt.Sprintf("unparsed_values=%d", r.badValues))
	}
	return strings.Join(parts, ", ")
}
