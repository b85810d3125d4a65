package frame

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotNumeric    = errors.New("column is not numeric")
	ErrNoValues      = errors.New("column has no non-null values")
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

// String returns the type name printed in schema dumps.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "double"
	case KindString:
		return "string"
	case KindTime:
		return "timestamp"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindBool; k <= KindTime; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", s)
}

// Numeric reports whether values of this kind take part in numeric aggregates.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// Value returns the cell as a Go value, nil when null.
	Value(i int) any

	extend(o Column) error
	appendKey(b []byte, i int) []byte
}

// Vector is the storage behind every column kind.
type Vector[T comparable] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = Vector[bool]
	IntColumn    = Vector[int64]
	FloatColumn  = Vector[float64]
	StringColumn = Vector[string]
	TimeColumn   = Vector[time.Time]
)

func newVector[T comparable](name string, kind Kind, n int) *Vector[T] {
	v := &Vector[T]{name: name, kind: kind, data: make([]T, n), nulls: make([]bool, n)}
	for i := range v.nulls {
		v.nulls[i] = true
	}
	return v
}

func NewBoolColumn(name string, n int) *BoolColumn     { return newVector[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn       { return newVector[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn   { return newVector[float64](name, KindFloat, n) }
func NewStringColumn(name string, n int) *StringColumn { return newVector[string](name, KindString, n) }
func NewTimeColumn(name string, n int) *TimeColumn     { return newVector[time.Time](name, KindTime, n) }

func (c *Vector[T]) Name() string        { return c.name }
func (c *Vector[T]) Kind() Kind          { return c.kind }
func (c *Vector[T]) Len() int            { return len(c.data) }
func (c *Vector[T]) IsNull(i int) bool   { return c.nulls[i] }
func (c *Vector[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }
func (c *Vector[T]) Set(i int, v T)      { c.data[i] = v; c.nulls[i] = false }

func (c *Vector[T]) SetNull(i int) {
	var zero T
	c.data[i] = zero
	c.nulls[i] = true
}

func (c *Vector[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

func (c *Vector[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

func (c *Vector[T]) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

func (c *Vector[T]) extend(o Column) error {
	ov, ok := o.(*Vector[T])
	if !ok || ov.kind != c.kind {
		return fmt.Errorf("column %s: cannot append %v to %v", c.name, o.Kind(), c.kind)
	}
	c.data = append(c.data, ov.data...)
	c.nulls = append(c.nulls, ov.nulls...)
	return nil
}

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		switch cs.Type {
		case KindBool:
			f.cols[i] = NewBoolColumn(cs.Name, 0)
		case KindInt:
			f.cols[i] = NewIntColumn(cs.Name, 0)
		case KindFloat:
			f.cols[i] = NewFloatColumn(cs.Name, 0)
		case KindString:
			f.cols[i] = NewStringColumn(cs.Name, 0)
		case KindTime:
			f.cols[i] = NewTimeColumn(cs.Name, 0)
		default:
			panic("invalid column kind")
		}
		f.index[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema      { return f.schema }
func (f *Frame) Rows() int           { return f.nrows }
func (f *Frame) Cols() int           { return len(f.cols) }
func (f *Frame) Column(i int) Column { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// AppendFrame appends all rows of o, which must share f's schema.
func (f *Frame) AppendFrame(o *Frame) error {
	if len(o.cols) != len(f.cols) {
		return fmt.Errorf("append frame: need %d columns, got %d", len(f.cols), len(o.cols))
	}
	for i, c := range f.cols {
		if err := c.extend(o.cols[i]); err != nil {
			return fmt.Errorf("append frame: %w", err)
		}
	}
	f.nrows += o.nrows
	return nil
}

// SetCell sets a single cell value by name (row must exist). A nil value sets null.
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
