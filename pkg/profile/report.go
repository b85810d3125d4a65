package profile

import (
	"encoding/json"
	"math"
)

// ColumnType is one schema entry of a Report.
type ColumnType struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ColumnStats holds the central tendency of one numerical column. Mean is nil
// when the column has no values; Mode is nil when the null group is largest.
type ColumnStats struct {
	Column string   `json:"column"`
	Mean   *float64 `json:"mean"`
	Median float64  `json:"median"`
	Mode   any      `json:"mode"`
}

// MarshalJSON writes non-finite floats as null, which encoding/json would
// otherwise reject.
func (c ColumnStats) MarshalJSON() ([]byte, error) {
	type plain struct {
		Column string `json:"column"`
		Mean   any    `json:"mean"`
		Median any    `json:"median"`
		Mode   any    `json:"mode"`
	}
	p := plain{Column: c.Column, Median: finite(c.Median), Mode: c.Mode}
	if c.Mean != nil {
		p.Mean = finite(*c.Mean)
	}
	if v, ok := c.Mode.(float64); ok {
		p.Mode = finite(v)
	}
	return json.Marshal(p)
}

func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// Report is everything Analyze computed, in the order it was printed.
type Report struct {
	Source        string         `json:"source"`
	Schema        []ColumnType   `json:"schema"`
	NumColumns    int            `json:"num_columns"`
	NumRows       int            `json:"num_rows"`
	NullCounts    map[string]int `json:"null_counts"`
	DuplicateRows int            `json:"duplicate_rows"`
	Numerical     []string       `json:"numerical_columns"`
	Categorical   []string       `json:"categorical_columns"`
	Stats         []ColumnStats  `json:"statistics"`
}
