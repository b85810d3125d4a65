package frame

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// FormatValue renders a cell the way Show prints it.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case float64:
		return FormatFloat(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Nanosecond() != 0 {
			return t.Format("2006-01-02 15:04:05.999999")
		}
		return t.Format("2006-01-02 15:04:05")
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// FormatFloat prints the shortest representation the way Python's repr does:
// positional between 1e-4 and 1e16, exponent form outside, and a decimal
// point on whole numbers (3 prints as 3.0).
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	var s string
	if a := math.Abs(v); a == 0 || (a >= 1e-4 && a < 1e16) {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// Show writes the first n rows as a table. Cells longer than truncate runes are
// cut and suffixed with "..."; truncate <= 0 disables cutting.
func (f *Frame) Show(w io.Writer, n, truncate int) {
	if n < 0 {
		n = 0
	}
	rows := n
	if rows > f.nrows {
		rows = f.nrows
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(f.schema.Names())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	for r := 0; r < rows; r++ {
		line := make([]string, len(f.cols))
		for c, col := range f.cols {
			line[c] = truncateCell(FormatValue(col.Value(r)), truncate)
		}
		tw.Append(line)
	}
	tw.Render()
	if f.nrows > n {
		fmt.Fprintf(w, "only showing top %d rows\n", n)
	}
}

func truncateCell(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 4 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
