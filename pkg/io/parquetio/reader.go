package parquetio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// ReadAll loads a file written by WriteAll back into a Frame with the given
// schema. Columns are matched by position.
func ReadAll(ctx context.Context, path string, schema fm.Schema) (*fm.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	mem := memory.DefaultAllocator
	tbl, err := pqarrow.ReadTable(ctx, file, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	defer tbl.Release()

	if int(tbl.NumCols()) != len(schema.Columns) {
		return nil, fmt.Errorf("read parquet %s: need %d columns, got %d", path, len(schema.Columns), tbl.NumCols())
	}
	f := fm.NewFrame(schema)
	for r := int64(0); r < tbl.NumRows(); r++ {
		f.AppendNullRow()
	}
	for c, cs := range schema.Columns {
		row := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if !chunk.IsNull(i) {
					v, err := cellValue(chunk, i, cs.Type)
					if err != nil {
						return nil, fmt.Errorf("read parquet column %s: %w", cs.Name, err)
					}
					if err := f.SetCell(row, cs.Name, v); err != nil {
						return nil, err
					}
				}
				row++
			}
		}
	}
	return f, nil
}

func cellValue(a arrow.Array, i int, k fm.Kind) (any, error) {
	switch col := a.(type) {
	case *array.Float64:
		return col.Value(i), nil
	case *array.Int64:
		return col.Value(i), nil
	case *array.Boolean:
		return col.Value(i), nil
	case *array.String:
		s := col.Value(i)
		if k == fm.KindTime {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, err
			}
			return t, nil
		}
		return s, nil
	case *array.Binary:
		return string(col.Value(i)), nil
	default:
		return nil, fmt.Errorf("unsupported arrow type %s", a.DataType())
	}
}
