package parquetio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	pw "github.com/xitongsys/parquet-go/writer"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// fieldName is the physical parquet column name of the i-th frame column.
// Logical names live in the manifest so any header text survives the trip.
func fieldName(i int) string { return "c" + strconv.Itoa(i) }

func parquetSchemaJSON(s fm.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for i, cs := range s.Columns {
		tag := "name=" + fieldName(i) + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case fm.KindFloat:
			tag += "DOUBLE"
		case fm.KindInt:
			tag += "INT64"
		case fm.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
// Timestamps are stored as RFC 3339 strings.
func WriteAll(path string, f *fm.Frame) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer init: %w", err)
	}
	writer.CompressionType = parquet.CompressionCodec_SNAPPY
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols())
		for c := 0; c < f.Cols(); c++ {
			v := f.Column(c).Value(r)
			if v == nil {
				continue
			}
			if t, ok := v.(time.Time); ok {
				v = t.Format(time.RFC3339Nano)
			}
			rec[fieldName(c)] = v
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		return fmt.Errorf("parquet write footer: %w", err)
	}
	return nil
}
