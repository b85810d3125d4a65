package csvio

import (
	"path/filepath"
	"testing"
)

func BenchmarkReadPeople(b *testing.B) {
	p := filepath.FromSlash("testdata/people.csv")
	for n := 0; n < b.N; n++ {
		r, f, err := Open(p, ReaderOptions{HasHeader: true})
		if err != nil {
			b.Fatal(err)
		}
		schema, err := r.InferSchema()
		if err != nil {
			b.Fatal(err)
		}
		fr, err := r.ReadAll(schema)
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
		_ = f.Close()
	}
}
