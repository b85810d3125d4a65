package profile

import (
	"context"
	"fmt"
	"io"

	"github.com/wdm0006/csvinsight/pkg/session"
)

// Load reads path through sess and marks the table cached. Any failure is
// printed to errOut and reported as a nil table. A failure to persist the
// cache is only a warning.
func Load(ctx context.Context, sess *session.Session, path string, errOut io.Writer) *session.Table {
	t, err := sess.ReadCSV(ctx, path)
	if err != nil {
		fmt.Fprintf(errOut, "Error reading the CSV file. Details: %v\n", err)
		return nil
	}
	if err := t.Cache(); err != nil {
		fmt.Fprintf(errOut, "⚠ Warning: %v\n", err)
	}
	return t
}
