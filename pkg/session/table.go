package session

import (
	"io"

	fm "github.com/wdm0006/csvinsight/pkg/frame"
)

// Table is a handle on a loaded, schema-inferred dataset.
type Table struct {
	sess      *Session
	key       string
	source    string
	frame     *fm.Frame
	persisted bool // a parquet copy exists in the session store
	ephemeral bool // never persisted (stdin, registered frames)
}

func (t *Table) Source() string    { return t.source }
func (t *Table) Frame() *fm.Frame  { return t.frame }
func (t *Table) Schema() fm.Schema { return t.frame.Schema() }
func (t *Table) Columns() []string { return t.frame.Schema().Names() }
func (t *Table) NumRows() int      { return t.frame.Rows() }
func (t *Table) NumColumns() int   { return t.frame.Cols() }

// Cache keeps the table in the session so later reads of the same source reuse
// it, and persists it when the session has a cache directory. The table stays
// cached in memory even when persisting fails.
func (t *Table) Cache() error { return t.sess.cache(t) }

// Show prints the first n rows, cutting cells longer than truncate runes.
func (t *Table) Show(w io.Writer, n, truncate int) { t.frame.Show(w, n, truncate) }
