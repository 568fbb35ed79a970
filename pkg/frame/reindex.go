package frame

import (
	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// Reindex conforms the table to rows under method. Rows of the target that
// the method cannot match are null in every column, and an int or bool
// numeric block becomes float64 when that happens. Pad and Backfill require
// monotonic row labels. The result never shares storage with t, including
// when rows equals the current index.
func (t *Table) Reindex(rows *index.Index, method align.Method) (out *Table, err error) {
	timer := metrics.NewTimer("reindex")
	defer func() { observe(timer, err) }()
	return t.reindexRows(rows, method, "reindex")
}

func (t *Table) reindexRows(rows *index.Index, method align.Method, operation string) (*Table, error) {
	if rows == t.rows || rows.Equals(t.rows) {
		return &Table{rows: t.rows, store: t.store.Copy()}, nil
	}
	ix, err := align.GetIndexer(t.rows, rows, method)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: t.store.ReindexRows(ix, operation)}, nil
}

// ReindexColumns conforms the table to columns. New columns are all-null
// numeric columns; object columns stay in the object block.
func (t *Table) ReindexColumns(columns *index.Index) (out *Table, err error) {
	timer := metrics.NewTimer("reindex_columns")
	defer func() { observe(timer, err) }()
	return t.reindexColumns(columns, "reindex_columns")
}

func (t *Table) reindexColumns(columns *index.Index, operation string) (*Table, error) {
	if columns.Equals(t.Columns()) {
		return t.Copy(), nil
	}
	store, err := t.store.ReindexColumns(columns, operation)
	if err != nil {
		return nil, err
	}
	return &Table{rows: t.rows, store: store}, nil
}

// ReindexLike conforms both axes to other's labels without filling
func (t *Table) ReindexLike(other *Table) (*Table, error) {
	rows, err := t.Reindex(other.rows, align.None)
	if err != nil {
		return nil, err
	}
	return rows.ReindexColumns(other.Columns())
}
