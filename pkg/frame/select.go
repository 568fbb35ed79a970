package frame

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/blockstore"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/pool"
)

// Append stacks other's rows beneath t's. Row labels must stay unique.
// Tables with different columns are both realigned onto the union of
// columns first; a column stored as objects on either side is stored as
// objects in the result.
func (t *Table) Append(other *Table) (out *Table, err error) {
	timer := metrics.NewTimer("append")
	defer func() { observe(timer, err) }()

	switch {
	case other.Empty():
		return t.Copy(), nil
	case t.Empty():
		return other.Copy(), nil
	}

	rows, err := t.rows.Append(other.rows)
	if err != nil {
		return nil, err
	}

	top, bottom := t.store, other.store
	if !sameLayout(top, bottom) {
		columns := t.Columns().Union(other.Columns())
		objects := t.ObjectColumns().Union(other.ObjectColumns())
		if top, err = conformLayout(top, columns, objects); err != nil {
			return nil, err
		}
		if bottom, err = conformLayout(bottom, columns, objects); err != nil {
			return nil, err
		}
	}

	store, err := top.VStack(bottom)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: store}, nil
}

func sameLayout(a, b *blockstore.Store) bool {
	return a.Columns().Equals(b.Columns()) &&
		a.NumericColumns().Equals(b.NumericColumns()) &&
		a.ObjectColumns().Equals(b.ObjectColumns())
}

func conformLayout(s *blockstore.Store, columns, objects *index.Index) (*blockstore.Store, error) {
	out, err := s.ReindexColumns(columns, "append")
	if err != nil {
		return nil, err
	}
	return out.WithObjectColumns(objects)
}

// JoinOn left-joins other onto t by matching the values of column on
// against other's row labels. Rows without a match get nulls in other's
// columns. Columns present in both tables are rejected.
func (t *Table) JoinOn(other *Table, on index.Label) (out *Table, err error) {
	timer := metrics.NewTimer("join")
	defer func() { observe(timer, err) }()

	if other.rows.Len() == 0 {
		return t.Copy(), nil
	}
	on = index.Normalize(on)
	keys, err := t.Column(on)
	if err != nil {
		return nil, err
	}
	if overlap := t.Columns().Intersection(other.Columns()); overlap.Len() > 0 {
		return nil, errors.New(errors.ErrorTypeDuplicateLabel, "columns overlap").
			WithDetail("columns", overlap.String())
	}

	positions := pool.GetInts(keys.Len())
	defer pool.PutInts(positions)
	matched := 0
	for i := 0; i < keys.Len(); i++ {
		pos, ok := other.rows.PositionOf(keys.Get(i))
		if !ok {
			pos = align.Sentinel
		} else {
			matched++
		}
		(*positions)[i] = pos
	}
	gathered := other.store.ReindexRows(align.FromPositions(*positions), "join")

	out = t.Copy()
	for _, key := range other.Columns().Labels() {
		col, err := gathered.Column(key)
		if err != nil {
			return nil, err
		}
		if err := out.store.Insert(key, col, blockstore.Append); err != nil {
			return nil, err
		}
	}
	log().Debug("join on column",
		zap.Any("on", on),
		zap.Int("rows", keys.Len()),
		zap.Int("matched", matched))
	return out, nil
}

// Slice returns a copy of rows [start, end). Negative bounds count from the
// end and out-of-range bounds are clamped.
func (t *Table) Slice(start, end int) *Table {
	timer := metrics.NewTimer("slice")
	defer observe(timer, nil)

	rows := t.rows.Slice(start, end)
	if rows.Len() == 0 {
		return &Table{rows: rows, store: t.store.SliceRows(0, 0)}
	}
	first, _ := t.rows.PositionOf(rows.At(0))
	return &Table{rows: rows, store: t.store.SliceRows(first, first+rows.Len())}
}

// Filter keeps the rows whose mask entry is true
func (t *Table) Filter(mask []bool) (out *Table, err error) {
	timer := metrics.NewTimer("filter")
	defer func() { observe(timer, err) }()

	if len(mask) != t.rows.Len() {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"mask has %d entries, table has %d rows", len(mask), t.rows.Len())
	}
	positions := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			positions = append(positions, i)
		}
	}
	rows, err := t.rows.Take(positions)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: t.store.ReindexRows(align.FromPositions(positions), "filter")}, nil
}

// RenameColumns returns a copy with every column label mapped through fn.
// The new labels must be unique.
func (t *Table) RenameColumns(fn func(index.Label) index.Label) (out *Table, err error) {
	timer := metrics.NewTimer("rename")
	defer func() { observe(timer, err) }()

	store, err := t.store.Relabel(fn)
	if err != nil {
		return nil, err
	}
	return &Table{rows: t.rows, store: store}, nil
}
