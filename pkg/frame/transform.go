package frame

import (
	"math"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/blockstore"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/pool"
)

// Transpose swaps rows and columns. A purely numeric table stays numeric
// with its dtype. When object columns exist every transposed column mixes
// values from both blocks, so the whole result is stored as objects, with
// the numeric columns becoming the first rows and the object columns the
// rows beneath them.
func (t *Table) Transpose() (out *Table, err error) {
	timer := metrics.NewTimer("transpose")
	defer func() { observe(timer, err) }()

	var store *blockstore.Store
	if !t.HasObjects() {
		numeric := t.store.Numeric()
		blk, err := block.NewNumeric(numeric.Numeric().T(), t.rows, numeric.DType())
		if err != nil {
			return nil, err
		}
		if store, err = blockstore.FromBlocks(t.rows, blk, nil); err != nil {
			return nil, err
		}
		return &Table{rows: t.Columns(), store: store}, nil
	}

	stacked, err := t.NumericColumns().Append(t.ObjectColumns())
	if err != nil {
		return nil, err
	}
	boxed, err := t.store.Matrix(stacked)
	if err != nil {
		return nil, err
	}
	values := block.Map(boxed.T(), func(v interface{}) interface{} {
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			return nil
		}
		return v
	})
	objects, err := block.NewObject(values, t.rows)
	if err != nil {
		return nil, err
	}
	if store, err = blockstore.FromBlocks(t.rows, block.EmptyNumeric(stacked.Len()), objects); err != nil {
		return nil, err
	}
	log().Debug("transpose merged numeric and object columns",
		zap.Int("numeric_columns", t.NumericColumns().Len()),
		zap.Int("object_columns", t.ObjectColumns().Len()))
	return &Table{rows: stacked, store: store}, nil
}

// Shift moves values down by periods positions (up when negative) keeping
// the row labels. Rows shifted in from outside the table are null, which
// promotes an int or bool numeric block to float64.
func (t *Table) Shift(periods int) *Table {
	timer := metrics.NewTimer("shift")
	defer observe(timer, nil)

	if periods == 0 {
		return t.Copy()
	}
	n := t.rows.Len()
	positions := pool.GetInts(n)
	defer pool.PutInts(positions)
	for i := range *positions {
		p := i - periods
		if p < 0 || p >= n {
			p = align.Sentinel
		}
		(*positions)[i] = p
	}
	return &Table{rows: t.rows, store: t.store.ReindexRows(align.FromPositions(*positions), "shift")}
}

// ShiftBy keeps the values in place and moves every row label by periods
// steps of offset
func (t *Table) ShiftBy(periods int, offset index.Offset) (out *Table, err error) {
	timer := metrics.NewTimer("shift_offset")
	defer func() { observe(timer, err) }()

	rows, err := t.rows.Shift(periods, offset)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: t.store.Copy()}, nil
}

// Xs returns the row labelled label as a column indexed by the table's
// columns.
//
// Without copy the result is a view of the numeric block's row that shares
// storage with the table and reports the block dtype, which requires the
// table to have no object columns. With copy a numeric-only row keeps the
// block dtype and a mixed row is returned as objects in logical column order.
func (t *Table) Xs(label index.Label, copy bool) (out columnar.Column, err error) {
	timer := metrics.NewTimer("xs")
	defer func() { observe(timer, err) }()

	label = index.Normalize(label)
	pos, ok := t.rows.PositionOf(label)
	if !ok {
		return nil, errors.New(errors.ErrorTypeMissingLabel, "no cross-section for label").
			WithDetail("label", label)
	}

	if t.HasObjects() {
		if !copy {
			return nil, errors.New(errors.ErrorTypeValidation, "cannot get a view of a mixed-type cross-section")
		}
		values := make([]interface{}, t.Columns().Len())
		for j, key := range t.Columns().Labels() {
			blk, p, _ := t.store.Locate(key)
			v := blk.Box(pos, p)
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				v = nil
			}
			values[j] = v
		}
		return columnar.WithIndex(columnar.NewObjectColumn(values), t.Columns())
	}

	numeric := t.store.Numeric()
	row := numeric.Numeric().Row(pos)
	if !copy {
		view, err := columnar.NewFloatView(row, columnTypeOf(numeric.DType()))
		if err != nil {
			return nil, err
		}
		return columnar.WithIndex(view, t.Columns())
	}

	var col columnar.Column
	switch numeric.DType() {
	case block.Int64:
		ints := make([]int64, len(row))
		for j, v := range row {
			ints[j] = int64(v)
		}
		col = columnar.NewIntColumn(ints)
	case block.Bool:
		bools := make([]bool, len(row))
		for j, v := range row {
			bools[j] = v != 0
		}
		col = columnar.NewBoolColumn(bools)
	default:
		floats := make([]float64, len(row))
		for j, v := range row {
			floats[j] = v
		}
		col = columnar.NewFloatColumn(floats)
	}
	return columnar.WithIndex(col, t.Columns())
}
