package blockstore

import (
	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// Column extracts key as a positional column. Numeric columns come back in
// their logical dtype; object columns as an object column.
func (s *Store) Column(key index.Label) (columnar.Column, error) {
	blk, pos, ok := s.Locate(key)
	if !ok {
		return nil, errors.New(errors.ErrorTypeMissingColumn, "column not found").
			WithDetail("column", key)
	}
	if !blk.IsNumeric() {
		return columnar.NewObjectColumn(blk.Objects().Col(pos)), nil
	}

	vals := blk.ColumnFloats(pos)
	switch blk.DType() {
	case block.Int64:
		ints := make([]int64, len(vals))
		for i, v := range vals {
			ints[i] = int64(v)
		}
		return columnar.NewIntColumn(ints), nil
	case block.Bool:
		bools := make([]bool, len(vals))
		for i, v := range vals {
			bools[i] = v != 0
		}
		return columnar.NewBoolColumn(bools), nil
	default:
		return columnar.NewFloatColumn(vals), nil
	}
}

// Matrix materializes columns (nil meaning every logical column) as one
// boxed 2-D array in the requested order
func (s *Store) Matrix(columns *index.Index) (*block.Dense[interface{}], error) {
	if columns == nil {
		columns = s.columns
	}
	ix, err := align.GetIndexer(s.columns, columns, align.None)
	if err != nil {
		return nil, err
	}
	if !ix.AllValid() {
		missing := columns.Exclude(s.columns)
		return nil, errors.New(errors.ErrorTypeMissingColumn, "column not found").
			WithDetail("column", missing.String())
	}

	// owner and offset give the block and in-block position of each
	// logical column
	owner := make([]*block.Block, s.columns.Len())
	offset := make([]int, s.columns.Len())
	counts := map[*block.Block]int{}
	for loc, key := range s.columns.Labels() {
		blk := s.objects
		if s.numeric.Columns().Contains(key) {
			blk = s.numeric
		}
		owner[loc], offset[loc] = blk, counts[blk]
		counts[blk]++
	}

	out := block.NewDense[interface{}](s.rows, columns.Len())
	for j, loc := range ix.Positions {
		blk, pos := owner[loc], offset[loc]
		for i := 0; i < s.rows; i++ {
			out.Set(i, j, blk.Box(i, pos))
		}
	}
	return out, nil
}

// NumericMatrix materializes numeric columns (nil meaning every numeric
// column) as a float64 array. Object columns are rejected.
func (s *Store) NumericMatrix(columns *index.Index) (*block.Dense[float64], error) {
	if columns == nil {
		return s.numeric.Numeric().Clone(), nil
	}
	ix := make([]int, columns.Len())
	for j, key := range columns.Labels() {
		pos, ok := s.numeric.Columns().PositionOf(key)
		if !ok {
			if s.ObjectColumns().Contains(key) {
				return nil, errors.New(errors.ErrorTypeValidation, "column is not numeric").
					WithDetail("column", key)
			}
			return nil, errors.New(errors.ErrorTypeMissingColumn, "column not found").
				WithDetail("column", key)
		}
		ix[j] = pos
	}
	return s.numeric.Numeric().Take(block.AxisColumns, ix, nil, 0), nil
}
