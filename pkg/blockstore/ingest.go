package blockstore

import (
	"math"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// Ingest builds a store from a mapping of column label to column data.
//
// Values may be columnar.Column values, anything columnar.From accepts, or
// scalars that are broadcast to the row count. rows and columns are
// optional: columns defaults to the sorted data keys, and a requested column
// missing from data becomes an all-null numeric column. The returned index is
// the resolved row index.
func Ingest(data map[index.Label]interface{}, rows, columns *index.Index) (*index.Index, *Store, error) {
	if columns == nil {
		keys := make([]index.Label, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		var err error
		if columns, err = index.New(index.SortLabels(keys)); err != nil {
			return nil, nil, err
		}
	}

	resolved := make(map[index.Label]columnar.Column, columns.Len())
	scalars := make(map[index.Label]interface{})
	for _, key := range columns.Labels() {
		value, ok := lookup(data, key)
		if !ok {
			continue
		}
		if columnar.IsScalar(value) {
			scalars[key] = value
			continue
		}
		col, err := columnar.From(value)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.TypeOf(err), "cannot ingest column").
				WithDetail("column", key)
		}
		resolved[key] = col
	}

	rows, err := resolveRows(rows, columns, resolved, len(scalars) > 0)
	if err != nil {
		return nil, nil, err
	}

	numericCols := make([][]float64, 0, columns.Len())
	numericLabels := make([]index.Label, 0, columns.Len())
	objectCols := make([][]interface{}, 0)
	objectLabels := make([]index.Label, 0)
	dtype, seen := block.Float64, false

	for _, key := range columns.Labels() {
		var col columnar.Column
		switch {
		case resolved[key] != nil:
			col, err = Conform(resolved[key], rows)
			if err != nil {
				return nil, nil, errors.Wrap(err, errors.TypeOf(err), "cannot align column").
					WithDetail("column", key)
			}
		case scalars[key] != nil:
			col = columnar.Repeat(scalars[key], rows.Len())
		default:
			col = nullColumn(rows.Len())
		}

		if col.Type().IsNumeric() {
			vals, err := columnar.ToFloat64s(col)
			if err != nil {
				return nil, nil, err
			}
			colType := DTypeOf(col)
			if !seen {
				dtype, seen = colType, true
			} else {
				dtype = block.CommonDType(dtype, colType)
			}
			numericCols = append(numericCols, vals)
			numericLabels = append(numericLabels, key)
			continue
		}
		objectCols = append(objectCols, columnar.ToObjects(col))
		objectLabels = append(objectLabels, key)
	}

	store, err := stack(rows.Len(), columns, numericLabels, numericCols, dtype, objectLabels, objectCols)
	if err != nil {
		return nil, nil, err
	}
	return rows, store, nil
}

// stack assembles segregated column groups into blocks
func stack(rows int, columns *index.Index,
	numericLabels []index.Label, numericCols [][]float64, dtype block.DType,
	objectLabels []index.Label, objectCols [][]interface{}) (*Store, error) {

	numDense, err := block.DenseFromColumns(rows, numericCols)
	if err != nil {
		return nil, err
	}
	numIdx, err := index.New(numericLabels)
	if err != nil {
		return nil, err
	}
	numeric, err := block.NewNumeric(numDense, numIdx, dtype)
	if err != nil {
		return nil, err
	}

	var objects *block.Block
	if len(objectCols) > 0 {
		objDense, err := block.DenseFromColumns(rows, objectCols)
		if err != nil {
			return nil, err
		}
		objIdx, err := index.New(objectLabels)
		if err != nil {
			return nil, err
		}
		if objects, err = block.NewObject(objDense, objIdx); err != nil {
			return nil, err
		}
	}
	return FromBlocks(columns, numeric, objects)
}

// resolveRows picks the row index: explicit, else the sorted union of the
// columns' own indexes, else a default range sized to the longest column
func resolveRows(rows, columns *index.Index, resolved map[index.Label]columnar.Column, hasScalars bool) (*index.Index, error) {
	if rows != nil {
		return rows, nil
	}

	union, indexed, longest := index.Empty(), false, 0
	for _, key := range columns.Labels() {
		col := resolved[key]
		if col == nil {
			continue
		}
		if col.Index() != nil {
			union = union.Union(col.Index())
			indexed = true
		}
		if col.Len() > longest {
			longest = col.Len()
		}
	}

	if indexed {
		return index.New(index.SortLabels(union.Labels()))
	}
	if len(resolved) == 0 && hasScalars {
		return nil, errors.New(errors.ErrorTypeValidation, "scalar columns require an explicit row index")
	}
	return index.Range(longest), nil
}

// Conform homogenizes col onto rows. Index-bearing columns are aligned by
// label with misses filled by null; positional columns must already have the
// right length.
func Conform(col columnar.Column, rows *index.Index) (columnar.Column, error) {
	if col.Index() == nil {
		if col.Len() != rows.Len() {
			return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
				"column has %d values, expected %d", col.Len(), rows.Len())
		}
		return col, nil
	}
	if col.Index().Equals(rows) {
		return col, nil
	}
	ix, err := align.GetIndexer(col.Index(), rows, align.None)
	if err != nil {
		return nil, err
	}
	return columnar.Take(col, ix), nil
}

// DTypeOf maps a numeric column type onto its block dtype
func DTypeOf(col columnar.Column) block.DType {
	switch col.Type() {
	case columnar.ColumnTypeInt:
		return block.Int64
	case columnar.ColumnTypeBool:
		return block.Bool
	default:
		return block.Float64
	}
}

func nullColumn(n int) columnar.Column {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return columnar.NewFloatColumn(vals)
}

// lookup finds key in data, accepting map keys that normalize to key
func lookup(data map[index.Label]interface{}, key index.Label) (interface{}, bool) {
	if v, ok := data[key]; ok {
		return v, true
	}
	for k, v := range data {
		if index.Normalize(k) == key {
			return v, true
		}
	}
	return nil, false
}
