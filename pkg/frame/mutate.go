package frame

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/blockstore"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// Insert sets column key to value, appending it when key is new. Scalars
// are broadcast; index-bearing columns are aligned onto the rows with misses
// becoming null. A numeric column that receives values which cannot be cast
// to float64 moves to the object block.
func (t *Table) Insert(key index.Label, value interface{}) error {
	return t.InsertAt(blockstore.Append, key, value)
}

// InsertAt is Insert with an explicit logical position for new columns.
// blockstore.Append places the column last.
func (t *Table) InsertAt(loc int, key index.Label, value interface{}) (err error) {
	timer := metrics.NewTimer("insert")
	defer func() { observe(timer, err) }()

	col, err := t.conform(value)
	if err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "cannot insert column").
			WithDetail("column", key)
	}
	return t.store.Insert(key, col, loc)
}

// conform turns value into a positional column of the table's length
func (t *Table) conform(value interface{}) (columnar.Column, error) {
	if columnar.IsScalar(value) {
		return columnar.Repeat(value, t.rows.Len()), nil
	}
	col, err := columnar.From(value)
	if err != nil {
		return nil, err
	}
	return blockstore.Conform(col, t.rows)
}

// Delete removes column key
func (t *Table) Delete(key index.Label) (err error) {
	timer := metrics.NewTimer("delete")
	defer func() { observe(timer, err) }()

	key = index.Normalize(key)
	if err := t.store.Delete(key); err != nil {
		return err
	}
	log().Debug("column deleted",
		zap.Any("column", key),
		zap.Int("numeric_columns", t.store.NumericColumns().Len()),
		zap.Int("object_columns", t.store.ObjectColumns().Len()))
	return nil
}

// ToMatrix materializes columns, nil meaning every column, as one boxed
// array in the requested order. Int and bool columns box as int64 and bool.
func (t *Table) ToMatrix(columns *index.Index) (*block.Dense[interface{}], error) {
	return t.store.Matrix(columns)
}

// NumericMatrix materializes numeric columns, nil meaning all of them, as a
// float64 copy
func (t *Table) NumericMatrix(columns *index.Index) (*block.Dense[float64], error) {
	return t.store.NumericMatrix(columns)
}

// SetValues always fails: the matrix view is derived from the blocks and
// cannot be replaced wholesale
func (t *Table) SetValues(*block.Dense[interface{}]) error {
	return errors.New(errors.ErrorTypeInvalidAssignment,
		"matrix values are derived from the column blocks; insert columns instead")
}
