// Package frame provides Table, a labelled two-dimensional table backed by
// dtype-segregated block storage.
//
// A Table pairs a row index with a blockstore.Store holding the columns.
// Numeric columns share one float64 block and every other column lives in an
// object block. Operations that return a *Table allocate fresh storage
// unless documented otherwise; Insert, InsertAt and Delete mutate in place.
package frame

import (
	"math"
	"reflect"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/blockstore"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

var collector = metrics.NewCollector("frame")

// Table is a row index plus segregated column storage
type Table struct {
	rows  *index.Index
	store *blockstore.Store
}

type options struct {
	rows    *index.Index
	columns *index.Index
}

// Option configures New
type Option func(*options)

// WithIndex sets the row index. Index-bearing columns are aligned onto it.
func WithIndex(rows *index.Index) Option {
	return func(o *options) { o.rows = rows }
}

// WithColumns selects and orders the columns. Columns absent from the data
// become all-null numeric columns.
func WithColumns(columns *index.Index) Option {
	return func(o *options) { o.columns = columns }
}

// New builds a table from a mapping of column label to column data. Values
// may be columnar.Column values, slices, label maps or scalars.
func New(data map[index.Label]interface{}, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rows, store, err := blockstore.Ingest(data, o.rows, o.columns)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: store}, nil
}

// Empty returns a table with the given rows and no columns. A nil index
// means no rows.
func Empty(rows *index.Index) *Table {
	if rows == nil {
		rows = index.Empty()
	}
	return &Table{rows: rows, store: blockstore.New(rows.Len())}
}

// FromMatrix wraps a float64 array. A nil rows or columns index defaults to
// a positional range. The array is not copied.
func FromMatrix(values *block.Dense[float64], rows, columns *index.Index) (*Table, error) {
	return fromNumeric(values, rows, columns, block.Float64)
}

// FromIntMatrix wraps int64 values as an Int64 numeric block
func FromIntMatrix(values *block.Dense[int64], rows, columns *index.Index) (*Table, error) {
	floats := block.Map(values, func(v int64) float64 { return float64(v) })
	return fromNumeric(floats, rows, columns, block.Int64)
}

func fromNumeric(values *block.Dense[float64], rows, columns *index.Index, dtype block.DType) (*Table, error) {
	rows, columns, err := axes(values.Rows(), values.Cols(), rows, columns)
	if err != nil {
		return nil, err
	}
	numeric, err := block.NewNumeric(values, columns, dtype)
	if err != nil {
		return nil, err
	}
	store, err := blockstore.FromBlocks(columns, numeric, nil)
	if err != nil {
		return nil, err
	}
	return &Table{rows: rows, store: store}, nil
}

// FromObjects wraps a boxed array. Each column is inferred separately, so
// numeric columns land in the numeric block.
func FromObjects(values *block.Dense[interface{}], rows, columns *index.Index) (*Table, error) {
	rows, columns, err := axes(values.Rows(), values.Cols(), rows, columns)
	if err != nil {
		return nil, err
	}
	data := make(map[index.Label]interface{}, columns.Len())
	for j, key := range columns.Labels() {
		data[key] = columnar.FromValues(values.Col(j))
	}
	return New(data, WithIndex(rows), WithColumns(columns))
}

func axes(nrows, ncols int, rows, columns *index.Index) (*index.Index, *index.Index, error) {
	if rows == nil {
		rows = index.Range(nrows)
	}
	if columns == nil {
		columns = index.Range(ncols)
	}
	if rows.Len() != nrows {
		return nil, nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"index has %d labels but array has %d rows", rows.Len(), nrows)
	}
	if columns.Len() != ncols {
		return nil, nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"columns has %d labels but array has %d columns", columns.Len(), ncols)
	}
	return rows, columns, nil
}

// Rows returns the row index
func (t *Table) Rows() *index.Index { return t.rows }

// Columns returns the logical column order
func (t *Table) Columns() *index.Index { return t.store.Columns() }

// NumericColumns returns the columns held in the numeric block
func (t *Table) NumericColumns() *index.Index { return t.store.NumericColumns() }

// ObjectColumns returns the columns held in the object block
func (t *Table) ObjectColumns() *index.Index { return t.store.ObjectColumns() }

// Shape returns the row and column counts
func (t *Table) Shape() (rows, columns int) {
	return t.rows.Len(), t.store.Columns().Len()
}

// Empty reports whether the table has no rows or no columns
func (t *Table) Empty() bool {
	return t.rows.Len() == 0 || t.store.Columns().Len() == 0
}

// HasObjects reports whether any column is stored as objects
func (t *Table) HasObjects() bool { return t.store.HasObjects() }

// DType returns the dtype of the numeric block
func (t *Table) DType() block.DType { return t.store.Numeric().DType() }

// Contains reports whether key is a column
func (t *Table) Contains(key index.Label) bool {
	return t.store.Columns().Contains(index.Normalize(key))
}

// Column extracts key as a column indexed by the table's rows
func (t *Table) Column(key index.Label) (columnar.Column, error) {
	col, err := t.store.Column(index.Normalize(key))
	if err != nil {
		return nil, err
	}
	return columnar.WithIndex(col, t.rows)
}

// ColumnType reports how key is stored: Int, Bool or Float for numeric
// columns and Object otherwise
func (t *Table) ColumnType(key index.Label) (columnar.ColumnType, error) {
	blk, _, ok := t.store.Locate(index.Normalize(key))
	if !ok {
		return columnar.ColumnTypeObject, errors.New(errors.ErrorTypeMissingColumn, "column not found").
			WithDetail("column", key)
	}
	if !blk.IsNumeric() {
		return columnar.ColumnTypeObject, nil
	}
	return columnTypeOf(blk.DType()), nil
}

func columnTypeOf(dtype block.DType) columnar.ColumnType {
	switch dtype {
	case block.Int64:
		return columnar.ColumnTypeInt
	case block.Bool:
		return columnar.ColumnTypeBool
	default:
		return columnar.ColumnTypeFloat
	}
}

// Store exposes the underlying storage
func (t *Table) Store() *blockstore.Store { return t.store }

// Copy returns a deep copy
func (t *Table) Copy() *Table {
	return &Table{rows: t.rows, store: t.store.Copy()}
}

// Equals reports whether both tables have the same labels, storage layout
// and values, treating nulls as equal
func (t *Table) Equals(other *Table) bool {
	if !t.rows.Equals(other.rows) ||
		!t.Columns().Equals(other.Columns()) ||
		!t.NumericColumns().Equals(other.NumericColumns()) {
		return false
	}
	a, errA := t.ToMatrix(nil)
	b, errB := other.ToMatrix(nil)
	if errA != nil || errB != nil {
		return false
	}
	for k, v := range a.Data() {
		if !sameValue(v, b.Data()[k]) {
			return false
		}
	}
	return true
}

func sameValue(a, b interface{}) bool {
	fa, okA := a.(float64)
	fb, okB := b.(float64)
	if okA && okB {
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	}
	return reflect.DeepEqual(index.Normalize(a), index.Normalize(b))
}

// observe records one public operation
func observe(timer *metrics.Timer, err error) {
	collector.ObserveOperation(timer.Name(), timer.Stop(), err)
}

func log() *zap.Logger {
	return logger.With(zap.String("component", "frame"))
}
