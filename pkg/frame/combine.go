package frame

import (
	"math"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/blockstore"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// BinaryOp combines two cells
type BinaryOp func(a, b float64) float64

// Elementwise arithmetic. NaN propagates through all of them.
var (
	Add BinaryOp = func(a, b float64) float64 { return a + b }
	Sub BinaryOp = func(a, b float64) float64 { return a - b }
	Mul BinaryOp = func(a, b float64) float64 { return a * b }
	Div BinaryOp = func(a, b float64) float64 { return a / b }
	Pow BinaryOp = math.Pow
)

// Combine applies op elementwise to the numeric columns of t and other after
// aligning both onto the union of their rows and of their numeric columns.
// Cells missing from either side are null.
//
// When both tables are empty the result is an empty table on the union of
// rows. When only one is empty the result has the other's rows and numeric
// columns, entirely null. Object columns do not take part and are absent
// from the result.
func (t *Table) Combine(other *Table, op BinaryOp) (out *Table, err error) {
	timer := metrics.NewTimer("combine")
	defer func() { observe(timer, err) }()

	rows := t.rows.Union(other.rows)
	switch {
	case t.Empty() && other.Empty():
		log().Debug("combine of two empty tables", zap.Int("rows", rows.Len()))
		return Empty(rows), nil
	case t.Empty():
		log().Debug("combine with empty left operand", zap.Int("rows", other.rows.Len()))
		return other.nulled(), nil
	case other.Empty():
		log().Debug("combine with empty right operand", zap.Int("rows", t.rows.Len()))
		return t.nulled(), nil
	}

	if t.HasObjects() || other.HasObjects() {
		log().Debug("combine ignores object columns",
			zap.Int("left", t.ObjectColumns().Len()),
			zap.Int("right", other.ObjectColumns().Len()))
	}

	columns := t.NumericColumns().Union(other.NumericColumns())
	left, err := t.numericOn(rows, columns, "combine")
	if err != nil {
		return nil, err
	}
	right, err := other.numericOn(rows, columns, "combine")
	if err != nil {
		return nil, err
	}

	values, err := block.Zip(left, right, op)
	if err != nil {
		return nil, err
	}
	return FromMatrix(values, rows, columns)
}

// numericOn returns the numeric block aligned onto rows and columns, with
// null cells wherever the table has no value
func (t *Table) numericOn(rows, columns *index.Index, operation string) (*block.Dense[float64], error) {
	aligned, err := t.reindexRows(rows, align.None, operation)
	if err != nil {
		return nil, err
	}
	numeric := aligned.store.Numeric()
	if numeric.Columns().Equals(columns) {
		return numeric.Numeric(), nil
	}
	ix, err := align.GetIndexer(numeric.Columns(), columns, align.None)
	if err != nil {
		return nil, err
	}
	return numeric.TakeColumns(ix, columns).Numeric(), nil
}

// nulled returns the table's rows and numeric columns with every cell null
func (t *Table) nulled() *Table {
	columns := t.NumericColumns()
	values := block.NewDense[float64](t.rows.Len(), columns.Len())
	for k := range values.Data() {
		values.Data()[k] = math.NaN()
	}
	// shapes come from the table itself
	out, _ := FromMatrix(values, t.rows, columns)
	return out
}

// CombineMatchingRows applies op between every numeric column and other,
// which is matched to rows by label. Both sides are aligned onto the union
// of the row labels. A positional other must have one value per row.
func (t *Table) CombineMatchingRows(other columnar.Column, op BinaryOp) (out *Table, err error) {
	timer := metrics.NewTimer("combine_rows")
	defer func() { observe(timer, err) }()

	vec, rows, err := t.vector(other, t.rows)
	if err != nil {
		return nil, err
	}
	values, err := t.numericOn(rows, t.NumericColumns(), "combine_rows")
	if err != nil {
		return nil, err
	}

	result := block.NewDense[float64](values.Rows(), values.Cols())
	for i := 0; i < values.Rows(); i++ {
		src, dst := values.Row(i), result.Row(i)
		for j := range src {
			dst[j] = op(src[j], vec[i])
		}
	}
	return FromMatrix(result, rows, t.NumericColumns())
}

// CombineMatchingColumns applies op between every row and other, whose
// labels name columns. The result spans the union of the numeric columns
// and other's labels.
func (t *Table) CombineMatchingColumns(other columnar.Column, op BinaryOp) (out *Table, err error) {
	timer := metrics.NewTimer("combine_columns")
	defer func() { observe(timer, err) }()

	vec, columns, err := t.vector(other, t.NumericColumns())
	if err != nil {
		return nil, err
	}
	values, err := t.numericOn(t.rows, columns, "combine_columns")
	if err != nil {
		return nil, err
	}

	result := block.NewDense[float64](values.Rows(), values.Cols())
	for i := 0; i < values.Rows(); i++ {
		src, dst := values.Row(i), result.Row(i)
		for j := range src {
			dst[j] = op(src[j], vec[j])
		}
	}
	return FromMatrix(result, t.rows, columns)
}

// vector aligns other onto the union of axis and its own labels and returns
// its float values with the union. Positional vectors must match axis.
func (t *Table) vector(other columnar.Column, axis *index.Index) ([]float64, *index.Index, error) {
	union := axis
	if other.Index() != nil {
		union = axis.Union(other.Index())
	}
	conformed, err := blockstore.Conform(other, union)
	if err != nil {
		return nil, nil, err
	}
	vec, err := columnar.ToFloat64s(conformed)
	if err != nil {
		return nil, nil, err
	}
	return vec, union, nil
}

// CombineScalar applies op between every numeric cell and value. Object
// columns are carried over unchanged.
func (t *Table) CombineScalar(value float64, op BinaryOp) (out *Table, err error) {
	timer := metrics.NewTimer("combine_scalar")
	defer func() { observe(timer, err) }()

	if t.Empty() {
		return t.Copy(), nil
	}
	return t.mapNumeric(func(v float64) float64 { return op(v, value) })
}

// mapNumeric applies fn to every numeric cell, copying the object block
func (t *Table) mapNumeric(fn func(float64) float64) (*Table, error) {
	values := block.Map(t.store.Numeric().Numeric(), fn)
	return t.withNumeric(values, block.Float64)
}

// withNumeric replaces the numeric values, keeping labels and a copy of the
// object block
func (t *Table) withNumeric(values *block.Dense[float64], dtype block.DType) (*Table, error) {
	numeric, err := block.NewNumeric(values, t.NumericColumns(), dtype)
	if err != nil {
		return nil, err
	}
	var objects *block.Block
	if t.HasObjects() {
		objects = t.store.Objects().Copy()
	}
	store, err := blockstore.FromBlocks(t.Columns(), numeric, objects)
	if err != nil {
		return nil, err
	}
	return &Table{rows: t.rows, store: store}, nil
}
