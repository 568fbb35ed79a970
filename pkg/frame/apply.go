package frame

import (
	"math"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// Apply maps fn over every numeric cell. The result block is float64 and
// object columns are carried over unchanged.
func (t *Table) Apply(fn func(float64) float64) (out *Table, err error) {
	timer := metrics.NewTimer("apply")
	defer func() { observe(timer, err) }()

	if t.Columns().Len() == 0 {
		return t.Copy(), nil
	}
	return t.mapNumeric(fn)
}

// ApplyMap maps fn over every cell of every column. Numeric nulls reach fn
// as NaN and object nulls as nil. Each resulting column is re-inferred, so
// a column can move between the numeric and object blocks.
func (t *Table) ApplyMap(fn func(interface{}) interface{}) (out *Table, err error) {
	timer := metrics.NewTimer("apply_map")
	defer func() { observe(timer, err) }()

	boxed, err := t.store.Matrix(nil)
	if err != nil {
		return nil, err
	}
	mapped := block.Map(boxed, fn)

	data := make(map[index.Label]interface{}, t.Columns().Len())
	for j, key := range t.Columns().Labels() {
		data[key] = columnar.FromValues(mapped.Col(j))
	}
	return New(data, WithIndex(t.rows), WithColumns(t.Columns()))
}

// Reduce folds the numeric block along axis. AxisRows yields one value per
// numeric column indexed by column label; AxisColumns yields one value per
// row indexed by the rows.
func (t *Table) Reduce(fn func([]float64) float64, axis block.Axis) (out columnar.Column, err error) {
	timer := metrics.NewTimer("reduce")
	defer func() { observe(timer, err) }()

	if err := checkAxis(axis); err != nil {
		return nil, err
	}

	values := t.store.Numeric().Numeric()
	if axis == block.AxisRows {
		result := make([]float64, values.Cols())
		for j := range result {
			result[j] = fn(values.Col(j))
		}
		return columnar.WithIndex(columnar.NewFloatColumn(result), t.NumericColumns())
	}

	result := make([]float64, values.Rows())
	for i := range result {
		row := make([]float64, values.Cols())
		for j := range row {
			row[j] = values.At(i, j)
		}
		result[i] = fn(row)
	}
	return columnar.WithIndex(columnar.NewFloatColumn(result), t.rows)
}

// Min returns the minimum along axis ignoring non-finite values. A slice
// with no finite value reduces to +Inf.
func (t *Table) Min(axis block.Axis) (columnar.Column, error) {
	return t.Reduce(func(vals []float64) float64 {
		out := math.Inf(1)
		for _, v := range vals {
			if !math.IsInf(v, 0) && !math.IsNaN(v) && v < out {
				out = v
			}
		}
		return out
	}, axis)
}

// Max returns the maximum along axis ignoring non-finite values. A slice
// with no finite value reduces to -Inf.
func (t *Table) Max(axis block.Axis) (columnar.Column, error) {
	return t.Reduce(func(vals []float64) float64 {
		out := math.Inf(-1)
		for _, v := range vals {
			if !math.IsInf(v, 0) && !math.IsNaN(v) && v > out {
				out = v
			}
		}
		return out
	}, axis)
}

// FillNA replaces numeric nulls with value. Object columns are carried over
// unchanged.
func (t *Table) FillNA(value float64) (out *Table, err error) {
	timer := metrics.NewTimer("fillna")
	defer func() { observe(timer, err) }()

	if t.DType() != block.Float64 {
		return t.Copy(), nil
	}
	return t.mapNumeric(func(v float64) float64 {
		if math.IsNaN(v) {
			return value
		}
		return v
	})
}

// FillNAMethod fills nulls in every column from the previous non-null value
// (Pad) or the next one (Backfill). Leading or trailing nulls with nothing
// to copy stay null.
func (t *Table) FillNAMethod(method align.Method) (out *Table, err error) {
	timer := metrics.NewTimer("fillna_method")
	defer func() { observe(timer, err) }()

	if method != align.Pad && method != align.Backfill {
		return nil, errors.Newf(errors.ErrorTypeValidation, "fill method must be pad or backfill, got %s", method)
	}

	out = t.Copy()
	fillDense(out.store.Numeric().Numeric(), method, math.IsNaN)
	if out.HasObjects() {
		fillDense(out.store.Objects().Objects(), method, func(v interface{}) bool { return v == nil })
	}
	return out, nil
}

func fillDense[T any](d *block.Dense[T], method align.Method, isNull func(T) bool) {
	rows := d.Rows()
	for j := 0; j < d.Cols(); j++ {
		var (
			last T
			have bool
		)
		for k := 0; k < rows; k++ {
			i := k
			if method == align.Backfill {
				i = rows - 1 - k
			}
			v := d.At(i, j)
			if !isNull(v) {
				last, have = v, true
				continue
			}
			if have {
				d.Set(i, j, last)
			}
		}
	}
}
