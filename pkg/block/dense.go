package block

import (
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Axis selects rows or columns of a 2-D array
type Axis int

const (
	// AxisRows addresses the first dimension
	AxisRows Axis = 0
	// AxisColumns addresses the second dimension
	AxisColumns Axis = 1
)

// Other returns the opposite axis
func (a Axis) Other() Axis {
	if a == AxisRows {
		return AxisColumns
	}
	return AxisRows
}

// Dense is a row-major 2-D array of homogeneous values
type Dense[T any] struct {
	rows, cols int
	data       []T
}

// NewDense allocates a zero-filled rows x cols array
func NewDense[T any](rows, cols int) *Dense[T] {
	return &Dense[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// DenseFrom wraps row-major data without copying
func DenseFrom[T any](rows, cols int, data []T) (*Dense[T], error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"%d values cannot fill a %dx%d array", len(data), rows, cols)
	}
	return &Dense[T]{rows: rows, cols: cols, data: data}, nil
}

// DenseFromColumns stacks equal-length columns side by side
func DenseFromColumns[T any](rows int, columns [][]T) (*Dense[T], error) {
	d := NewDense[T](rows, len(columns))
	for j, col := range columns {
		if len(col) != rows {
			return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
				"column %d has %d values, expected %d", j, len(col), rows)
		}
		d.SetCol(j, col)
	}
	return d, nil
}

// Rows returns the first dimension
func (d *Dense[T]) Rows() int { return d.rows }

// Cols returns the second dimension
func (d *Dense[T]) Cols() int { return d.cols }

// Data returns the row-major backing slice
func (d *Dense[T]) Data() []T { return d.data }

// At returns element (i, j)
func (d *Dense[T]) At(i, j int) T { return d.data[i*d.cols+j] }

// Set assigns element (i, j)
func (d *Dense[T]) Set(i, j int, v T) { d.data[i*d.cols+j] = v }

// Row returns row i as a view into the backing slice
func (d *Dense[T]) Row(i int) []T {
	return d.data[i*d.cols : (i+1)*d.cols : (i+1)*d.cols]
}

// Col returns a copy of column j
func (d *Dense[T]) Col(j int) []T {
	out := make([]T, d.rows)
	for i := 0; i < d.rows; i++ {
		out[i] = d.data[i*d.cols+j]
	}
	return out
}

// SetCol overwrites column j
func (d *Dense[T]) SetCol(j int, values []T) {
	for i := 0; i < d.rows; i++ {
		d.data[i*d.cols+j] = values[i]
	}
}

// Clone returns a deep copy
func (d *Dense[T]) Clone() *Dense[T] {
	data := make([]T, len(d.data))
	copy(data, d.data)
	return &Dense[T]{rows: d.rows, cols: d.cols, data: data}
}

// T returns the transpose as a new array
func (d *Dense[T]) T() *Dense[T] {
	out := NewDense[T](d.cols, d.rows)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			out.data[j*d.rows+i] = d.data[i*d.cols+j]
		}
	}
	return out
}

// Take gathers positions along axis. Where mask is false the destination is
// filled with null instead; a nil mask means every position is valid.
func (d *Dense[T]) Take(axis Axis, positions []int, mask []bool, null T) *Dense[T] {
	valid := func(k int) bool { return mask == nil || mask[k] }

	if axis == AxisRows {
		out := NewDense[T](len(positions), d.cols)
		for k, p := range positions {
			dst := out.data[k*d.cols : (k+1)*d.cols]
			if !valid(k) {
				for j := range dst {
					dst[j] = null
				}
				continue
			}
			copy(dst, d.data[p*d.cols:(p+1)*d.cols])
		}
		return out
	}

	out := NewDense[T](d.rows, len(positions))
	for i := 0; i < d.rows; i++ {
		src := d.data[i*d.cols : (i+1)*d.cols]
		dst := out.data[i*len(positions) : (i+1)*len(positions)]
		for k, p := range positions {
			if valid(k) {
				dst[k] = src[p]
			} else {
				dst[k] = null
			}
		}
	}
	return out
}

// InsertCol returns a copy with values inserted as column loc
func (d *Dense[T]) InsertCol(loc int, values []T) *Dense[T] {
	out := NewDense[T](d.rows, d.cols+1)
	for i := 0; i < d.rows; i++ {
		src := d.data[i*d.cols : (i+1)*d.cols]
		dst := out.data[i*out.cols : (i+1)*out.cols]
		copy(dst[:loc], src[:loc])
		dst[loc] = values[i]
		copy(dst[loc+1:], src[loc:])
	}
	return out
}

// DeleteCol returns a copy without column loc
func (d *Dense[T]) DeleteCol(loc int) *Dense[T] {
	out := NewDense[T](d.rows, d.cols-1)
	for i := 0; i < d.rows; i++ {
		src := d.data[i*d.cols : (i+1)*d.cols]
		dst := out.data[i*out.cols : (i+1)*out.cols]
		copy(dst[:loc], src[:loc])
		copy(dst[loc:], src[loc+1:])
	}
	return out
}

// SliceRows returns a copy of rows [start, end)
func (d *Dense[T]) SliceRows(start, end int) *Dense[T] {
	data := make([]T, (end-start)*d.cols)
	copy(data, d.data[start*d.cols:end*d.cols])
	return &Dense[T]{rows: end - start, cols: d.cols, data: data}
}

// VStack stacks b beneath a
func VStack[T any](a, b *Dense[T]) (*Dense[T], error) {
	if a.cols != b.cols {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"cannot stack %d columns on %d columns", b.cols, a.cols)
	}
	data := make([]T, 0, len(a.data)+len(b.data))
	data = append(data, a.data...)
	data = append(data, b.data...)
	return &Dense[T]{rows: a.rows + b.rows, cols: a.cols, data: data}, nil
}

// HStack places b to the right of a
func HStack[T any](a, b *Dense[T]) (*Dense[T], error) {
	if a.rows != b.rows {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"cannot join %d rows to %d rows", b.rows, a.rows)
	}
	out := NewDense[T](a.rows, a.cols+b.cols)
	for i := 0; i < a.rows; i++ {
		dst := out.data[i*out.cols : (i+1)*out.cols]
		copy(dst, a.data[i*a.cols:(i+1)*a.cols])
		copy(dst[a.cols:], b.data[i*b.cols:(i+1)*b.cols])
	}
	return out, nil
}

// Map returns a new array with fn applied to every element
func Map[T, U any](d *Dense[T], fn func(T) U) *Dense[U] {
	out := NewDense[U](d.rows, d.cols)
	for k, v := range d.data {
		out.data[k] = fn(v)
	}
	return out
}

// Zip combines two equally shaped arrays elementwise
func Zip[T any](a, b *Dense[T], fn func(x, y T) T) (*Dense[T], error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"cannot combine %dx%d with %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	out := NewDense[T](a.rows, a.cols)
	for k := range a.data {
		out.data[k] = fn(a.data[k], b.data[k])
	}
	return out, nil
}
