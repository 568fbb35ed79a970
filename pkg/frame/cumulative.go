package frame

import (
	"math"

	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/pool"
)

// CumSum returns running sums of the numeric columns along axis. Nulls
// count as zero, but a cell stays null until the first non-null value along
// the axis has been seen. Int and bool blocks hold no nulls and accumulate
// as Int64. Object columns are carried over unchanged.
func (t *Table) CumSum(axis block.Axis) (out *Table, err error) {
	timer := metrics.NewTimer("cumsum")
	defer func() { observe(timer, err) }()

	if err := checkAxis(axis); err != nil {
		return nil, err
	}

	numeric := t.store.Numeric()
	src := numeric.Numeric()
	dst := block.NewDense[float64](src.Rows(), src.Cols())
	if numeric.DType() != block.Float64 {
		cumsum(src, dst, axis, false)
		return t.withNumeric(dst, block.Int64)
	}
	cumsum(src, dst, axis, true)
	return t.withNumeric(dst, block.Float64)
}

func checkAxis(axis block.Axis) error {
	if axis != block.AxisRows && axis != block.AxisColumns {
		return errors.Newf(errors.ErrorTypeValidation, "invalid axis %d", int(axis))
	}
	return nil
}

func cumsum(src, dst *block.Dense[float64], axis block.Axis, skipNulls bool) {
	if axis == block.AxisColumns {
		for i := 0; i < src.Rows(); i++ {
			var (
				sum  float64
				seen bool
			)
			in, out := src.Row(i), dst.Row(i)
			for j, v := range in {
				out[j] = accumulate(&sum, &seen, v, skipNulls)
			}
		}
		return
	}

	sums := pool.GetFloats(src.Cols())
	defer pool.PutFloats(sums)
	seen := pool.GetBools(src.Cols())
	defer pool.PutBools(seen)

	for i := 0; i < src.Rows(); i++ {
		in, out := src.Row(i), dst.Row(i)
		for j, v := range in {
			out[j] = accumulate(&(*sums)[j], &(*seen)[j], v, skipNulls)
		}
	}
}

func accumulate(sum *float64, seen *bool, v float64, skipNulls bool) float64 {
	if skipNulls && math.IsNaN(v) {
		if !*seen {
			return math.NaN()
		}
		return *sum
	}
	*sum += v
	*seen = true
	return *sum
}
