package frame

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/testutil"
)

var nan = math.NaN()

func mustTable(t *testing.T, data map[index.Label]interface{}, opts ...Option) *Table {
	t.Helper()
	tbl, err := New(data, opts...)
	require.NoError(t, err)
	return tbl
}

func values(t *testing.T, tbl *Table, key index.Label) []float64 {
	t.Helper()
	col, err := tbl.Column(key)
	require.NoError(t, err)
	vals, err := columnar.ToFloat64s(col)
	require.NoError(t, err)
	return vals
}

func objects(t *testing.T, tbl *Table, key index.Label) []interface{} {
	t.Helper()
	col, err := tbl.Column(key)
	require.NoError(t, err)
	return columnar.ToObjects(col)
}

func TestNewSegregates(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2, 3},
		"b": []string{"x", "y", "z"},
	})

	rows, cols := tbl.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []index.Label{"a"}, tbl.NumericColumns().Labels())
	assert.Equal(t, []index.Label{"b"}, tbl.ObjectColumns().Labels())
	assert.Equal(t, block.Int64, tbl.DType())
	assert.True(t, tbl.Contains("b"))
	assert.False(t, tbl.Empty())

	typ, err := tbl.ColumnType("a")
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeInt, typ)

	_, err = tbl.ColumnType("missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeMissingColumn))
}

func TestFromMatrix(t *testing.T) {
	values, err := block.DenseFrom(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	tbl, err := FromMatrix(values, index.MustNew("r1", "r2"), index.MustNew("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"a", "b"}, tbl.Columns().Labels())

	_, err = FromMatrix(values, index.MustNew("r1"), nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	ints, err := block.DenseFrom(1, 2, []int64{5, 6})
	require.NoError(t, err)
	intTable, err := FromIntMatrix(ints, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, block.Int64, intTable.DType())
	assert.Equal(t, []index.Label{int64(0), int64(1)}, intTable.Columns().Labels())
}

func TestFromObjectsResegregates(t *testing.T) {
	values, err := block.DenseFrom(2, 2, []interface{}{1, "x", 2, "y"})
	require.NoError(t, err)

	tbl, err := FromObjects(values, nil, index.MustNew("n", "s"))
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"n"}, tbl.NumericColumns().Labels())
	assert.Equal(t, []index.Label{"s"}, tbl.ObjectColumns().Labels())
}

func TestReindexOwnIndexCopies(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}, "b": []string{"x", "y"}})

	out, err := tbl.Reindex(tbl.Rows(), align.None)
	require.NoError(t, err)
	assert.True(t, out.Equals(tbl))

	out.Store().Numeric().Numeric().Set(0, 0, 100)
	out.Store().Objects().Objects().Set(0, 0, "changed")
	assert.Equal(t, []float64{1, 2}, values(t, tbl, "a"))
	assert.Equal(t, []interface{}{"x", "y"}, objects(t, tbl, "b"))
}

func TestReindexPromotesIntToFloat(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{10, 20, 30},
		"s": []string{"x", "y", "z"},
	}, WithIndex(index.MustNew(1, 2, 3)))
	require.Equal(t, block.Int64, tbl.DType())

	out, err := tbl.Reindex(index.MustNew(1, 2, 4), align.None)
	require.NoError(t, err)

	assert.Equal(t, block.Float64, out.DType())
	testutil.AssertFloatsEqual(t, []float64{10, 20, nan}, values(t, out, "a"))
	assert.Equal(t, []interface{}{"x", "y", nil}, objects(t, out, "s"))

	typ, err := out.ColumnType("a")
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeFloat, typ)
}

func TestReindexPad(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}}, WithIndex(index.MustNew(10, 20)))

	out, err := tbl.Reindex(index.MustNew(5, 10, 15, 25), align.Pad)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{nan, 1, 1, 2}, values(t, out, "a"))

	unsorted := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}}, WithIndex(index.MustNew(20, 10)))
	_, err = unsorted.Reindex(index.MustNew(15), align.Backfill)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestReindexColumns(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "s": []string{"x", "y"}})

	out, err := tbl.ReindexColumns(index.MustNew("s", "new", "a"))
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"s", "new", "a"}, out.Columns().Labels())
	assert.Equal(t, []index.Label{"s"}, out.ObjectColumns().Labels())
	testutil.AssertFloatsEqual(t, []float64{nan, nan}, values(t, out, "new"))

	dropped, err := tbl.ReindexColumns(index.MustNew("a"))
	require.NoError(t, err)
	assert.False(t, dropped.HasObjects())
}

func combineOperands(t *testing.T) (*Table, *Table) {
	a := mustTable(t, map[index.Label]interface{}{
		"x": []float64{1, 2},
		"y": []float64{10, 20},
	}, WithIndex(index.MustNew(1, 2)))
	b := mustTable(t, map[index.Label]interface{}{
		"y": []float64{100, 200},
		"z": []float64{5, 6},
	}, WithIndex(index.MustNew(2, 3)))
	return a, b
}

func TestCombineAlignsBothAxes(t *testing.T) {
	a, b := combineOperands(t)

	out, err := a.Combine(b, Add)
	require.NoError(t, err)

	assert.Equal(t, []index.Label{int64(1), int64(2), int64(3)}, out.Rows().Labels())
	assert.Equal(t, []index.Label{"x", "y", "z"}, out.Columns().Labels())

	m, err := out.NumericMatrix(nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.At(0, 2)), "(1, z)")
	assert.True(t, math.IsNaN(m.At(2, 0)), "(3, x)")
	assert.Equal(t, 120.0, m.At(1, 1), "(2, y)")
	assert.True(t, math.IsNaN(m.At(0, 1)), "(1, y) has no right operand")
}

func TestCombineDegenerate(t *testing.T) {
	_, b := combineOperands(t)

	both, err := Empty(index.MustNew(1)).Combine(Empty(index.MustNew(2)), Add)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{int64(1), int64(2)}, both.Rows().Labels())
	assert.Equal(t, 0, both.Columns().Len())

	left, err := Empty(nil).Combine(b, Add)
	require.NoError(t, err)
	assert.Equal(t, b.Rows().Labels(), left.Rows().Labels())
	assert.Equal(t, b.Columns().Labels(), left.Columns().Labels())
	testutil.AssertFloatsEqual(t, []float64{nan, nan}, values(t, left, "y"))

	right, err := b.Combine(Empty(nil), Mul)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{nan, nan}, values(t, right, "z"))
}

func TestCombineIgnoresObjects(t *testing.T) {
	logs := testutil.ObserveLogs(t, zapcore.DebugLevel)

	a := mustTable(t, map[index.Label]interface{}{"x": []float64{1, 2}, "s": []string{"p", "q"}})
	b := mustTable(t, map[index.Label]interface{}{"x": []float64{3, 4}})

	out, err := a.Combine(b, Sub)
	require.NoError(t, err)
	assert.False(t, out.HasObjects())
	assert.Equal(t, []float64{-2, -2}, values(t, out, "x"))
	assert.Equal(t, 1, logs.FilterMessage("combine ignores object columns").Len())
}

func TestCombineRecordsMetrics(t *testing.T) {
	metrics.SetEnabled(true)
	a, b := combineOperands(t)

	counter := metrics.OperationsTotal.WithLabelValues("frame", "combine", "success")
	before := promtest.ToFloat64(counter)
	_, err := a.Combine(b, Add)
	require.NoError(t, err)
	assert.Equal(t, before+1, promtest.ToFloat64(counter))
}

func TestCombineMatchingRows(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []float64{1, 2},
		"b": []float64{3, 4},
	})

	out, err := tbl.CombineMatchingRows(columnar.NewFloatColumn([]float64{10, 20}), Add)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22}, values(t, out, "a"))
	assert.Equal(t, []float64{13, 24}, values(t, out, "b"))

	vec, err := columnar.WithIndex(columnar.NewFloatColumn([]float64{100, 200}), index.MustNew(1, 2))
	require.NoError(t, err)
	out, err = tbl.CombineMatchingRows(vec, Add)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{int64(0), int64(1), int64(2)}, out.Rows().Labels())
	testutil.AssertFloatsEqual(t, []float64{nan, 102, nan}, values(t, out, "a"))

	_, err = tbl.CombineMatchingRows(columnar.NewFloatColumn([]float64{1}), Add)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestCombineMatchingColumns(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []float64{1, 2},
		"b": []float64{3, 4},
	})
	vec, err := columnar.WithIndex(columnar.NewFloatColumn([]float64{1, 2, 3}), index.MustNew("a", "b", "c"))
	require.NoError(t, err)

	out, err := tbl.CombineMatchingColumns(vec, Sub)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"a", "b", "c"}, out.Columns().Labels())
	assert.Equal(t, []float64{0, 1}, values(t, out, "a"))
	assert.Equal(t, []float64{1, 2}, values(t, out, "b"))
	testutil.AssertFloatsEqual(t, []float64{nan, nan}, values(t, out, "c"))
}

func TestCombineScalarKeepsObjects(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "s": []string{"x", "y"}})

	out, err := tbl.CombineScalar(2, Mul)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, values(t, out, "a"))
	assert.Equal(t, []interface{}{"x", "y"}, objects(t, out, "s"))
	assert.Equal(t, tbl.Columns().Labels(), out.Columns().Labels())
}

func TestInsertObjectColumnIntoNumericTable(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}, "b": []float64{3, 4}})
	before := tbl.Store().Numeric()

	require.NoError(t, tbl.Insert("s", []string{"x", "y"}))

	assert.Equal(t, []index.Label{"s"}, tbl.ObjectColumns().Labels())
	assert.Same(t, before, tbl.Store().Numeric())
	assert.Equal(t, []float64{1, 3, 2, 4}, tbl.Store().Numeric().Numeric().Data())
	assert.Equal(t, []index.Label{"a", "b", "s"}, tbl.Columns().Labels())
}

func TestInsertRouting(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}})

	require.NoError(t, tbl.Insert("k", 7))
	assert.Equal(t, []float64{7, 7}, values(t, tbl, "k"))

	require.NoError(t, tbl.InsertAt(0, "first", []float64{0.5, 1.5}))
	assert.Equal(t, []index.Label{"first", "a", "k"}, tbl.Columns().Labels())

	// an index-bearing column is aligned by label
	col, err := columnar.WithIndex(columnar.NewIntColumn([]int64{9}), index.MustNew(1))
	require.NoError(t, err)
	require.NoError(t, tbl.Insert("aligned", col))
	testutil.AssertFloatsEqual(t, []float64{nan, 9}, values(t, tbl, "aligned"))

	// a failed cast moves the column to the object block
	require.NoError(t, tbl.Insert("a", []string{"1", "two"}))
	assert.True(t, tbl.ObjectColumns().Contains("a"))
	pos, _ := tbl.Columns().PositionOf("a")
	assert.Equal(t, 1, pos)

	err = tbl.Insert("short", []float64{1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))
}

func TestDeleteSoleNumericColumn(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"n": []float64{1, 2}, "s": []string{"x", "y"}})
	_, before := tbl.Shape()

	require.NoError(t, tbl.Delete("n"))

	_, after := tbl.Shape()
	assert.Equal(t, before-1, after)
	assert.Equal(t, 0, tbl.NumericColumns().Len())
	assert.Equal(t, []index.Label{"s"}, tbl.ObjectColumns().Labels())
	assert.Equal(t, 2, tbl.Store().Numeric().Rows())

	err := tbl.Delete("n")
	assert.True(t, errors.IsType(err, errors.ErrorTypeMissingColumn))
}

func TestShiftRoundTrip(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2, 3, 4, 5},
		"s": []string{"p", "q", "r", "s", "t"},
	})

	shifted := tbl.Shift(2)
	assert.Equal(t, block.Float64, shifted.DType())
	testutil.AssertFloatsEqual(t, []float64{nan, nan, 1, 2, 3}, values(t, shifted, "a"))
	assert.Equal(t, []interface{}{nil, nil, "p", "q", "r"}, objects(t, shifted, "s"))

	back := shifted.Shift(-2)
	testutil.AssertFloatsEqual(t, []float64{1, 2, 3, nan, nan}, values(t, back, "a"))
	assert.Equal(t, tbl.Rows().Labels(), back.Rows().Labels())

	same := tbl.Shift(0)
	assert.True(t, same.Equals(tbl))
}

func TestShiftByOffset(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}},
		WithIndex(index.MustNew(day, day.AddDate(0, 0, 1))))

	out, err := tbl.ShiftBy(1, index.Calendar{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, day.AddDate(0, 0, 7), out.Rows().At(0))
	assert.Equal(t, []float64{1, 2}, values(t, out, "a"))

	_, err = tbl.ShiftBy(1, nil)
	assert.Error(t, err)
}

func TestCumSum(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{nan, 3, nan, 2}})

	out, err := tbl.CumSum(block.AxisRows)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{nan, 3, 3, 5}, values(t, out, "a"))

	ints := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2, 3}, "s": []string{"x", "y", "z"}})
	out, err = ints.CumSum(block.AxisRows)
	require.NoError(t, err)
	assert.Equal(t, block.Int64, out.DType())
	assert.Equal(t, []float64{1, 3, 6}, values(t, out, "a"))
	assert.Equal(t, []interface{}{"x", "y", "z"}, objects(t, out, "s"))

	wide := mustTable(t, map[index.Label]interface{}{
		"a": []float64{1},
		"b": []float64{nan},
		"c": []float64{2},
	})
	out, err = wide.CumSum(block.AxisColumns)
	require.NoError(t, err)
	xs, err := out.Xs(int64(0), true)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 3}, xs.(*columnar.FloatColumn).Values())

	_, err = tbl.CumSum(block.Axis(7))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestTranspose(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2},
		"b": []int{3, 4},
	}, WithIndex(index.MustNew("r1", "r2")))

	out, err := tbl.Transpose()
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"a", "b"}, out.Rows().Labels())
	assert.Equal(t, []index.Label{"r1", "r2"}, out.Columns().Labels())
	assert.Equal(t, block.Int64, out.DType())
	assert.Equal(t, []float64{1, 3}, values(t, out, "r1"))

	back, err := out.Transpose()
	require.NoError(t, err)
	assert.True(t, back.Equals(tbl))
}

func TestTransposeMixedBecomesObject(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"n": []float64{1, nan},
		"s": []string{"x", "y"},
	})

	out, err := tbl.Transpose()
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumericColumns().Len())
	assert.Equal(t, []index.Label{int64(0), int64(1)}, out.ObjectColumns().Labels())
	assert.Equal(t, []interface{}{1.0, "x"}, objects(t, out, int64(0)))
	assert.Equal(t, []interface{}{nil, "y"}, objects(t, out, int64(1)))
}

func TestTransposeMixedStacksNumericFirst(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"s": []string{"x", "y"},
		"n": []int{1, 2},
	}, WithColumns(index.MustNew("s", "n")))

	out, err := tbl.Transpose()
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"n", "s"}, out.Rows().Labels())
	assert.Equal(t, []interface{}{int64(1), "x"}, objects(t, out, int64(0)))
	assert.Equal(t, []interface{}{int64(2), "y"}, objects(t, out, int64(1)))
}

func TestXs(t *testing.T) {
	numeric := mustTable(t, map[index.Label]interface{}{"a": []float64{1, 2}, "b": []float64{3, 4}},
		WithIndex(index.MustNew("r1", "r2")))

	view, err := numeric.Xs("r2", false)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"a", "b"}, view.Index().Labels())
	view.(*columnar.FloatColumn).Values()[0] = 99
	assert.Equal(t, []float64{1, 99}, values(t, numeric, "a"))

	copied, err := numeric.Xs("r1", true)
	require.NoError(t, err)
	copied.(*columnar.FloatColumn).Values()[0] = -1
	assert.Equal(t, []float64{1, 99}, values(t, numeric, "a"))

	_, err = numeric.Xs("r3", true)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMissingLabel))

	mixed := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "s": []string{"x", "y"}})
	_, err = mixed.Xs(int64(0), false)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	row, err := mixed.Xs(int64(1), true)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2), "y"}, columnar.ToObjects(row))
}

func TestXsViewMatchesCopyDType(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "b": []int{3, 4}})

	view, err := tbl.Xs(int64(0), false)
	require.NoError(t, err)
	copied, err := tbl.Xs(int64(0), true)
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeInt, view.Type())
	assert.Equal(t, copied.Type(), view.Type())
	assert.Equal(t, []interface{}{int64(1), int64(3)}, columnar.ToObjects(view))

	view.(*columnar.FloatColumn).Values()[1] = 30
	assert.Equal(t, []interface{}{int64(30), int64(4)}, objects(t, tbl, "b"))
	assert.Equal(t, block.Int64, tbl.DType())

	flags := mustTable(t, map[index.Label]interface{}{"f": []bool{true, false}})
	view, err = flags.Xs(int64(1), false)
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeBool, view.Type())
	assert.Equal(t, []interface{}{false}, columnar.ToObjects(view))
}

func TestMatrixViews(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "s": []string{"x", "y"}})

	m, err := tbl.ToMatrix(index.MustNew("s", "a"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", int64(1), "y", int64(2)}, m.Data())

	_, err = tbl.NumericMatrix(index.MustNew("s"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	err = tbl.SetValues(m)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidAssignment))
}

func TestApplyAndReduce(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []float64{1, nan, 4},
		"b": []float64{nan, nan, nan},
		"s": []string{"x", "y", "z"},
	})

	sq, err := tbl.Apply(math.Sqrt)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{1, nan, 2}, values(t, sq, "a"))
	assert.True(t, sq.HasObjects())

	lo, err := tbl.Min(block.AxisRows)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, math.Inf(1)}, lo.(*columnar.FloatColumn).Values())
	assert.Equal(t, []index.Label{"a", "b"}, lo.Index().Labels())

	hi, err := tbl.Max(block.AxisColumns)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, math.Inf(-1), 4}, hi.(*columnar.FloatColumn).Values())
}

func TestApplyMapResegregates(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2}, "s": []string{"x", "7"}})

	out, err := tbl.ApplyMap(func(v interface{}) interface{} {
		switch x := v.(type) {
		case int64:
			return x * 10
		case string:
			if x == "7" {
				return int64(7)
			}
			return strings.ToUpper(x)
		}
		return v
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, values(t, out, "a"))
	assert.Equal(t, []interface{}{"X", int64(7)}, objects(t, out, "s"))

	numeric, err := tbl.ApplyMap(func(interface{}) interface{} { return 1.5 })
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"a", "s"}, numeric.NumericColumns().Labels())
}

func TestFillNA(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []float64{nan, 1, nan, 2, nan},
		"s": []interface{}{"x", nil, nil, "y", nil},
	})

	filled, err := tbl.FillNA(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 2, 0}, values(t, filled, "a"))
	assert.Equal(t, []interface{}{"x", nil, nil, "y", nil}, objects(t, filled, "s"))

	padded, err := tbl.FillNAMethod(align.Pad)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{nan, 1, 1, 2, 2}, values(t, padded, "a"))
	assert.Equal(t, []interface{}{"x", "x", "x", "y", "y"}, objects(t, padded, "s"))

	back, err := tbl.FillNAMethod(align.Backfill)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{1, 1, 2, 2, nan}, values(t, back, "a"))

	_, err = tbl.FillNAMethod(align.None)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAppend(t *testing.T) {
	top := mustTable(t, map[index.Label]interface{}{
		"x": []int{1, 2},
		"s": []string{"a", "b"},
	})
	bottom := mustTable(t, map[index.Label]interface{}{
		"x": []float64{3.5},
		"y": []bool{true},
	}, WithIndex(index.MustNew(2)))

	out, err := top.Append(bottom)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{int64(0), int64(1), int64(2)}, out.Rows().Labels())
	assert.Equal(t, []index.Label{"s", "x", "y"}, out.Columns().Labels())
	assert.Equal(t, []index.Label{"s"}, out.ObjectColumns().Labels())
	assert.Equal(t, []float64{1, 2, 3.5}, values(t, out, "x"))
	testutil.AssertFloatsEqual(t, []float64{nan, nan, 1}, values(t, out, "y"))
	assert.Equal(t, []interface{}{"a", "b", nil}, objects(t, out, "s"))

	same, err := top.Append(mustTable(t, map[index.Label]interface{}{
		"x": []int{3},
		"s": []string{"c"},
	}, WithIndex(index.MustNew(5))))
	require.NoError(t, err)
	assert.Equal(t, block.Int64, same.DType())

	_, err = top.Append(top)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))

	copied, err := top.Append(Empty(nil))
	require.NoError(t, err)
	assert.True(t, copied.Equals(top))
}

func TestJoinOn(t *testing.T) {
	left := mustTable(t, map[index.Label]interface{}{
		"key": []string{"a", "b", "z"},
		"v":   []int{1, 2, 3},
	})
	right := mustTable(t, map[index.Label]interface{}{
		"w":   []float64{10, 20},
		"tag": []string{"p", "q"},
	}, WithIndex(index.MustNew("a", "b")))

	out, err := left.JoinOn(right, "key")
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"key", "v", "tag", "w"}, out.Columns().Labels())
	testutil.AssertFloatsEqual(t, []float64{10, 20, nan}, values(t, out, "w"))
	assert.Equal(t, []interface{}{"p", "q", nil}, objects(t, out, "tag"))

	_, err = left.JoinOn(right, "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeMissingColumn))

	_, err = left.JoinOn(left, "key")
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))

	byNumber := mustTable(t, map[index.Label]interface{}{"id": []float64{1, nan}})
	lookup := mustTable(t, map[index.Label]interface{}{"name": []string{"one"}}, WithIndex(index.MustNew(1)))
	joined, err := byNumber.JoinOn(lookup, "id")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"one", nil}, objects(t, joined, "name"))
}

func TestSliceFilterRename(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2, 3, 4},
		"s": []string{"w", "x", "y", "z"},
	})

	sliced := tbl.Slice(1, 3)
	assert.Equal(t, []index.Label{int64(1), int64(2)}, sliced.Rows().Labels())
	assert.Equal(t, []float64{2, 3}, values(t, sliced, "a"))

	tail := tbl.Slice(-1, 10)
	assert.Equal(t, []interface{}{"z"}, objects(t, tail, "s"))

	filtered, err := tbl.Filter([]bool{true, false, false, true})
	require.NoError(t, err)
	assert.Equal(t, []index.Label{int64(0), int64(3)}, filtered.Rows().Labels())
	assert.Equal(t, block.Int64, filtered.DType())
	assert.Equal(t, []interface{}{"w", "z"}, objects(t, filtered, "s"))

	_, err = tbl.Filter([]bool{true})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	renamed, err := tbl.RenameColumns(func(l index.Label) index.Label { return strings.ToUpper(l.(string)) })
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"A", "S"}, renamed.Columns().Labels())
	assert.Equal(t, []index.Label{"S"}, renamed.ObjectColumns().Labels())
	assert.True(t, tbl.Contains("a"))
}

func TestArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2},
		"b": []float64{1.5, nan},
		"c": []string{"x", "y"},
	}, WithIndex(index.MustNew("r1", "r2")))

	rec, err := tbl.ToArrow(mem)
	require.NoError(t, err)
	defer rec.Release()

	require.EqualValues(t, 4, rec.NumCols())
	assert.Equal(t, IndexField, rec.ColumnName(0))
	assert.Equal(t, arrow.STRING, rec.Schema().Field(0).Type.ID())
	assert.Equal(t, arrow.FLOAT64, rec.Schema().Field(1).Type.ID())
	assert.Equal(t, arrow.STRING, rec.Schema().Field(3).Type.ID())
	assert.True(t, rec.Column(2).IsNull(1))

	back, err := FromArrow(rec)
	require.NoError(t, err)
	assert.True(t, back.Equals(tbl))
}

func TestArrowKeepsIntColumns(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"n": []int{1, 2}})

	rec, err := tbl.ToArrow(nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, arrow.INT64, rec.Schema().Field(1).Type.ID())
	assert.Equal(t, arrow.INT64, rec.Schema().Field(0).Type.ID())

	back, err := FromArrow(rec)
	require.NoError(t, err)
	assert.Equal(t, block.Int64, back.DType())
}

func TestFormat(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []float64{1.5, nan},
		"b": []string{"x", "y"},
	})

	out := tbl.Format(FormatOptions{Precision: 2})
	assert.Equal(t, "      a  b\n0  1.50  x\n1   NaN  y\n", out)

	long := mustTable(t, map[index.Label]interface{}{"a": []int{1, 2, 3, 4, 5}})
	text := long.Format(FormatOptions{MaxRows: 2})
	assert.Contains(t, text, "...")
	assert.Contains(t, text, "[5 rows x 1 columns]")
	assert.NotContains(t, text, "3\n")
}
