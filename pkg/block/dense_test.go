package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

func sample(t *testing.T) *Dense[int] {
	t.Helper()
	// 1 2 3
	// 4 5 6
	d, err := DenseFrom(2, 3, []int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	return d
}

func TestDenseFromShape(t *testing.T) {
	_, err := DenseFrom(2, 2, []int{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	_, err = DenseFromColumns(2, [][]int{{1, 2}, {3}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeShapeMismatch))

	d, err := DenseFromColumns(2, [][]int{{1, 4}, {2, 5}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4, 5}, d.Data())
}

func TestDenseAccess(t *testing.T) {
	d := sample(t)
	assert.Equal(t, 6, d.At(1, 2))
	assert.Equal(t, []int{4, 5, 6}, d.Row(1))
	assert.Equal(t, []int{2, 5}, d.Col(1))

	// rows are views, columns are copies
	d.Row(0)[0] = 10
	assert.Equal(t, 10, d.At(0, 0))
	d.Col(0)[0] = 99
	assert.Equal(t, 10, d.At(0, 0))
}

func TestDenseTake(t *testing.T) {
	d := sample(t)

	rows := d.Take(AxisRows, []int{1, -1}, []bool{true, false}, -7)
	assert.Equal(t, []int{4, 5, 6, -7, -7, -7}, rows.Data())

	cols := d.Take(AxisColumns, []int{2, 0}, nil, 0)
	assert.Equal(t, []int{3, 1, 6, 4}, cols.Data())
	assert.Equal(t, 2, cols.Cols())
}

func TestDenseInsertDelete(t *testing.T) {
	d := sample(t)

	ins := d.InsertCol(1, []int{8, 9})
	assert.Equal(t, []int{1, 8, 2, 3, 4, 9, 5, 6}, ins.Data())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, d.Data())

	del := ins.DeleteCol(3)
	assert.Equal(t, []int{1, 8, 2, 4, 9, 5}, del.Data())
}

func TestDenseTransposeAndStack(t *testing.T) {
	d := sample(t)
	tr := d.T()
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, []int{1, 4, 2, 5, 3, 6}, tr.Data())

	v, err := VStack(d, d)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Rows())

	h, err := HStack(d, d)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 4, 5, 6, 4, 5, 6}, h.Data())

	_, err = VStack(d, tr)
	assert.Error(t, err)
	_, err = HStack(d, tr)
	assert.Error(t, err)
}

func TestMapZip(t *testing.T) {
	d := sample(t)
	doubled := Map(d, func(v int) int { return v * 2 })
	sum, err := Zip(d, doubled, func(x, y int) int { return x + y })
	require.NoError(t, err)
	assert.Equal(t, []int{3, 6, 9, 12, 15, 18}, sum.Data())

	_, err = Zip(d, d.T(), func(x, y int) int { return x })
	assert.Error(t, err)

	assert.Equal(t, []int{4, 5, 6}, d.SliceRows(1, 2).Data())
}
