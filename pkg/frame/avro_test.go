package frame

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

func TestAvroRoundTrip(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl := mustTable(t, map[index.Label]interface{}{
		"a": []int{1, 2, 3},
		"b": []float64{1.5, nan, 3},
		"c": []string{"x", "y", "z"},
	}, WithIndex(index.MustNew(day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))))

	for _, codec := range []string{"null", "deflate", "snappy"} {
		t.Run(codec, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tbl.WriteAvro(&buf, codec))

			back, err := ReadAvro(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.True(t, back.Equals(tbl), "avro round trip changed the table:\n%s\n%s", tbl, back)
		})
	}
}

func TestAvroRestoresColumnNames(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{
		"total sales": []float64{1, 2},
		"2024":        []float64{3, 4},
	}, WithColumns(index.MustNew("total sales", "2024")))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteAvro(&buf, "null"))

	back, err := ReadAvro(&buf)
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"total sales", "2024"}, back.Columns().Labels())

	col, err := back.Column("2024")
	require.NoError(t, err)
	vals, err := columnar.ToFloat64s(col)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, vals)
}

func TestAvroEmptyTable(t *testing.T) {
	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{}})

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteAvro(&buf, "null"))

	back, err := ReadAvro(&buf)
	require.NoError(t, err)
	rows, cols := back.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 1, cols)
}

func TestAvroErrors(t *testing.T) {
	_, err := ReadAvro(bytes.NewReader([]byte("definitely not avro")))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	tbl := mustTable(t, map[index.Label]interface{}{"a": []float64{1}})
	err = tbl.WriteAvro(&bytes.Buffer{}, "rar")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
