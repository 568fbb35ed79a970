package cli

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/frame"
	"github.com/ajitpratap0/tabula/pkg/index"
	pkgjson "github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/testutil"
)

func decode(t *testing.T, doc string) *frame.Table {
	t.Helper()
	tbl, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return tbl
}

func TestDecodeColumns(t *testing.T) {
	tbl := decode(t, `{
		"index": ["x", "y", "z"],
		"columns": [
			{"name": "b", "values": [1, 2, 3]},
			{"name": "a", "values": ["p", "q", "r"]},
			{"name": "c", "values": [1.5, null, 2]}
		]
	}`)

	assert.Equal(t, []index.Label{"x", "y", "z"}, tbl.Rows().Labels())
	assert.Equal(t, []index.Label{"b", "a", "c"}, tbl.Columns().Labels())

	// b shares the numeric block with c and is promoted with it
	typ, err := tbl.ColumnType("b")
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeFloat, typ)

	typ, err = tbl.ColumnType("a")
	require.NoError(t, err)
	assert.Equal(t, columnar.ColumnTypeObject, typ)

	col, err := tbl.Column("c")
	require.NoError(t, err)
	vals, err := columnar.ToFloat64s(col)
	require.NoError(t, err)
	testutil.AssertFloatsEqual(t, []float64{1.5, math.NaN(), 2}, vals)
}

func TestDecodeDefaultIndexAndTimes(t *testing.T) {
	tbl := decode(t, `{"columns": [{"name": 7, "values": ["2024-01-02", "plain"]}]}`)

	assert.True(t, tbl.Rows().Equals(index.Range(2)))
	assert.Equal(t, []index.Label{int64(7)}, tbl.Columns().Labels())

	col, err := tbl.Column(int64(7))
	require.NoError(t, err)
	vals := columnar.ToObjects(col)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), vals[0])
	assert.Equal(t, "plain", vals[1])
}

func TestDecodeRecords(t *testing.T) {
	tbl := decode(t, `{"records": [{"a": 1, "b": "x"}, {"a": 2, "b": "y"}]}`)

	assert.Equal(t, []index.Label{"a", "b"}, tbl.Columns().Labels())
	assert.Equal(t, []index.Label{"a"}, tbl.NumericColumns().Labels())
	assert.Equal(t, 2, tbl.Rows().Len())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		errType errors.ErrorType
	}{
		{"malformed", `{"columns": [`, errors.ErrorTypeValidation},
		{"records and columns", `{"records": [{"a": 1}], "columns": [{"name": "a", "values": [1]}]}`, errors.ErrorTypeValidation},
		{"unnamed column", `{"columns": [{"values": [1]}]}`, errors.ErrorTypeValidation},
		{"duplicate column", `{"columns": [{"name": "a", "values": [1]}, {"name": "a", "values": [2]}]}`, errors.ErrorTypeDuplicateLabel},
		{"short column", `{"index": [1, 2], "columns": [{"name": "a", "values": [1]}]}`, errors.ErrorTypeShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	src := decode(t, `{
		"index": ["2024-01-01", "2024-01-02"],
		"columns": [
			{"name": "n", "values": [1, 2]},
			{"name": "f", "values": [0.5, null]},
			{"name": "s", "values": ["u", "v"]}
		]
	}`)

	doc, err := NewDocument(src)
	require.NoError(t, err)
	assert.Nil(t, doc.Columns[1].Values[1], "NaN must encode as null")

	var buf bytes.Buffer
	require.NoError(t, pkgjson.MarshalToWriter(&buf, doc, ""))

	back := decode(t, buf.String())
	assert.True(t, src.Equals(back), "round trip changed the table:\n%s\n%s", src, back)
}

func TestRecords(t *testing.T) {
	tbl := decode(t, `{"index": ["x"], "columns": [{"name": "a", "values": [1]}, {"name": "b", "values": [null]}]}`)

	records, err := Records(tbl)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]interface{}{
		frame.IndexField: "x",
		"a":              int64(1),
		"b":              nil,
	}, records[0])
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, int64(3), ParseLabel("3"))
	assert.Equal(t, 2.5, ParseLabel(" 2.5 "))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ParseLabel("2024-03-01"))
	assert.Equal(t, "abc", ParseLabel("abc"))

	assert.Equal(t, []index.Label{int64(1), "b"}, ParseLabels("1,b"))
	assert.Empty(t, ParseLabels(""))
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in   string
		want index.Offset
	}{
		{"2", index.Step(2)},
		{"0.5", index.Step(0.5)},
		{"3D", index.Calendar{Days: 3}},
		{"M", index.Calendar{Months: 1}},
		{"2Y", index.Calendar{Years: 2}},
		{"1m", index.Duration(time.Minute)},
		{"1h30m", index.Duration(90 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOffset(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "xD", "soon"} {
		_, err := ParseOffset(bad)
		assert.Error(t, err, bad)
	}
}
