package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalNumbersKeepsLiterals(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, UnmarshalNumbers([]byte(`{"a": 1, "b": 2.50}`), &v))

	a, ok := v["a"].(Number)
	require.True(t, ok)
	assert.Equal(t, "1", a.String())
	assert.Equal(t, Number("2.50"), v["b"])
}

func TestMarshalToWriter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, MarshalToWriter(&out, map[string]string{"k": "<v>"}, ""))
	assert.Equal(t, "{\"k\":\"<v>\"}\n", out.String())

	out.Reset()
	require.NoError(t, MarshalToWriter(&out, []int{1}, "  "))
	assert.Equal(t, "[\n  1\n]\n", out.String())
}

func TestMarshalLines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, MarshalLines(&out, []interface{}{map[string]int{"a": 1}, "x"}))
	assert.Equal(t, "{\"a\":1}\n\"x\"\n", out.String())
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(struct {
		Name string `json:"name"`
	}{"t"})
	require.NoError(t, err)

	var back struct {
		Name string `json:"name"`
	}
	require.NoError(t, Unmarshal(data, &back))
	assert.Equal(t, "t", back.Name)
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("data")
	PutBuffer(buf)
	assert.Equal(t, 0, GetBuffer().Len())
	assert.NotPanics(t, func() { PutBuffer(nil) })
}
