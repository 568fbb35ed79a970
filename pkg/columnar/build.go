package columnar

import (
	"math"
	"time"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// WithIndex attaches row labels to col. The label count must match the
// column length.
func WithIndex(col Column, idx *index.Index) (Column, error) {
	if idx != nil && idx.Len() != col.Len() {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"index has %d labels but column has %d values", idx.Len(), col.Len())
	}
	col.setIndex(idx)
	return col, nil
}

// inferColumnType determines the narrowest column type that can hold every
// value. Nulls force integer and boolean values to float; any other mix
// falls back to object.
func inferColumnType(values []interface{}) ColumnType {
	var (
		ints, floats, bools, strs, times, nulls, other int
	)
	for _, v := range values {
		switch index.Normalize(v).(type) {
		case nil:
			nulls++
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			strs++
		case time.Time:
			times++
		default:
			other++
		}
	}

	n := len(values) - nulls
	switch {
	case len(values) == 0:
		return ColumnTypeFloat
	case n == 0:
		return ColumnTypeObject
	case other > 0:
		return ColumnTypeObject
	case ints == n && nulls == 0:
		return ColumnTypeInt
	case ints+floats == n:
		return ColumnTypeFloat
	case bools == n && nulls == 0:
		return ColumnTypeBool
	case strs == n && nulls == 0:
		return ColumnTypeString
	case times == n && nulls == 0:
		return ColumnTypeTimestamp
	default:
		return ColumnTypeObject
	}
}

// createColumn creates an empty column of the given type
func createColumn(colType ColumnType) Column {
	switch colType {
	case ColumnTypeString:
		return NewStringColumn(nil)
	case ColumnTypeInt:
		return NewIntColumn(nil)
	case ColumnTypeFloat:
		return NewFloatColumn(nil)
	case ColumnTypeBool:
		return NewBoolColumn(nil)
	case ColumnTypeTimestamp:
		return NewTimestampColumn(nil)
	default:
		return NewObjectColumn(nil)
	}
}

// FromValues builds a positional column, inferring its type from the values
func FromValues(values []interface{}) Column {
	col := createColumn(inferColumnType(values))
	for _, v := range values {
		// inference guarantees every value fits
		_ = col.Append(v)
	}
	return col
}

// FromLabelMap builds a column indexed by the map's keys in sorted order
func FromLabelMap(m map[index.Label]interface{}) (Column, error) {
	keys := make([]index.Label, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	keys = index.SortLabels(keys)

	values := make([]interface{}, len(keys))
	for i, k := range keys {
		values[i] = lookup(m, k)
	}
	idx, err := index.New(keys)
	if err != nil {
		return nil, err
	}
	return WithIndex(FromValues(values), idx)
}

// lookup finds k in m, accepting keys that only normalize to k
func lookup(m map[index.Label]interface{}, k index.Label) interface{} {
	if v, ok := m[k]; ok {
		return v
	}
	for mk, v := range m {
		if index.Normalize(mk) == k {
			return v
		}
	}
	return nil
}

// From converts a supported Go value into a Column. Columns pass through
// unchanged; slices become positional columns; label maps become indexed
// columns.
func From(v interface{}) (Column, error) {
	switch data := v.(type) {
	case Column:
		return data, nil
	case []float64:
		return NewFloatColumn(data), nil
	case []float32:
		vals := make([]float64, len(data))
		for i, f := range data {
			vals[i] = float64(f)
		}
		return NewFloatColumn(vals), nil
	case []int64:
		return NewIntColumn(data), nil
	case []int:
		vals := make([]int64, len(data))
		for i, n := range data {
			vals[i] = int64(n)
		}
		return NewIntColumn(vals), nil
	case []int32:
		vals := make([]int64, len(data))
		for i, n := range data {
			vals[i] = int64(n)
		}
		return NewIntColumn(vals), nil
	case []bool:
		return NewBoolColumn(data), nil
	case []string:
		return NewStringColumn(data), nil
	case []time.Time:
		return NewTimestampColumn(data), nil
	case []interface{}:
		return FromValues(data), nil
	case map[index.Label]interface{}:
		return FromLabelMap(data)
	case map[string]interface{}:
		m := make(map[index.Label]interface{}, len(data))
		for k, val := range data {
			m[k] = val
		}
		return FromLabelMap(m)
	case map[string]float64:
		m := make(map[index.Label]interface{}, len(data))
		for k, val := range data {
			m[k] = val
		}
		return FromLabelMap(m)
	}
	return nil, errors.Newf(errors.ErrorTypeCoercionFailure, "cannot build a column from %T", v)
}

// IsScalar reports whether v is a single value that should be broadcast
func IsScalar(v interface{}) bool {
	switch index.Normalize(v).(type) {
	case nil, int64, float64, bool, string, time.Time:
		return true
	}
	return false
}

// Repeat builds a positional column holding value n times
func Repeat(value interface{}, n int) Column {
	values := make([]interface{}, n)
	for i := range values {
		values[i] = value
	}
	if n == 0 {
		// keep the scalar's type for empty tables
		return createColumn(inferColumnType([]interface{}{value}))
	}
	return FromValues(values)
}

// Take gathers values by indexer position. Sentinel positions become null,
// widening int and bool columns to float and string and timestamp columns
// to object. The result is positional.
func Take(col Column, ix *align.Indexer) Column {
	if ix.AllValid() {
		return takeValid(col, ix.Positions)
	}

	if col.Type().IsNumeric() {
		vals, _ := TryCastFloat64s(col)
		out := make([]float64, ix.Len())
		for i, p := range ix.Positions {
			if ix.Mask[i] {
				out[i] = vals[p]
			} else {
				out[i] = math.NaN()
			}
		}
		return NewFloatColumn(out)
	}

	out := make([]interface{}, ix.Len())
	for i, p := range ix.Positions {
		if ix.Mask[i] {
			out[i] = col.Get(p)
		}
	}
	return NewObjectColumn(out)
}

func takeValid(col Column, positions []int) Column {
	out := createColumn(col.Type())
	for _, p := range positions {
		// values come from a column of the same type
		_ = out.Append(col.Get(p))
	}
	return out
}
