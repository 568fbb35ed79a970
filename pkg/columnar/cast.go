package columnar

import (
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// ToFloat64s casts a numeric column to float64 storage. Non-numeric columns
// fail with a coercion error.
func ToFloat64s(col Column) ([]float64, error) {
	out := make([]float64, col.Len())
	switch c := col.(type) {
	case *FloatColumn:
		copy(out, c.values)
	case *IntColumn:
		for i, v := range c.values {
			out[i] = float64(v)
		}
	case *BoolColumn:
		for i, v := range c.values {
			if v {
				out[i] = 1
			}
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeCoercionFailure, "cannot cast %s column to float64", col.Type())
	}
	return out, nil
}

// TryCastFloat64s attempts a lenient cast to float64: numeric values and
// booleans convert directly, nil becomes NaN and strings are parsed. The
// boolean result is false when any value cannot be cast.
func TryCastFloat64s(col Column) ([]float64, bool) {
	if col.Type().IsNumeric() {
		out, err := ToFloat64s(col)
		return out, err == nil
	}

	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		v := col.Get(i)
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out[i] = f
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// ToObjects boxes every value. Float NaN becomes nil so that object storage
// has a single null.
func ToObjects(col Column) []interface{} {
	out := make([]interface{}, col.Len())
	for i := range out {
		v := col.Get(i)
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			continue
		}
		out[i] = v
	}
	return out
}
