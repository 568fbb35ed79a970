package index

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// Label is a row or column label. Any comparable value is accepted; integer,
// float, string and time labels are orderable.
type Label = interface{}

type labelClass int

const (
	classOther labelClass = iota
	classNumeric
	classString
	classTime
)

// Normalize maps a label onto its canonical representation so that equal
// values hash to the same key: all integer widths become int64, float32
// becomes float64 and times lose their monotonic clock reading.
func Normalize(l Label) Label {
	switch v := l.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case time.Time:
		return v.Round(0)
	default:
		return l
	}
}

// hashable reports whether l can be used as a map key. Slices, maps and
// funcs, and structs or arrays holding them, cannot.
func hashable(l Label) bool {
	switch l.(type) {
	case nil, int64, float64, string, bool, time.Time:
		return true
	}
	return reflect.ValueOf(l).Comparable()
}

// numericTwin returns the other representation of an integral number:
// int64(1) for float64(1) and the reverse. Equal numbers must find each
// other whichever type they were stored with.
func numericTwin(l Label) (Label, bool) {
	switch v := l.(type) {
	case int64:
		f := float64(v)
		if int64(f) != v {
			return nil, false
		}
		return f, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) >= 1<<63 {
			return nil, false
		}
		return int64(v), true
	}
	return nil, false
}

func classOf(l Label) labelClass {
	switch l.(type) {
	case int64, float64:
		return classNumeric
	case string:
		return classString
	case time.Time:
		return classTime
	default:
		return classOther
	}
}

// Compare orders two normalized labels. The second result is false when the
// labels are not mutually orderable.
func Compare(a, b Label) (int, bool) {
	ca, cb := classOf(a), classOf(b)
	if ca != cb || ca == classOther {
		return 0, false
	}

	switch ca {
	case classNumeric:
		if x, ok := a.(int64); ok {
			if y, ok := b.(int64); ok {
				return cmpOrdered(x, y), true
			}
		}
		return cmpOrdered(toFloat(a), toFloat(b)), true
	case classString:
		return cmpOrdered(a.(string), b.(string)), true
	case classTime:
		return a.(time.Time).Compare(b.(time.Time)), true
	}
	return 0, false
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(l Label) float64 {
	switch v := l.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// orderable reports whether every label belongs to the same orderable class
func orderable(groups ...[]Label) bool {
	class := classOther
	for _, labels := range groups {
		for _, l := range labels {
			c := classOf(l)
			if c == classOther {
				return false
			}
			if class == classOther {
				class = c
			} else if c != class {
				return false
			}
		}
	}
	return true
}

// Format renders a label for display
func Format(l Label) string {
	switch v := l.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
