package columnar

import (
	"math"
	"strconv"
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// ColumnType represents the data type of a column
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeInt
	ColumnTypeFloat
	ColumnTypeBool
	ColumnTypeTimestamp
	ColumnTypeObject
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeString:
		return "string"
	case ColumnTypeInt:
		return "int64"
	case ColumnTypeFloat:
		return "float64"
	case ColumnTypeBool:
		return "bool"
	case ColumnTypeTimestamp:
		return "timestamp"
	default:
		return "object"
	}
}

// IsNumeric reports whether values of this type are stored in a numeric block
func (t ColumnType) IsNumeric() bool {
	return t == ColumnTypeInt || t == ColumnTypeFloat || t == ColumnTypeBool
}

// Column is the base interface for all column types
type Column interface {
	Type() ColumnType
	Len() int
	Get(i int) interface{}
	Append(value interface{}) error
	// Index returns the column's row labels, or nil for a positional column
	Index() *index.Index
	Clear()
	MemoryUsage() int64

	setIndex(idx *index.Index)
}

// labelled holds the optional row index shared by every column type
type labelled struct {
	idx *index.Index
}

func (l *labelled) Index() *index.Index       { return l.idx }
func (l *labelled) setIndex(idx *index.Index) { l.idx = idx }

func coercionError(value interface{}, target ColumnType) error {
	return errors.Newf(errors.ErrorTypeCoercionFailure, "cannot append %T to %s column", value, target).
		WithDetail("value", value)
}

// FloatColumn stores floating point values; NaN is null. A column made by
// NewFloatView may report an int or bool type over the same float64 storage.
type FloatColumn struct {
	labelled
	values []float64
	typ    ColumnType
}

// NewFloatColumn creates a float column holding a copy of values
func NewFloatColumn(values []float64) *FloatColumn {
	return &FloatColumn{values: append(make([]float64, 0, len(values)), values...), typ: ColumnTypeFloat}
}

// NewFloatView wraps values without copying them, so writes through Values
// reach the caller's slice. typ must be ColumnTypeFloat, ColumnTypeInt or
// ColumnTypeBool; Get boxes each value in that type.
func NewFloatView(values []float64, typ ColumnType) (*FloatColumn, error) {
	if !typ.IsNumeric() {
		return nil, errors.Newf(errors.ErrorTypeValidation, "cannot view float64 storage as %s", typ)
	}
	return &FloatColumn{values: values, typ: typ}, nil
}

func (c *FloatColumn) Type() ColumnType { return c.typ }
func (c *FloatColumn) Len() int         { return len(c.values) }

func (c *FloatColumn) Get(i int) interface{} {
	v := c.values[i]
	switch c.typ {
	case ColumnTypeInt:
		if !math.IsNaN(v) {
			return int64(v)
		}
	case ColumnTypeBool:
		if !math.IsNaN(v) {
			return v != 0
		}
	}
	return v
}

// Values returns the underlying storage. Only views made by NewFloatView are
// meant to be written through.
func (c *FloatColumn) Values() []float64 { return c.values }

func (c *FloatColumn) Append(value interface{}) error {
	f, ok := asFloat(value)
	if !ok {
		return coercionError(value, ColumnTypeFloat)
	}
	c.values = append(c.values, f)
	return nil
}

func (c *FloatColumn) Clear()             { c.values = c.values[:0] }
func (c *FloatColumn) MemoryUsage() int64 { return int64(len(c.values) * 8) }

// IntColumn stores integer values
type IntColumn struct {
	labelled
	values   []int64
	min, max int64
}

// NewIntColumn creates an integer column holding a copy of values
func NewIntColumn(values []int64) *IntColumn {
	c := &IntColumn{values: make([]int64, 0, len(values))}
	for _, v := range values {
		c.push(v)
	}
	return c
}

func (c *IntColumn) Type() ColumnType      { return ColumnTypeInt }
func (c *IntColumn) Len() int              { return len(c.values) }
func (c *IntColumn) Get(i int) interface{} { return c.values[i] }

// Values returns the underlying storage; callers must not modify it
func (c *IntColumn) Values() []int64 { return c.values }

// Range returns the minimum and maximum value appended so far
func (c *IntColumn) Range() (min, max int64) { return c.min, c.max }

func (c *IntColumn) Append(value interface{}) error {
	var intVal int64
	switch v := index.Normalize(value).(type) {
	case int64:
		intVal = v
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot parse "+strconv.Quote(v)+" as int")
		}
		intVal = parsed
	default:
		return coercionError(value, ColumnTypeInt)
	}
	c.push(intVal)
	return nil
}

func (c *IntColumn) push(v int64) {
	if len(c.values) == 0 {
		c.min, c.max = v, v
	} else {
		if v < c.min {
			c.min = v
		}
		if v > c.max {
			c.max = v
		}
	}
	c.values = append(c.values, v)
}

func (c *IntColumn) Clear() {
	c.values = c.values[:0]
	c.min = 0
	c.max = 0
}

func (c *IntColumn) MemoryUsage() int64 { return int64(len(c.values) * 8) }

// BoolColumn stores boolean values
type BoolColumn struct {
	labelled
	values []bool
}

// NewBoolColumn creates a boolean column holding a copy of values
func NewBoolColumn(values []bool) *BoolColumn {
	return &BoolColumn{values: append(make([]bool, 0, len(values)), values...)}
}

func (c *BoolColumn) Type() ColumnType      { return ColumnTypeBool }
func (c *BoolColumn) Len() int              { return len(c.values) }
func (c *BoolColumn) Get(i int) interface{} { return c.values[i] }

// Values returns the underlying storage; callers must not modify it
func (c *BoolColumn) Values() []bool { return c.values }

func (c *BoolColumn) Append(value interface{}) error {
	switch v := value.(type) {
	case bool:
		c.values = append(c.values, v)
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot parse "+strconv.Quote(v)+" as bool")
		}
		c.values = append(c.values, parsed)
	default:
		return coercionError(value, ColumnTypeBool)
	}
	return nil
}

func (c *BoolColumn) Clear()             { c.values = c.values[:0] }
func (c *BoolColumn) MemoryUsage() int64 { return int64(len(c.values)) }

// StringColumn stores string values, switching to dictionary encoding when
// values repeat often
type StringColumn struct {
	labelled
	values []string
	// Dictionary encoding for repeated values
	dict      map[string]uint32
	words     []string
	codes     []uint32
	dictMode  bool
	threshold float64 // Switch to dictionary when unique ratio < threshold
}

// dictMinRows is the length below which dictionary encoding is never tried
const dictMinRows = 100

// NewStringColumn creates a string column holding a copy of values
func NewStringColumn(values []string) *StringColumn {
	c := &StringColumn{
		values:    make([]string, 0, len(values)),
		dict:      make(map[string]uint32),
		threshold: 0.5, // Use dict if >50% values are repeated
	}
	for _, v := range values {
		c.push(v)
	}
	return c
}

func (c *StringColumn) Type() ColumnType { return ColumnTypeString }

func (c *StringColumn) Len() int {
	if c.dictMode {
		return len(c.codes)
	}
	return len(c.values)
}

func (c *StringColumn) Get(i int) interface{} {
	if c.dictMode {
		return c.words[c.codes[i]]
	}
	return c.values[i]
}

// Dictionary reports whether the column is dictionary encoded
func (c *StringColumn) Dictionary() bool { return c.dictMode }

func (c *StringColumn) Append(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return coercionError(value, ColumnTypeString)
	}
	c.push(str)
	return nil
}

func (c *StringColumn) push(str string) {
	if c.dictMode {
		c.codes = append(c.codes, c.code(str))
		return
	}

	c.values = append(c.values, str)
	if len(c.values) > dictMinRows && len(c.values)%dictMinRows == 1 && c.shouldUseDictionary() {
		c.convertToDictionary()
	}
}

func (c *StringColumn) code(str string) uint32 {
	if code, exists := c.dict[str]; exists {
		return code
	}
	code := uint32(len(c.words))
	c.dict[str] = code
	c.words = append(c.words, str)
	return code
}

func (c *StringColumn) shouldUseDictionary() bool {
	unique := make(map[string]struct{})
	for _, v := range c.values {
		unique[v] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(c.values))
	return ratio < c.threshold
}

func (c *StringColumn) convertToDictionary() {
	c.dictMode = true
	c.codes = make([]uint32, 0, len(c.values))
	for _, v := range c.values {
		c.codes = append(c.codes, c.code(v))
	}
	// Clear values to free memory
	c.values = nil
}

func (c *StringColumn) Clear() {
	c.values = c.values[:0]
	c.codes = c.codes[:0]
	c.words = c.words[:0]
	c.dict = make(map[string]uint32)
	c.dictMode = false
}

func (c *StringColumn) MemoryUsage() int64 {
	var total int64
	if c.dictMode {
		for _, w := range c.words {
			total += int64(len(w)) + 16 + 4
		}
		total += int64(len(c.codes) * 4)
		return total
	}
	for _, v := range c.values {
		total += int64(len(v)) + 16 // string header overhead
	}
	return total
}

// TimestampColumn stores time values
type TimestampColumn struct {
	labelled
	values []time.Time
}

// NewTimestampColumn creates a timestamp column holding a copy of values
func NewTimestampColumn(values []time.Time) *TimestampColumn {
	return &TimestampColumn{values: append(make([]time.Time, 0, len(values)), values...)}
}

func (c *TimestampColumn) Type() ColumnType      { return ColumnTypeTimestamp }
func (c *TimestampColumn) Len() int              { return len(c.values) }
func (c *TimestampColumn) Get(i int) interface{} { return c.values[i] }

func (c *TimestampColumn) Append(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		c.values = append(c.values, v)
	case int64:
		c.values = append(c.values, time.Unix(v, 0).UTC())
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot parse "+strconv.Quote(v)+" as timestamp")
		}
		c.values = append(c.values, t)
	default:
		return coercionError(value, ColumnTypeTimestamp)
	}
	return nil
}

func (c *TimestampColumn) Clear()             { c.values = c.values[:0] }
func (c *TimestampColumn) MemoryUsage() int64 { return int64(len(c.values) * 24) }

// ObjectColumn stores arbitrary boxed values; nil is null
type ObjectColumn struct {
	labelled
	values []interface{}
}

// NewObjectColumn creates an object column holding a copy of values
func NewObjectColumn(values []interface{}) *ObjectColumn {
	return &ObjectColumn{values: append(make([]interface{}, 0, len(values)), values...)}
}

func (c *ObjectColumn) Type() ColumnType      { return ColumnTypeObject }
func (c *ObjectColumn) Len() int              { return len(c.values) }
func (c *ObjectColumn) Get(i int) interface{} { return c.values[i] }

func (c *ObjectColumn) Append(value interface{}) error {
	c.values = append(c.values, value)
	return nil
}

func (c *ObjectColumn) Clear()             { c.values = c.values[:0] }
func (c *ObjectColumn) MemoryUsage() int64 { return int64(len(c.values) * 16) }

// asFloat converts numeric scalars, booleans and nil (as NaN) to float64
func asFloat(value interface{}) (float64, bool) {
	switch v := index.Normalize(value).(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
