package frame

import (
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// IndexField names the record field that carries the row labels
const IndexField = "__index__"

// ToArrow converts the table into an Arrow record. The row labels become
// the IndexField column and every column keeps its logical type: numeric
// blocks map to Float64, Int64 or Boolean arrays and object columns to the
// type their values share, falling back to strings. Nulls are Arrow nulls.
// The caller must Release the record. A nil allocator uses the Go allocator.
func (t *Table) ToArrow(mem memory.Allocator) (rec arrow.Record, err error) {
	timer := metrics.NewTimer("to_arrow")
	defer func() { observe(timer, err) }()

	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	columns := make([][]interface{}, 0, t.Columns().Len()+1)
	fields := make([]arrow.Field, 0, t.Columns().Len()+1)

	labels := t.rows.Labels()
	columns = append(columns, labels)
	fields = append(fields, arrow.Field{Name: IndexField, Type: arrowType(labels, arrow.BinaryTypes.String)})

	for _, key := range t.Columns().Labels() {
		blk, pos, _ := t.store.Locate(key)
		values := blk.ColumnObjects(pos)
		fallback := arrow.DataType(arrow.BinaryTypes.String)
		if blk.IsNumeric() {
			fallback = arrow.PrimitiveTypes.Float64
		}
		columns = append(columns, values)
		fields = append(fields, arrow.Field{
			Name:     index.Format(key),
			Type:     arrowType(values, fallback),
			Nullable: true,
		})
	}

	schema := arrow.NewSchema(fields, nil)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, values := range columns {
		if err := appendArrow(builder.Field(i), values); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot convert column").
				WithDetail("field", fields[i].Name)
		}
	}
	return builder.NewRecord(), nil
}

// arrowType picks the Arrow type shared by every non-null value, or
// fallback when there are none. Mixed values become strings.
func arrowType(values []interface{}, fallback arrow.DataType) arrow.DataType {
	var found arrow.DataType
	for _, v := range values {
		if isNull(v) {
			continue
		}
		var dt arrow.DataType
		switch v.(type) {
		case int64:
			dt = arrow.PrimitiveTypes.Int64
		case float64:
			dt = arrow.PrimitiveTypes.Float64
		case bool:
			dt = arrow.FixedWidthTypes.Boolean
		case time.Time:
			dt = arrow.FixedWidthTypes.Timestamp_ns
		default:
			return arrow.BinaryTypes.String
		}
		switch {
		case found == nil:
			found = dt
		case arrow.TypeEqual(found, dt):
		case isNumericType(found) && isNumericType(dt):
			found = arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	if found == nil {
		return fallback
	}
	return found
}

func isNumericType(dt arrow.DataType) bool {
	return dt.ID() == arrow.INT64 || dt.ID() == arrow.FLOAT64
}

func isNull(v interface{}) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

func appendArrow(b array.Builder, values []interface{}) error {
	for _, v := range values {
		if isNull(v) {
			b.AppendNull()
			continue
		}
		switch bb := b.(type) {
		case *array.Float64Builder:
			switch x := v.(type) {
			case float64:
				bb.Append(x)
			case int64:
				bb.Append(float64(x))
			default:
				return errors.Newf(errors.ErrorTypeCoercionFailure, "cannot store %T as float64", v)
			}
		case *array.Int64Builder:
			bb.Append(v.(int64))
		case *array.BooleanBuilder:
			bb.Append(v.(bool))
		case *array.TimestampBuilder:
			bb.Append(arrow.Timestamp(v.(time.Time).UnixNano()))
		case *array.StringBuilder:
			bb.Append(index.Format(v))
		default:
			return errors.Newf(errors.ErrorTypeCoercionFailure, "unsupported builder %T", b)
		}
	}
	return nil
}

// FromArrow builds a table from an Arrow record. A field named IndexField
// becomes the row index; otherwise rows are numbered from zero. Column types
// are re-inferred from the values, so integer arrays with nulls become
// float64 columns.
func FromArrow(rec arrow.Record) (out *Table, err error) {
	timer := metrics.NewTimer("from_arrow")
	defer func() { observe(timer, err) }()

	var rows *index.Index
	data := make(map[index.Label]interface{}, int(rec.NumCols()))
	labels := make([]index.Label, 0, int(rec.NumCols()))

	for i := 0; i < int(rec.NumCols()); i++ {
		name := rec.ColumnName(i)
		values, err := arrowValues(rec.Column(i))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot read field").
				WithDetail("field", name)
		}
		if name == IndexField {
			if rows, err = index.New(values); err != nil {
				return nil, err
			}
			continue
		}
		data[name] = columnar.FromValues(values)
		labels = append(labels, name)
	}

	columns, err := index.New(labels)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = index.Range(int(rec.NumRows()))
	}
	return New(data, WithIndex(rows), WithColumns(columns))
}

func arrowValues(arr arrow.Array) ([]interface{}, error) {
	out := make([]interface{}, arr.Len())
	for i := range out {
		if arr.IsNull(i) {
			continue
		}
		switch a := arr.(type) {
		case *array.Float64:
			out[i] = a.Value(i)
		case *array.Float32:
			out[i] = float64(a.Value(i))
		case *array.Int64:
			out[i] = a.Value(i)
		case *array.Int32:
			out[i] = int64(a.Value(i))
		case *array.Boolean:
			out[i] = a.Value(i)
		case *array.String:
			out[i] = a.Value(i)
		case *array.LargeString:
			out[i] = a.Value(i)
		case *array.Timestamp:
			unit := a.DataType().(*arrow.TimestampType).Unit
			out[i] = a.Value(i).ToTime(unit).UTC()
		default:
			return nil, errors.Newf(errors.ErrorTypeCoercionFailure, "unsupported arrow type %s", arr.DataType())
		}
	}
	return out, nil
}
