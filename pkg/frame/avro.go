package frame

import (
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	pkgjson "github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// avroLayoutKey is the container metadata entry holding the column names and
// the fields that store times
const avroLayoutKey = "tabula.layout"

// Avro primitive kinds used for columns. Times travel as nanosecond longs
// and are listed in the layout metadata.
const (
	avroLong    = "long"
	avroDouble  = "double"
	avroBoolean = "boolean"
	avroString  = "string"
	avroTime    = "time"
)

var avroName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type avroLayout struct {
	Columns []string `json:"columns"`
	Times   []string `json:"times,omitempty"`
}

type avroField struct {
	Name string      `json:"name"`
	Type interface{} `json:"type"`
}

type avroSchema struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// WriteAvro writes the table as an Avro object container file with the
// given compression (null, deflate or snappy). Row labels go to the
// IndexField field and every column is a nullable field; column labels that
// are not valid Avro names are stored under positional names and restored by
// ReadAvro from the file metadata.
func (t *Table) WriteAvro(w io.Writer, compression string) (err error) {
	timer := metrics.NewTimer("write_avro")
	defer func() { observe(timer, err) }()

	keys := t.Columns().Labels()
	layout := avroLayout{Columns: make([]string, len(keys))}
	schema := avroSchema{Type: "record", Name: "row", Fields: make([]avroField, 0, len(keys)+1)}
	names := make([]string, 0, len(keys)+1)
	kinds := make([]string, 0, len(keys)+1)
	columns := make([][]interface{}, 0, len(keys)+1)

	add := func(name string, values []interface{}, kind string) {
		typ := kind
		if kind == avroTime {
			typ = avroLong
			layout.Times = append(layout.Times, name)
		}
		schema.Fields = append(schema.Fields, avroField{Name: name, Type: []interface{}{"null", typ}})
		names = append(names, name)
		kinds = append(kinds, kind)
		columns = append(columns, values)
	}

	labels := t.rows.Labels()
	add(IndexField, labels, avroKind(labels, avroString))

	seen := map[string]bool{IndexField: true}
	for i, key := range keys {
		blk, pos, _ := t.store.Locate(key)
		values := blk.ColumnObjects(pos)
		fallback := avroString
		if blk.IsNumeric() {
			fallback = avroDouble
		}

		label := index.Format(key)
		name := label
		if !avroName.MatchString(name) || seen[name] {
			name = "_c" + strconv.Itoa(i)
		}
		seen[name] = true
		layout.Columns[i] = label
		add(name, values, avroKind(values, fallback))
	}

	schemaJSON, err := pkgjson.Marshal(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode avro schema")
	}
	layoutJSON, err := pkgjson.Marshal(layout)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode avro layout")
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Schema:          string(schemaJSON),
		CompressionName: compression,
		MetaData:        map[string][]byte{avroLayoutKey: layoutJSON},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to create avro writer").
			WithDetail("compression", compression)
	}

	rows := make([]interface{}, len(labels))
	for r := range rows {
		datum := make(map[string]interface{}, len(names))
		for c, name := range names {
			v, err := avroDatum(columns[c][r], kinds[c])
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeCoercionFailure, "cannot convert column").
					WithDetail("field", name)
			}
			datum[name] = v
		}
		rows[r] = datum
	}
	if len(rows) > 0 {
		if err := ocf.Append(rows); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write avro block")
		}
	}
	return nil
}

// avroKind picks the kind shared by every non-null value, or fallback when
// there are none. Mixed values become strings.
func avroKind(values []interface{}, fallback string) string {
	found := ""
	for _, v := range values {
		if isNull(v) {
			continue
		}
		var kind string
		switch v.(type) {
		case int64:
			kind = avroLong
		case float64:
			kind = avroDouble
		case bool:
			kind = avroBoolean
		case time.Time:
			kind = avroTime
		default:
			return avroString
		}
		switch {
		case found == "" || found == kind:
			found = kind
		case (found == avroLong || found == avroDouble) && (kind == avroLong || kind == avroDouble):
			found = avroDouble
		default:
			return avroString
		}
	}
	if found == "" {
		return fallback
	}
	return found
}

func avroDatum(v interface{}, kind string) (interface{}, error) {
	if isNull(v) {
		return nil, nil
	}
	switch kind {
	case avroLong:
		return goavro.Union(avroLong, v.(int64)), nil
	case avroDouble:
		switch x := v.(type) {
		case float64:
			return goavro.Union(avroDouble, x), nil
		case int64:
			return goavro.Union(avroDouble, float64(x)), nil
		}
		return nil, errors.Newf(errors.ErrorTypeCoercionFailure, "cannot store %T as double", v)
	case avroBoolean:
		return goavro.Union(avroBoolean, v.(bool)), nil
	case avroTime:
		return goavro.Union(avroLong, v.(time.Time).UnixNano()), nil
	default:
		return goavro.Union(avroString, index.Format(v)), nil
	}
}

// ReadAvro reads an Avro object container file into a table. Files written
// by WriteAvro get back their row labels, column names and times; other
// files are read field by field with rows numbered from zero.
func ReadAvro(r io.Reader) (out *Table, err error) {
	timer := metrics.NewTimer("read_avro")
	defer func() { observe(timer, err) }()

	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid avro file")
	}

	var schema avroSchema
	if err := pkgjson.Unmarshal([]byte(ocf.Codec().Schema()), &schema); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "avro schema is not a record")
	}
	if schema.Type != "record" {
		return nil, errors.Newf(errors.ErrorTypeValidation, "avro schema type %q is not a record", schema.Type)
	}

	var layout avroLayout
	if raw, ok := ocf.MetaData()[avroLayoutKey]; ok {
		if err := pkgjson.Unmarshal(raw, &layout); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid avro layout metadata")
		}
	}
	times := make(map[string]bool, len(layout.Times))
	for _, name := range layout.Times {
		times[name] = true
	}

	columns := make([][]interface{}, len(schema.Fields))
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to read avro record")
		}
		record, ok := datum.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeValidation, "avro datum is %T, not a record", datum)
		}
		for i, field := range schema.Fields {
			v := unwrapUnion(record[field.Name])
			if n, ok := v.(int64); ok && times[field.Name] {
				v = time.Unix(0, n).UTC()
			}
			columns[i] = append(columns[i], v)
		}
	}
	if err := ocf.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to read avro blocks")
	}

	var rows *index.Index
	data := make(map[index.Label]interface{}, len(schema.Fields))
	labels := make([]index.Label, 0, len(schema.Fields))
	n := 0
	for i, field := range schema.Fields {
		values := columns[i]
		if values == nil {
			values = []interface{}{}
		}
		n = len(values)
		if field.Name == IndexField {
			if rows, err = index.New(values); err != nil {
				return nil, err
			}
			continue
		}
		name := field.Name
		if pos := len(labels); pos < len(layout.Columns) {
			name = layout.Columns[pos]
		}
		data[name] = columnar.FromValues(values)
		labels = append(labels, name)
	}

	cols, err := index.New(labels)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = index.Range(n)
	}

	log().Debug("avro file read",
		zap.Int("rows", rows.Len()),
		zap.Int("columns", cols.Len()),
		zap.Bool("layout", len(layout.Columns) > 0))
	return New(data, WithIndex(rows), WithColumns(cols))
}

// unwrapUnion returns the value inside a decoded union, which goavro hands
// back as a single-entry map keyed by the branch type, widened to the label
// types used by tables
func unwrapUnion(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok && len(m) == 1 {
		for _, inner := range m {
			v = inner
		}
	}
	switch x := v.(type) {
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	}
	return v
}
