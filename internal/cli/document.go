// Package cli holds the pieces of the tabula command line that are worth
// testing without a process: the JSON document codec and the Engine that
// loads tables, runs one operation and writes the result.
package cli

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/frame"
	"github.com/ajitpratap0/tabula/pkg/index"
	pkgjson "github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/pool"
)

// Document is the JSON form of a table. Columns keep their order. Records is
// an alternative row-oriented input; when present Index and Columns must be
// empty.
//
//	{"index": ["x", "y"], "columns": [{"name": "a", "values": [1, 2]}]}
type Document struct {
	Index   []interface{}            `json:"index,omitempty"`
	Columns []ColumnData             `json:"columns,omitempty"`
	Records []map[string]interface{} `json:"records,omitempty"`
}

// ColumnData is one named column of a Document
type ColumnData struct {
	Name   interface{}   `json:"name"`
	Values []interface{} `json:"values"`
}

// Decode reads one Document from r and builds its table
func Decode(r io.Reader) (*frame.Table, error) {
	var doc Document
	if err := pkgjson.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to decode document")
	}
	return doc.Table()
}

// Table converts the document into a table
func (d *Document) Table() (*frame.Table, error) {
	if len(d.Records) > 0 {
		if len(d.Columns) > 0 || len(d.Index) > 0 {
			return nil, errors.New(errors.ErrorTypeValidation,
				"a document holds either records or index and columns, not both")
		}
		return d.fromRecords()
	}

	var opts []frame.Option
	if d.Index != nil {
		rows, err := index.New(decodeValues(d.Index))
		if err != nil {
			return nil, err
		}
		opts = append(opts, frame.WithIndex(rows))
	}

	data := make(map[index.Label]interface{}, len(d.Columns))
	names := make([]index.Label, len(d.Columns))
	for i, c := range d.Columns {
		name := decodeValue(c.Name)
		if name == nil {
			return nil, errors.Newf(errors.ErrorTypeValidation, "column %d has no name", i)
		}
		names[i] = name
		data[name] = decodeValues(c.Values)
	}
	columns, err := index.New(names)
	if err != nil {
		return nil, err
	}
	opts = append(opts, frame.WithColumns(columns))
	return frame.New(data, opts...)
}

// fromRecords builds columns in first-seen order. A frame.IndexField key
// present in every record supplies the row labels.
func (d *Document) fromRecords() (*frame.Table, error) {
	builder := columnar.NewBuilder()
	labels := make([]index.Label, 0, len(d.Records))
	for i, rec := range d.Records {
		row := make(map[string]interface{}, len(rec))
		for k, v := range rec {
			if k == frame.IndexField {
				labels = append(labels, decodeValue(v))
				continue
			}
			row[pool.InternString(k)] = decodeValue(v)
		}
		if err := builder.AppendRow(row); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeCoercionFailure, "failed to append record").
				WithDetail("record", i)
		}
	}

	var opts []frame.Option
	if len(labels) == len(d.Records) {
		rows, err := index.New(labels)
		if err != nil {
			return nil, err
		}
		opts = append(opts, frame.WithIndex(rows))
	}

	names := builder.ColumnNames()
	data := make(map[index.Label]interface{}, len(names))
	keys := make([]index.Label, len(names))
	for i, name := range names {
		col, _ := builder.Column(name)
		data[name] = col
		keys[i] = name
	}
	columns, err := index.New(keys)
	if err != nil {
		return nil, err
	}
	return frame.New(data, append(opts, frame.WithColumns(columns))...)
}

// DecodeRecords reads newline-delimited JSON objects from r, one row each
func DecodeRecords(r io.Reader) (*frame.Table, error) {
	dec := pkgjson.NewDecoder(r)
	var doc Document
	for {
		var rec map[string]interface{}
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to decode record").
				WithDetail("record", len(doc.Records))
		}
		doc.Records = append(doc.Records, rec)
	}
	if len(doc.Records) == 0 {
		return frame.Empty(nil), nil
	}
	return doc.Table()
}

func decodeValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = decodeValue(v)
	}
	return out
}

// decodeValue turns JSON numbers into int64 or float64 and RFC 3339 strings
// into times
func decodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case pkgjson.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string:
		if t, ok := parseTime(val); ok {
			return t
		}
		return pool.InternString(val)
	}
	return v
}

func parseTime(s string) (time.Time, bool) {
	// cheap reject before trying the layouts
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewDocument converts a table into its JSON form. Null cells, NaN and
// infinities become JSON null.
func NewDocument(tbl *frame.Table) (*Document, error) {
	m, err := tbl.ToMatrix(nil)
	if err != nil {
		return nil, err
	}
	columns := tbl.Columns()
	doc := &Document{
		Index:   encodeValues(tbl.Rows().Labels()),
		Columns: make([]ColumnData, columns.Len()),
	}
	for j := range doc.Columns {
		doc.Columns[j] = ColumnData{
			Name:   encodeValue(columns.At(j)),
			Values: encodeValues(m.Col(j)),
		}
	}
	return doc, nil
}

// Records flattens a table into one map per row keyed by the formatted
// column label. The row label is stored under frame.IndexField.
func Records(tbl *frame.Table) ([]interface{}, error) {
	m, err := tbl.ToMatrix(nil)
	if err != nil {
		return nil, err
	}
	columns := tbl.Columns()
	keys := make([]string, columns.Len())
	for j := range keys {
		keys[j] = index.Format(columns.At(j))
	}

	out := make([]interface{}, m.Rows())
	for i := range out {
		rec := make(map[string]interface{}, len(keys)+1)
		rec[frame.IndexField] = encodeValue(tbl.Rows().At(i))
		for j, key := range keys {
			rec[key] = encodeValue(m.At(i, j))
		}
		out[i] = rec
	}
	return out, nil
}

func encodeValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = encodeValue(v)
	}
	return out
}

func encodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
	case time.Time:
		return val.Format(time.RFC3339Nano)
	}
	return v
}

// ParseLabel interprets a command-line argument as a label: integers, floats
// and dates are recognised, anything else stays a string
func ParseLabel(s string) index.Label {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if t, ok := parseTime(s); ok {
		return t
	}
	return s
}

// ParseLabels splits a comma-separated list into labels
func ParseLabels(s string) []index.Label {
	if strings.TrimSpace(s) == "" {
		return []index.Label{}
	}
	parts := strings.Split(s, ",")
	labels := make([]index.Label, len(parts))
	for i, p := range parts {
		labels[i] = ParseLabel(p)
	}
	return labels
}

// ParseOffset parses a shift frequency. Go durations ("90m", "1h30m") shift
// time labels exactly; a count with a D, M or Y suffix ("3D", "M") shifts by
// calendar days, months or years; a bare number is a numeric step. The
// calendar suffixes are upper case so that "1m" stays a minute.
func ParseOffset(s string) (index.Offset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "empty offset")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return index.Step(f), nil
	}

	unit := s[len(s)-1:]
	if unit == "D" || unit == "M" || unit == "Y" {
		count := 1
		if head := s[:len(s)-1]; head != "" {
			n, err := strconv.Atoi(head)
			if err == nil {
				count = n
			} else {
				count = 0
			}
		}
		if count != 0 {
			switch unit {
			case "D":
				return index.Calendar{Days: count}, nil
			case "M":
				return index.Calendar{Months: count}, nil
			default:
				return index.Calendar{Years: count}, nil
			}
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unrecognised offset %q", s)
	}
	return index.Duration(d), nil
}
