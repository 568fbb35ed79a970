package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/parquet/compress"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/compression"
	"github.com/ajitpratap0/tabula/pkg/config"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/frame"
	"github.com/ajitpratap0/tabula/pkg/index"
	pkgjson "github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/mmap"
	"github.com/ajitpratap0/tabula/pkg/tracing"
)

var collector = metrics.NewCollector("cli")

// avroCompression is the codec of Avro files written by Save
const avroCompression = "snappy"

// Format selects how results are written
type Format string

const (
	// FormatTable renders the aligned text layout
	FormatTable Format = "table"
	// FormatJSON writes one Document
	FormatJSON Format = "json"
	// FormatNDJSON writes one record per row
	FormatNDJSON Format = "ndjson"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatNDJSON:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", errors.Newf(errors.ErrorTypeValidation, "unknown output format %q", s)
}

// Operations maps the names accepted by the combine command to functions
var Operations = map[string]frame.BinaryOp{
	"add": frame.Add,
	"sub": frame.Sub,
	"mul": frame.Mul,
	"div": frame.Div,
	"pow": frame.Pow,
}

// Engine loads input documents, runs one table operation and writes the
// result in the configured format
type Engine struct {
	cfg       *config.EngineConfig
	format    Format
	in        io.Reader
	out       io.Writer
	resources *resourceMonitor
}

// NewEngine validates cfg and prepares an engine reading "-" from in and
// writing to out
func NewEngine(cfg *config.EngineConfig, format string, in io.Reader, out io.Writer) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, format: f, in: in, out: out, resources: newResourceMonitor()}, nil
}

// Load reads the table at path, "-" meaning the engine's input. Parquet and
// Avro files and ".ndjson"/".jsonl" records are recognised by their extension;
// JSON forms may carry a compression extension such as ".json.gz".
func (e *Engine) Load(path string) (*frame.Table, error) {
	if path == "-" {
		return Decode(e.in)
	}
	if isParquet(path) {
		return loadParquet(path)
	}
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to open input").
			WithDetail("path", path)
	}
	defer f.Close()

	var tbl *frame.Table
	if isAvro(path) {
		tbl, err = frame.ReadAvro(f)
	} else {
		tbl, err = decodeStream(f, path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to load table").
			WithDetail("path", path)
	}
	return tbl, nil
}

func loadParquet(path string) (*frame.Table, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	tbl, err := frame.ReadParquet(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to load table").
			WithDetail("path", path)
	}
	return tbl, nil
}

func decodeStream(f io.Reader, path string) (*frame.Table, error) {
	r, err := compression.NewReader(f, compression.FromPath(path))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if isRecords(path) {
		return DecodeRecords(r)
	}
	return Decode(r)
}

// Save writes tbl to path. The extension picks the encoding: ".parquet",
// ".avro", ".ndjson" or ".jsonl" for records and JSON documents otherwise,
// with an optional compression extension on top of the JSON forms.
func (e *Engine) Save(tbl *frame.Table, path string) error {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to create output").
			WithDetail("path", path)
	}
	// the parquet writer may already have closed f
	defer f.Close()

	if isParquet(path) {
		return tbl.WriteParquet(f, compress.Codecs.Snappy)
	}
	if isAvro(path) {
		if err := tbl.WriteAvro(f, avroCompression); err != nil {
			return err
		}
		return f.Close()
	}

	w, err := compression.NewWriter(f, compression.FromPath(path), compression.Default)
	if err != nil {
		return err
	}
	format := FormatJSON
	if isRecords(path) {
		format = FormatNDJSON
	}
	if err := e.encode(w, tbl, format); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

func isAvro(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".avro")
}

func isRecords(path string) bool {
	switch strings.ToLower(filepath.Ext(compression.TrimExtension(path))) {
	case ".ndjson", ".jsonl":
		return true
	}
	return false
}

// Write renders tbl to the engine's output
func (e *Engine) Write(tbl *frame.Table) error {
	return e.encode(e.out, tbl, e.format)
}

func (e *Engine) encode(w io.Writer, tbl *frame.Table, format Format) error {
	switch format {
	case FormatJSON:
		doc, err := NewDocument(tbl)
		if err != nil {
			return err
		}
		return pkgjson.MarshalToWriter(w, doc, "  ")
	case FormatNDJSON:
		records, err := Records(tbl)
		if err != nil {
			return err
		}
		return pkgjson.MarshalLines(w, records)
	default:
		_, err := io.WriteString(w, tbl.Format(e.formatOptions()))
		return err
	}
}

// WriteColumn writes a single column as a one-column table named name
func (e *Engine) WriteColumn(name index.Label, col columnar.Column) error {
	rows := col.Index()
	if rows == nil {
		rows = index.Range(col.Len())
	}
	tbl, err := frame.New(map[index.Label]interface{}{name: col}, frame.WithIndex(rows))
	if err != nil {
		return err
	}
	return e.Write(tbl)
}

func (e *Engine) formatOptions() frame.FormatOptions {
	opts := frame.DefaultFormatOptions()
	opts.MaxRows = e.cfg.Display.MaxRows
	opts.Precision = e.cfg.Display.Precision
	return opts
}

// Run executes one named operation, logging and timing it, and writes the
// table it returns
func (e *Engine) Run(ctx context.Context, operation, source string, fn func() (*frame.Table, error)) error {
	tbl, err := e.run(ctx, operation, source, fn)
	if err != nil {
		return err
	}
	return e.Write(tbl)
}

func (e *Engine) run(ctx context.Context, operation, source string, fn func() (*frame.Table, error)) (tbl *frame.Table, err error) {
	ctx = context.WithValue(ctx, logger.OperationKey, operation)
	ctx = context.WithValue(ctx, logger.TableKey, source)
	log := logger.WithContext(ctx)

	timer := metrics.NewTimer(operation)
	defer func() { collector.ObserveOperation(timer.Name(), timer.Stop(), err) }()

	ctx, span := tracing.Start(ctx, operation, attribute.String("table", source))
	defer func() { tracing.End(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug("running operation")
	before, sampled := e.resources.sample()
	tbl, err = fn()
	if err != nil {
		log.Error("operation failed", zap.Error(err))
		return nil, err
	}
	rows, cols := tbl.Shape()
	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("columns", cols))
	fields := append([]zap.Field{
		zap.Int("rows", rows),
		zap.Int("columns", cols),
		zap.Stringer("dtype", tbl.DType()),
	}, e.resources.fields(before, sampled)...)
	log.Info("operation complete", fields...)
	return tbl, nil
}

// Convert loads src and saves it to dst, converting between JSON documents,
// records, parquet and compressed forms
func (e *Engine) Convert(ctx context.Context, src, dst string) error {
	tbl, err := e.run(ctx, "convert", src, func() (*frame.Table, error) {
		return e.Load(src)
	})
	if err != nil {
		return err
	}
	return e.Save(tbl, dst)
}

// Show loads path and writes it back in the output format
func (e *Engine) Show(ctx context.Context, path string) error {
	return e.Run(ctx, "show", path, func() (*frame.Table, error) {
		return e.Load(path)
	})
}

// Combine aligns two tables and applies the named operation elementwise
func (e *Engine) Combine(ctx context.Context, left, right, op string) error {
	fn, ok := Operations[strings.ToLower(op)]
	if !ok {
		return errors.Newf(errors.ErrorTypeValidation, "unknown operation %q", op)
	}
	return e.Run(ctx, "combine", left, func() (*frame.Table, error) {
		a, err := e.Load(left)
		if err != nil {
			return nil, err
		}
		b, err := e.Load(right)
		if err != nil {
			return nil, err
		}
		return a.Combine(b, fn)
	})
}

// CombineScalar applies the named operation between every numeric cell and
// value
func (e *Engine) CombineScalar(ctx context.Context, path string, value float64, op string) error {
	fn, ok := Operations[strings.ToLower(op)]
	if !ok {
		return errors.Newf(errors.ErrorTypeValidation, "unknown operation %q", op)
	}
	return e.Run(ctx, "combine", path, func() (*frame.Table, error) {
		tbl, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		return tbl.CombineScalar(value, fn)
	})
}

// Reindex conforms the table at path to rows. An empty method uses the
// configured alignment default.
func (e *Engine) Reindex(ctx context.Context, path string, rows []index.Label, method string) error {
	m, err := e.method(method)
	if err != nil {
		return err
	}
	target, err := index.New(rows)
	if err != nil {
		return err
	}
	return e.Run(ctx, "reindex", path, func() (*frame.Table, error) {
		tbl, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		return tbl.Reindex(target, m)
	})
}

func (e *Engine) method(name string) (align.Method, error) {
	if name == "" {
		return e.cfg.Alignment.Method()
	}
	return align.ParseMethod(name)
}

// CumSum writes the cumulative sum along "rows" or "columns"
func (e *Engine) CumSum(ctx context.Context, path, axis string) error {
	a, err := ParseAxis(axis)
	if err != nil {
		return err
	}
	return e.Run(ctx, "cumsum", path, func() (*frame.Table, error) {
		tbl, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		return tbl.CumSum(a)
	})
}

// ParseAxis accepts rows/index/0 and columns/1
func ParseAxis(s string) (block.Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rows", "index", "0":
		return block.AxisRows, nil
	case "columns", "1":
		return block.AxisColumns, nil
	}
	return block.AxisRows, errors.Newf(errors.ErrorTypeValidation, "unknown axis %q", s)
}

// Transpose swaps rows and columns
func (e *Engine) Transpose(ctx context.Context, path string) error {
	return e.Run(ctx, "transpose", path, func() (*frame.Table, error) {
		tbl, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		return tbl.Transpose()
	})
}

// Shift moves values by periods rows, or relabels the rows by periods
// offsets when freq is set
func (e *Engine) Shift(ctx context.Context, path string, periods int, freq string) error {
	var offset index.Offset
	if freq != "" {
		var err error
		if offset, err = ParseOffset(freq); err != nil {
			return err
		}
	}
	return e.Run(ctx, "shift", path, func() (*frame.Table, error) {
		tbl, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		if offset != nil {
			return tbl.ShiftBy(periods, offset)
		}
		return tbl.Shift(periods), nil
	})
}

// Xs writes the row labelled label as a one-column table indexed by the
// source columns
func (e *Engine) Xs(ctx context.Context, path string, label index.Label) (err error) {
	timer := metrics.NewTimer("xs")
	defer func() { collector.ObserveOperation(timer.Name(), timer.Stop(), err) }()

	_, span := tracing.Start(ctx, "xs",
		attribute.String("table", path),
		attribute.String("label", index.Format(label)))
	defer func() { tracing.End(span, err) }()

	log := logger.WithContext(context.WithValue(ctx, logger.TableKey, path)).
		With(zap.String("operation", "xs"), zap.Any("label", label))

	tbl, err := e.Load(path)
	if err != nil {
		return err
	}
	col, err := tbl.Xs(label, true)
	if err != nil {
		log.Error("cross-section failed", zap.Error(err))
		return err
	}
	log.Info("operation complete", zap.Int("values", col.Len()))
	return e.WriteColumn(label, col)
}
