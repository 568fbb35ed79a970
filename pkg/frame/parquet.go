package frame

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

// WriteParquet writes the table as a single row group through ToArrow. The
// Arrow schema is stored in the file so that ReadParquet restores the same
// column types.
func (t *Table) WriteParquet(w io.Writer, codec compress.Compression) (err error) {
	timer := metrics.NewTimer("write_parquet")
	defer func() { observe(timer, err) }()

	mem := memory.NewGoAllocator()
	rec, err := t.ToArrow(mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(mem),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write parquet row group")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to close parquet writer")
	}
	return nil
}

// ReadParquet reads a whole parquet file into a table. Files written by
// WriteParquet get their row labels back from the IndexField column.
func ReadParquet(r parquet.ReaderAtSeeker) (out *Table, err error) {
	timer := metrics.NewTimer("read_parquet")
	defer func() { observe(timer, err) }()

	pf, err := file.NewParquetReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid parquet file")
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to open parquet columns")
	}

	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to read parquet table")
	}
	defer tbl.Release()

	// one chunk holding every row
	tr := array.NewTableReader(tbl, tbl.NumRows())
	defer tr.Release()

	var rec arrow.Record
	if tr.Next() {
		rec = tr.Record()
	} else {
		b := array.NewRecordBuilder(mem, tbl.Schema())
		defer b.Release()
		rec = b.NewRecord()
		defer rec.Release()
	}

	log().Debug("parquet file read",
		zap.Int64("rows", tbl.NumRows()),
		zap.Int64("columns", tbl.NumCols()),
		zap.Int("row_groups", pf.NumRowGroups()))
	return FromArrow(rec)
}
