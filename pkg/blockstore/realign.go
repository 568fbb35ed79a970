package blockstore

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// ReindexRows gathers rows by ix. The same indexer drives both blocks;
// invalid positions become null rows, promoting an int or bool numeric block
// to float64. operation names the caller for logs and metrics.
func (s *Store) ReindexRows(ix *align.Indexer, operation string) *Store {
	out := &Store{
		rows:    ix.Len(),
		columns: s.columns,
		numeric: s.numeric.TakeRows(ix),
	}
	if s.objects != nil {
		out.objects = s.objects.TakeRows(ix)
	}

	if invalid := ix.Invalid(); invalid > 0 {
		if s.numeric.DType() != block.Float64 && s.numeric.Width() > 0 {
			log().Debug("numeric block promoted to float64",
				zap.String("operation", operation),
				zap.String("from", s.numeric.DType().String()))
			collector.Promotion(operation)
		}
		collector.Nulled(operation, invalid*s.columns.Len())
	}
	return out
}

// ReindexColumns realigns the store onto target columns. Columns currently
// in the object block stay there; every other target column is numeric, with
// new columns all null. An object block left without columns is dropped.
func (s *Store) ReindexColumns(target *index.Index, operation string) (*Store, error) {
	objCols := target.Retain(s.ObjectColumns())
	numCols := target.Exclude(objCols)

	numIx, err := align.GetIndexer(s.numeric.Columns(), numCols, align.None)
	if err != nil {
		return nil, err
	}
	out := &Store{
		rows:    s.rows,
		columns: target,
		numeric: s.numeric.TakeColumns(numIx, numCols),
	}
	if invalid := numIx.Invalid(); invalid > 0 {
		if s.numeric.DType() != block.Float64 && s.numeric.Width() > 0 {
			log().Debug("numeric block promoted to float64",
				zap.String("operation", operation),
				zap.String("from", s.numeric.DType().String()))
			collector.Promotion(operation)
		}
		collector.Nulled(operation, invalid*s.rows)
	}

	if objCols.Len() > 0 {
		objIx, err := align.GetIndexer(s.objects.Columns(), objCols, align.None)
		if err != nil {
			return nil, err
		}
		out.objects = s.objects.TakeColumns(objIx, objCols)
	}
	return out, nil
}

// SliceRows returns a copy of rows [start, end)
func (s *Store) SliceRows(start, end int) *Store {
	out := &Store{
		rows:    end - start,
		columns: s.columns,
		numeric: s.numeric.SliceRows(start, end),
	}
	if s.objects != nil {
		out.objects = s.objects.SliceRows(start, end)
	}
	return out
}

// VStack stacks other beneath s. Both stores must have the same columns in
// the same blocks.
func (s *Store) VStack(other *Store) (*Store, error) {
	if !s.columns.Equals(other.columns) ||
		!s.numeric.Columns().Equals(other.numeric.Columns()) ||
		!s.ObjectColumns().Equals(other.ObjectColumns()) {
		return nil, errors.New(errors.ErrorTypeShapeMismatch, "cannot stack stores with different column layouts")
	}

	num, err := block.VStack(s.numeric.Numeric(), other.numeric.Numeric())
	if err != nil {
		return nil, err
	}
	dtype := block.CommonDType(s.numeric.DType(), other.numeric.DType())
	numeric, err := block.NewNumeric(num, s.numeric.Columns(), dtype)
	if err != nil {
		return nil, err
	}

	out := &Store{rows: s.rows + other.rows, columns: s.columns, numeric: numeric}
	if s.objects != nil {
		obj, err := block.VStack(s.objects.Objects(), other.objects.Objects())
		if err != nil {
			return nil, err
		}
		if out.objects, err = block.NewObject(obj, s.objects.Columns()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
