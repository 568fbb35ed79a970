package blockstore

import (
	"math"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// Append is the insertion position meaning "after the last column"
const Append = -1

// Insert stores col under key. col must already be conformed to the row
// count.
//
// An existing numeric column is overwritten in place when the values cast to
// float64; otherwise the column moves to the object block. An existing
// object column is overwritten in place. A new column goes to the numeric
// block when its type is numeric and to the object block otherwise, at
// logical position loc (or last when loc is Append).
func (s *Store) Insert(key index.Label, col columnar.Column, loc int) error {
	if col.Len() != s.rows {
		return errors.Newf(errors.ErrorTypeShapeMismatch,
			"column has %d values, table has %d rows", col.Len(), s.rows)
	}
	key = index.Normalize(key)

	if pos, ok := s.numeric.Columns().PositionOf(key); ok {
		if vals, ok := columnar.TryCastFloat64s(col); ok {
			dtype := block.Float64
			if col.Type().IsNumeric() {
				dtype = DTypeOf(col)
			}
			s.numeric.SetFloats(pos, vals, dtype)
			return nil
		}
		if err := s.migrate(key, columnar.ToObjects(col)); err != nil {
			return err
		}
		log().Debug("numeric column converted to object after failed cast",
			zap.Any("column", key),
			zap.String("type", col.Type().String()))
		collector.CoercionFallback()
		return nil
	}

	if s.objects != nil {
		if pos, ok := s.objects.Columns().PositionOf(key); ok {
			s.objects.SetObjects(pos, columnar.ToObjects(col))
			return nil
		}
	}

	if loc == Append || loc > s.columns.Len() {
		loc = s.columns.Len()
	}
	if loc < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "insert position %d out of range", loc)
	}

	if col.Type().IsNumeric() {
		vals, err := columnar.ToFloat64s(col)
		if err != nil {
			return err
		}
		numeric, err := s.numeric.Insert(s.blockPosition(s.numeric, loc), key, vals, DTypeOf(col))
		if err != nil {
			return err
		}
		columns, err := s.columns.Insert(loc, key)
		if err != nil {
			return err
		}
		s.numeric, s.columns = numeric, columns
		return nil
	}

	objects, err := s.insertObject(s.blockPosition(s.objects, loc), key, columnar.ToObjects(col))
	if err != nil {
		return err
	}
	columns, err := s.columns.Insert(loc, key)
	if err != nil {
		return err
	}
	s.objects, s.columns = objects, columns
	return nil
}

// migrate replaces numeric column key with object values, keeping its
// logical position
func (s *Store) migrate(key index.Label, values []interface{}) error {
	loc, _ := s.columns.PositionOf(key)

	numeric, err := s.numeric.Delete(key)
	if err != nil {
		return err
	}
	objects, err := s.insertObject(s.blockPosition(s.objects, loc), key, values)
	if err != nil {
		return err
	}
	s.numeric, s.objects = numeric, objects
	return nil
}

func (s *Store) insertObject(pos int, key index.Label, values []interface{}) (*block.Block, error) {
	objects := s.objects
	if objects == nil {
		var err error
		objects, err = block.NewObject(block.NewDense[interface{}](s.rows, 0), index.Empty())
		if err != nil {
			return nil, err
		}
	}
	return objects.InsertObjects(pos, key, values)
}

// Delete removes key from whichever block holds it
func (s *Store) Delete(key index.Label) error {
	loc, ok := s.columns.PositionOf(key)
	if !ok {
		return errors.New(errors.ErrorTypeMissingColumn, "column not found").
			WithDetail("column", key)
	}

	if s.numeric.Columns().Contains(key) {
		numeric, err := s.numeric.Delete(key)
		if err != nil {
			return err
		}
		s.numeric = numeric
	} else {
		objects, err := s.objects.Delete(key)
		if err != nil {
			return err
		}
		s.objects = objects
		if objects.Width() == 0 {
			s.objects = nil
		}
	}
	s.columns = s.columns.Delete(loc)
	return nil
}

// WithObjectColumns returns a copy in which every column of keys that is
// currently numeric has moved to the object block. Keys absent from the
// store are ignored.
func (s *Store) WithObjectColumns(keys *index.Index) (*Store, error) {
	out := s.Copy()
	for _, key := range keys.Labels() {
		pos, ok := out.numeric.Columns().PositionOf(key)
		if !ok {
			continue
		}
		boxed := out.numeric.ColumnObjects(pos)
		for i, v := range boxed {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				boxed[i] = nil
			}
		}
		if err := out.migrate(key, boxed); err != nil {
			return nil, err
		}
	}
	return out, nil
}
