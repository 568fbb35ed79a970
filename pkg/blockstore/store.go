// Package blockstore owns the dtype-segregated storage of a table: one
// numeric block plus an optional object block sharing the same rows.
//
// The logical column order lives on the Store. Each block keeps its own
// columns in the logical order restricted to that block, and the two blocks'
// column sets are disjoint with their union equal to the logical columns.
// The numeric block always exists, possibly with zero columns, so that the
// row count is defined even when every column is an object column.
package blockstore

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/block"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/metrics"
)

var collector = metrics.NewCollector("blockstore")

// Store is the segregated storage behind one table
type Store struct {
	rows    int
	columns *index.Index
	numeric *block.Block
	objects *block.Block
}

// New returns an empty store with rows rows and no columns
func New(rows int) *Store {
	return &Store{
		rows:    rows,
		columns: index.Empty(),
		numeric: block.EmptyNumeric(rows),
	}
}

// FromBlocks assembles a store from existing blocks. objects may be nil.
// The blocks must share the row count and hold disjoint columns whose union
// is columns, each in columns' relative order.
func FromBlocks(columns *index.Index, numeric, objects *block.Block) (*Store, error) {
	if numeric == nil || !numeric.IsNumeric() {
		return nil, errors.New(errors.ErrorTypeInternal, "store requires a numeric block")
	}
	s := &Store{rows: numeric.Rows(), columns: columns, numeric: numeric}

	if objects != nil {
		if objects.IsNumeric() {
			return nil, errors.New(errors.ErrorTypeInternal, "object slot holds a numeric block")
		}
		if objects.Rows() != numeric.Rows() {
			return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
				"object block has %d rows, numeric block has %d", objects.Rows(), numeric.Rows())
		}
		if objects.Width() > 0 {
			s.objects = objects
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// validate checks the segregation invariants
func (s *Store) validate() error {
	width := s.numeric.Width()
	if s.objects != nil {
		width += s.objects.Width()
	}
	if width != s.columns.Len() {
		return errors.Newf(errors.ErrorTypeShapeMismatch,
			"blocks hold %d columns, store declares %d", width, s.columns.Len())
	}

	for _, blk := range s.blocks() {
		expected := s.columns.Retain(blk.Columns())
		if !expected.Equals(blk.Columns()) {
			return errors.New(errors.ErrorTypeInternal, "block columns are not in logical order").
				WithDetail("block", blk.Kind().String())
		}
	}
	if s.objects != nil && s.numeric.Columns().Intersection(s.objects.Columns()).Len() > 0 {
		return errors.New(errors.ErrorTypeDuplicateLabel, "column stored in both blocks")
	}
	return nil
}

func (s *Store) blocks() []*block.Block {
	if s.objects == nil {
		return []*block.Block{s.numeric}
	}
	return []*block.Block{s.numeric, s.objects}
}

// Rows returns the row count
func (s *Store) Rows() int { return s.rows }

// Columns returns the logical column order
func (s *Store) Columns() *index.Index { return s.columns }

// Numeric returns the numeric block
func (s *Store) Numeric() *block.Block { return s.numeric }

// Objects returns the object block, or nil when every column is numeric
func (s *Store) Objects() *block.Block { return s.objects }

// HasObjects reports whether an object block is present
func (s *Store) HasObjects() bool { return s.objects != nil }

// NumericColumns returns the labels stored in the numeric block
func (s *Store) NumericColumns() *index.Index { return s.numeric.Columns() }

// ObjectColumns returns the labels stored in the object block
func (s *Store) ObjectColumns() *index.Index {
	if s.objects == nil {
		return index.Empty()
	}
	return s.objects.Columns()
}

// Locate returns the block holding key and its position within that block
func (s *Store) Locate(key index.Label) (*block.Block, int, bool) {
	if pos, ok := s.numeric.Columns().PositionOf(key); ok {
		return s.numeric, pos, true
	}
	if s.objects != nil {
		if pos, ok := s.objects.Columns().PositionOf(key); ok {
			return s.objects, pos, true
		}
	}
	return nil, -1, false
}

// Copy returns a deep copy of the store
func (s *Store) Copy() *Store {
	out := &Store{rows: s.rows, columns: s.columns, numeric: s.numeric.Copy()}
	if s.objects != nil {
		out.objects = s.objects.Copy()
	}
	return out
}

// Relabel returns a copy with every column label mapped through fn. The
// mapped labels must stay unique.
func (s *Store) Relabel(fn func(index.Label) index.Label) (*Store, error) {
	mapper := func(l index.Label) (index.Label, error) { return fn(l), nil }

	out := s.Copy()
	columns, err := s.columns.Map(mapper)
	if err != nil {
		return nil, err
	}
	out.columns = columns
	for _, slot := range []**block.Block{&out.numeric, &out.objects} {
		if *slot == nil {
			continue
		}
		labels, err := (*slot).Columns().Map(mapper)
		if err != nil {
			return nil, err
		}
		if *slot, err = (*slot).WithColumns(labels); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// blockPosition is the position within blk at which a column inserted at
// logical position loc belongs
func (s *Store) blockPosition(blk *block.Block, loc int) int {
	if blk == nil {
		return 0
	}
	pos := 0
	for i := 0; i < loc && i < s.columns.Len(); i++ {
		if blk.Columns().Contains(s.columns.At(i)) {
			pos++
		}
	}
	return pos
}

func log() *zap.Logger {
	return logger.With(zap.String("component", "blockstore"))
}
