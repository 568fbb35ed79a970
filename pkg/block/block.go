// Package block implements the dtype-segregated 2-D storage behind a table.
//
// A Block is a tagged union: a numeric block keeps float64 storage plus a
// logical dtype tag (float64, int64 or bool), and an object block keeps boxed
// values. The tag is fixed at construction and never re-derived by looking at
// values. Integer and boolean blocks have no null; anything that introduces
// nulls promotes the block to float64 first and then writes NaN.
package block

import (
	"math"

	"github.com/ajitpratap0/tabula/pkg/align"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// Kind tags the storage variant of a block
type Kind int

const (
	// KindNumeric blocks store float64 values
	KindNumeric Kind = iota
	// KindObject blocks store boxed values
	KindObject
)

func (k Kind) String() string {
	if k == KindObject {
		return "object"
	}
	return "numeric"
}

// DType is the logical element type of a numeric block
type DType int

const (
	Float64 DType = iota
	Int64
	Bool
)

func (d DType) String() string {
	switch d {
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return "float64"
	}
}

// Nullable reports whether the dtype can represent NaN
func (d DType) Nullable() bool {
	return d == Float64
}

// CommonDType returns the dtype able to hold values of both a and b
func CommonDType(a, b DType) DType {
	if a == b {
		return a
	}
	return Float64
}

// Block is a 2-D homogeneous array plus the labels of its columns
type Block struct {
	kind    Kind
	dtype   DType
	columns *index.Index
	num     *Dense[float64]
	obj     *Dense[interface{}]
}

// NewNumeric builds a numeric block. The column index must match the
// array's column count.
func NewNumeric(values *Dense[float64], columns *index.Index, dtype DType) (*Block, error) {
	if values.Cols() != columns.Len() {
		return nil, shapeError(values.Cols(), columns.Len())
	}
	return &Block{kind: KindNumeric, dtype: dtype, columns: columns, num: values}, nil
}

// NewObject builds an object block
func NewObject(values *Dense[interface{}], columns *index.Index) (*Block, error) {
	if values.Cols() != columns.Len() {
		return nil, shapeError(values.Cols(), columns.Len())
	}
	return &Block{kind: KindObject, columns: columns, obj: values}, nil
}

// EmptyNumeric returns a numeric block with rows rows and no columns
func EmptyNumeric(rows int) *Block {
	return &Block{
		kind:    KindNumeric,
		dtype:   Float64,
		columns: index.Empty(),
		num:     NewDense[float64](rows, 0),
	}
}

func shapeError(cols, labels int) error {
	return errors.Newf(errors.ErrorTypeShapeMismatch,
		"array has %d columns but %d column labels were given", cols, labels)
}

// Kind returns the storage variant
func (b *Block) Kind() Kind { return b.kind }

// DType returns the logical dtype of a numeric block. Object blocks report
// Float64.
func (b *Block) DType() DType { return b.dtype }

// IsNumeric reports whether the block stores float64 values
func (b *Block) IsNumeric() bool { return b.kind == KindNumeric }

// Columns returns the block's column labels
func (b *Block) Columns() *index.Index { return b.columns }

// Rows returns the row count
func (b *Block) Rows() int {
	if b.kind == KindObject {
		return b.obj.Rows()
	}
	return b.num.Rows()
}

// Width returns the column count
func (b *Block) Width() int { return b.columns.Len() }

// Numeric returns the float64 storage of a numeric block
func (b *Block) Numeric() *Dense[float64] { return b.num }

// Objects returns the boxed storage of an object block
func (b *Block) Objects() *Dense[interface{}] { return b.obj }

// Box returns element (i, j) boxed in its logical type: int64 and bool
// blocks yield int64 and bool, float64 blocks yield float64
func (b *Block) Box(i, j int) interface{} {
	if b.kind == KindObject {
		return b.obj.At(i, j)
	}
	v := b.num.At(i, j)
	switch b.dtype {
	case Int64:
		return int64(v)
	case Bool:
		return v != 0
	default:
		return v
	}
}

// Copy returns a deep copy
func (b *Block) Copy() *Block {
	out := *b
	if b.num != nil {
		out.num = b.num.Clone()
	}
	if b.obj != nil {
		out.obj = b.obj.Clone()
	}
	return &out
}

// Promote returns the block with a float64 dtype. The storage is shared, so
// the receiver must not be used afterwards.
func (b *Block) Promote() *Block {
	if b.kind == KindObject || b.dtype == Float64 {
		return b
	}
	out := *b
	out.dtype = Float64
	return &out
}

// WithDType retags a numeric block
func (b *Block) WithDType(dtype DType) *Block {
	out := *b
	out.dtype = dtype
	return &out
}

// WithColumns returns the block relabelled with columns, sharing storage
func (b *Block) WithColumns(columns *index.Index) (*Block, error) {
	if columns.Len() != b.Width() {
		return nil, shapeError(b.Width(), columns.Len())
	}
	out := *b
	out.columns = columns
	return &out, nil
}

// TakeRows gathers rows by indexer. Invalid positions become null rows; a
// numeric block is promoted to float64 first when any position is invalid.
func (b *Block) TakeRows(ix *align.Indexer) *Block {
	return b.take(AxisRows, ix, b.columns)
}

// TakeColumns gathers columns by indexer and relabels them with columns.
// Invalid positions become null columns.
func (b *Block) TakeColumns(ix *align.Indexer, columns *index.Index) *Block {
	return b.take(AxisColumns, ix, columns)
}

func (b *Block) take(axis Axis, ix *align.Indexer, columns *index.Index) *Block {
	mask := ix.Mask
	if ix.AllValid() {
		mask = nil
	}

	out := &Block{kind: b.kind, dtype: b.dtype, columns: columns}
	if b.kind == KindObject {
		out.obj = b.obj.Take(axis, ix.Positions, mask, nil)
		return out
	}
	if mask != nil {
		out.dtype = Float64
	}
	out.num = b.num.Take(axis, ix.Positions, mask, math.NaN())
	return out
}

// ColumnFloats returns a copy of numeric column j
func (b *Block) ColumnFloats(j int) []float64 {
	return b.num.Col(j)
}

// ColumnObjects returns column j boxed in its logical type
func (b *Block) ColumnObjects(j int) []interface{} {
	if b.kind == KindObject {
		return b.obj.Col(j)
	}
	out := make([]interface{}, b.Rows())
	for i := range out {
		out[i] = b.Box(i, j)
	}
	return out
}

// Insert returns a copy with a numeric column inserted at loc. The block
// dtype becomes the common dtype of the block and the column.
func (b *Block) Insert(loc int, label index.Label, values []float64, dtype DType) (*Block, error) {
	if b.kind != KindNumeric {
		return nil, errors.New(errors.ErrorTypeInternal, "numeric insert into object block")
	}
	columns, err := b.insertLabel(loc, label, len(values))
	if err != nil {
		return nil, err
	}
	out := &Block{kind: KindNumeric, columns: columns, num: b.num.InsertCol(loc, values)}
	out.dtype = dtype
	if b.Width() > 0 {
		out.dtype = CommonDType(b.dtype, dtype)
	}
	return out, nil
}

// InsertObjects returns a copy with an object column inserted at loc
func (b *Block) InsertObjects(loc int, label index.Label, values []interface{}) (*Block, error) {
	if b.kind != KindObject {
		return nil, errors.New(errors.ErrorTypeInternal, "object insert into numeric block")
	}
	columns, err := b.insertLabel(loc, label, len(values))
	if err != nil {
		return nil, err
	}
	return &Block{kind: KindObject, columns: columns, obj: b.obj.InsertCol(loc, values)}, nil
}

func (b *Block) insertLabel(loc int, label index.Label, n int) (*index.Index, error) {
	if n != b.Rows() {
		return nil, errors.Newf(errors.ErrorTypeShapeMismatch,
			"column has %d values, block has %d rows", n, b.Rows())
	}
	return b.columns.Insert(loc, label)
}

// Delete returns a copy without the labelled column
func (b *Block) Delete(label index.Label) (*Block, error) {
	loc, ok := b.columns.PositionOf(label)
	if !ok {
		return nil, errors.New(errors.ErrorTypeMissingColumn, "column not found").
			WithDetail("column", label)
	}
	out := &Block{kind: b.kind, dtype: b.dtype, columns: b.columns.Delete(loc)}
	if b.kind == KindObject {
		out.obj = b.obj.DeleteCol(loc)
	} else {
		out.num = b.num.DeleteCol(loc)
	}
	return out, nil
}

// SetFloats overwrites numeric column j in place. A float column written
// into an int or bool block promotes the block tag.
func (b *Block) SetFloats(j int, values []float64, dtype DType) {
	b.num.SetCol(j, values)
	b.dtype = CommonDType(b.dtype, dtype)
}

// SetObjects overwrites object column j in place
func (b *Block) SetObjects(j int, values []interface{}) {
	b.obj.SetCol(j, values)
}

// ToObject converts a numeric block into an object block, boxing values in
// their logical type and mapping NaN to nil
func (b *Block) ToObject() *Block {
	if b.kind == KindObject {
		return b
	}
	out := NewDense[interface{}](b.Rows(), b.Width())
	for i := 0; i < b.Rows(); i++ {
		for j := 0; j < b.Width(); j++ {
			if b.dtype == Float64 && math.IsNaN(b.num.At(i, j)) {
				continue
			}
			out.Set(i, j, b.Box(i, j))
		}
	}
	return &Block{kind: KindObject, columns: b.columns, obj: out}
}

// SliceRows returns a copy of rows [start, end)
func (b *Block) SliceRows(start, end int) *Block {
	out := &Block{kind: b.kind, dtype: b.dtype, columns: b.columns}
	if b.kind == KindObject {
		out.obj = b.obj.SliceRows(start, end)
	} else {
		out.num = b.num.SliceRows(start, end)
	}
	return out
}
