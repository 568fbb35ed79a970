// Package align computes indexers: for every label of a target index, the
// position in a source index whose values should land there. Positions that
// have no source are the sentinel -1 and are flagged invalid in the mask.
package align

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/index"
)

// Sentinel marks a target position with no source
const Sentinel = -1

// Method selects how labels without an exact match are resolved
type Method int

const (
	// None matches labels exactly
	None Method = iota
	// Pad carries the last source label at or before the target forward
	Pad
	// Backfill takes the first source label at or after the target
	Backfill
)

func (m Method) String() string {
	switch m {
	case Pad:
		return "pad"
	case Backfill:
		return "backfill"
	default:
		return "none"
	}
}

// ParseMethod parses a fill method name. The empty string means None; ffill
// and bfill are accepted as aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "pad", "ffill":
		return Pad, nil
	case "backfill", "bfill":
		return Backfill, nil
	}
	return None, errors.Newf(errors.ErrorTypeValidation, "unknown fill method %q", s)
}

// Indexer maps target positions onto source positions
type Indexer struct {
	// Positions holds a source position per target position, or Sentinel
	Positions []int
	// Mask is true where Positions holds a real source position
	Mask []bool
}

// Len returns the target length
func (ix *Indexer) Len() int {
	return len(ix.Positions)
}

// AllValid reports whether every target position has a source
func (ix *Indexer) AllValid() bool {
	return ix.Invalid() == 0
}

// Invalid returns the number of sentinel positions
func (ix *Indexer) Invalid() int {
	n := 0
	for _, ok := range ix.Mask {
		if !ok {
			n++
		}
	}
	return n
}

// IsIdentity reports whether the indexer maps position i onto i for every i
// of a source of length n
func (ix *Indexer) IsIdentity(n int) bool {
	if len(ix.Positions) != n {
		return false
	}
	for i, p := range ix.Positions {
		if p != i {
			return false
		}
	}
	return true
}

// GetIndexer computes the indexer from source onto target. Pad and Backfill
// require a sorted source.
func GetIndexer(source, target *index.Index, method Method) (*Indexer, error) {
	n := target.Len()
	ix := &Indexer{
		Positions: make([]int, n),
		Mask:      make([]bool, n),
	}

	if method != None && !source.IsMonotonic() {
		return nil, errors.Newf(errors.ErrorTypeValidation, "%s fill requires a sorted source index", method)
	}

	for i := 0; i < n; i++ {
		label := target.At(i)
		pos, ok := source.PositionOf(label)
		if !ok && method != None {
			pos, ok = nearest(source, label, method)
		}
		if ok {
			ix.Positions[i] = pos
			ix.Mask[i] = true
		} else {
			ix.Positions[i] = Sentinel
		}
	}
	return ix, nil
}

// Identity returns the indexer that maps a length-n index onto itself
func Identity(n int) *Indexer {
	ix := &Indexer{
		Positions: make([]int, n),
		Mask:      make([]bool, n),
	}
	for i := range ix.Positions {
		ix.Positions[i] = i
		ix.Mask[i] = true
	}
	return ix
}

// FromPositions builds an indexer from explicit positions; negative
// positions become sentinels
func FromPositions(positions []int) *Indexer {
	ix := &Indexer{
		Positions: make([]int, len(positions)),
		Mask:      make([]bool, len(positions)),
	}
	for i, p := range positions {
		if p < 0 {
			ix.Positions[i] = Sentinel
			continue
		}
		ix.Positions[i] = p
		ix.Mask[i] = true
	}
	return ix
}

// nearest binary-searches a sorted source for the pad or backfill neighbour
// of label. Labels not comparable with the source have no neighbour.
func nearest(source *index.Index, label index.Label, method Method) (int, bool) {
	n := source.Len()
	orderable := true
	// first position whose label is >= the target
	first := sort.Search(n, func(i int) bool {
		c, ok := index.Compare(source.At(i), label)
		if !ok {
			orderable = false
			return true
		}
		return c >= 0
	})
	if !orderable {
		return Sentinel, false
	}

	switch method {
	case Pad:
		if first < n {
			if c, _ := index.Compare(source.At(first), label); c == 0 {
				return first, true
			}
		}
		if first == 0 {
			return Sentinel, false
		}
		return first - 1, true
	case Backfill:
		if first == n {
			return Sentinel, false
		}
		return first, true
	}
	return Sentinel, false
}
