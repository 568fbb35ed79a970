// Package index implements the ordered, unique label sets used for table rows
// and columns. An Index is immutable; every operation returns a new value, so
// indexes can be shared freely between tables.
package index

import (
	"sort"

	"github.com/ajitpratap0/tabula/pkg/errors"
	stringpool "github.com/ajitpratap0/tabula/pkg/strings"
)

// Index is an ordered sequence of unique labels with O(1) position lookup
type Index struct {
	labels    []Label
	positions map[Label]int
}

var empty = &Index{positions: map[Label]int{}}

// New builds an Index from labels. Labels are normalized and must be unique.
func New(labels []Label) (*Index, error) {
	normalized := make([]Label, len(labels))
	for i, l := range labels {
		normalized[i] = Normalize(l)
	}
	return build(normalized)
}

// MustNew is like New but panics on duplicate labels. It is intended for
// literals in tests and examples.
func MustNew(labels ...Label) *Index {
	idx, err := New(labels)
	if err != nil {
		panic(err)
	}
	return idx
}

// Empty returns the zero-length Index
func Empty() *Index {
	return empty
}

// Range returns the default index 0..n-1 with int64 labels
func Range(n int) *Index {
	labels := make([]Label, n)
	positions := make(map[Label]int, n)
	for i := 0; i < n; i++ {
		labels[i] = int64(i)
		positions[int64(i)] = i
	}
	return &Index{labels: labels, positions: positions}
}

// build takes ownership of already-normalized labels. Integral floats and
// the equal integers count as duplicates.
func build(labels []Label) (*Index, error) {
	positions := make(map[Label]int, len(labels))
	for i, l := range labels {
		if !hashable(l) {
			return nil, errors.Newf(errors.ErrorTypeValidation, "label of type %T cannot be hashed", l).
				WithDetail("position", i)
		}
		_, dup := positions[l]
		if twin, ok := numericTwin(l); ok && !dup {
			_, dup = positions[twin]
		}
		if dup {
			return nil, errors.New(errors.ErrorTypeDuplicateLabel, "index contains duplicate label").
				WithDetail("label", l).
				WithDetail("position", i)
		}
		positions[l] = i
	}
	return &Index{labels: labels, positions: positions}, nil
}

// mustBuild is used by set operations whose results are unique by construction
func mustBuild(labels []Label) *Index {
	positions := make(map[Label]int, len(labels))
	for i, l := range labels {
		positions[l] = i
	}
	return &Index{labels: labels, positions: positions}
}

// Len returns the number of labels
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.labels)
}

// At returns the label at position i
func (x *Index) At(i int) Label {
	return x.labels[i]
}

// Labels returns a copy of the labels in order
func (x *Index) Labels() []Label {
	out := make([]Label, x.Len())
	if x != nil {
		copy(out, x.labels)
	}
	return out
}

// PositionOf returns the position of label. A missing label is reported
// through the boolean, never as an error. An integral float finds the equal
// integer label and the reverse.
func (x *Index) PositionOf(label Label) (int, bool) {
	if x == nil {
		return -1, false
	}
	label = Normalize(label)
	if !hashable(label) {
		return -1, false
	}
	if pos, ok := x.positions[label]; ok {
		return pos, true
	}
	if twin, ok := numericTwin(label); ok {
		if pos, ok := x.positions[twin]; ok {
			return pos, true
		}
	}
	return -1, false
}

// Contains reports whether label is present
func (x *Index) Contains(label Label) bool {
	_, ok := x.PositionOf(label)
	return ok
}

// Equals reports whether both indexes hold the same labels in the same order
func (x *Index) Equals(other *Index) bool {
	if x == other {
		return true
	}
	if x.Len() != other.Len() {
		return false
	}
	for i := 0; i < x.Len(); i++ {
		if x.labels[i] != other.labels[i] {
			return false
		}
	}
	return true
}

// IsOrderable reports whether all labels are mutually comparable
func (x *Index) IsOrderable() bool {
	return orderable(x.labels)
}

// IsMonotonic reports whether the labels are sorted ascending. Unorderable
// indexes are never monotonic.
func (x *Index) IsMonotonic() bool {
	for i := 1; i < x.Len(); i++ {
		c, ok := Compare(x.labels[i-1], x.labels[i])
		if !ok || c > 0 {
			return false
		}
	}
	return x.Len() <= 1 || x.IsOrderable()
}

// Union returns the labels present in either index, sorted when orderable
func (x *Index) Union(other *Index) *Index {
	switch {
	case x.Equals(other), other.Len() == 0:
		return x.sorted()
	case x.Len() == 0:
		return other.sorted()
	}

	labels := make([]Label, 0, x.Len()+other.Len())
	labels = append(labels, x.labels...)
	for _, l := range other.labels {
		if !x.Contains(l) {
			labels = append(labels, l)
		}
	}
	return mustBuild(sortIfOrderable(labels))
}

// Intersection returns the labels present in both indexes, sorted when
// orderable and in this index's order otherwise
func (x *Index) Intersection(other *Index) *Index {
	if x.Equals(other) {
		return x.sorted()
	}
	return mustBuild(sortIfOrderable(x.retain(other, true)))
}

// Difference returns the labels of this index absent from other, sorted when
// orderable and in this index's order otherwise
func (x *Index) Difference(other *Index) *Index {
	return mustBuild(sortIfOrderable(x.retain(other, false)))
}

// Retain returns the labels of this index that are present in other, keeping
// this index's order
func (x *Index) Retain(other *Index) *Index {
	return mustBuild(x.retain(other, true))
}

// Exclude returns the labels of this index that are absent from other,
// keeping this index's order
func (x *Index) Exclude(other *Index) *Index {
	return mustBuild(x.retain(other, false))
}

func (x *Index) retain(other *Index, present bool) []Label {
	labels := make([]Label, 0, x.Len())
	for i := 0; i < x.Len(); i++ {
		l := x.labels[i]
		if other.Contains(l) == present {
			labels = append(labels, l)
		}
	}
	return labels
}

// Append concatenates two indexes. The result must remain unique.
func (x *Index) Append(other *Index) (*Index, error) {
	labels := make([]Label, 0, x.Len()+other.Len())
	if x != nil {
		labels = append(labels, x.labels...)
	}
	if other != nil {
		labels = append(labels, other.labels...)
	}
	return build(labels)
}

// Insert returns a copy with label inserted at position loc
func (x *Index) Insert(loc int, label Label) (*Index, error) {
	if loc < 0 || loc > x.Len() {
		return nil, errors.Newf(errors.ErrorTypeValidation, "insert position %d out of range [0, %d]", loc, x.Len())
	}
	labels := make([]Label, 0, x.Len()+1)
	labels = append(labels, x.labels[:loc]...)
	labels = append(labels, Normalize(label))
	labels = append(labels, x.labels[loc:]...)
	return build(labels)
}

// Delete returns a copy without the label at position loc
func (x *Index) Delete(loc int) *Index {
	labels := make([]Label, 0, x.Len()-1)
	labels = append(labels, x.labels[:loc]...)
	labels = append(labels, x.labels[loc+1:]...)
	return mustBuild(labels)
}

// Take returns the labels at the given positions. Positions must be distinct
// and in range.
func (x *Index) Take(positions []int) (*Index, error) {
	labels := make([]Label, len(positions))
	for i, p := range positions {
		if p < 0 || p >= x.Len() {
			return nil, errors.Newf(errors.ErrorTypeValidation, "position %d out of range [0, %d)", p, x.Len())
		}
		labels[i] = x.labels[p]
	}
	return build(labels)
}

// Slice returns the labels in [start, end)
func (x *Index) Slice(start, end int) *Index {
	start, end = clamp(start, x.Len()), clamp(end, x.Len())
	if end < start {
		end = start
	}
	labels := make([]Label, end-start)
	copy(labels, x.labels[start:end])
	return mustBuild(labels)
}

// Map applies fn to every label. The mapped labels must remain unique.
func (x *Index) Map(fn func(Label) (Label, error)) (*Index, error) {
	labels := make([]Label, x.Len())
	for i, l := range x.labels {
		mapped, err := fn(l)
		if err != nil {
			return nil, err
		}
		labels[i] = Normalize(mapped)
	}
	return build(labels)
}

// String renders the index as [a, b, c]
func (x *Index) String() string {
	parts := make([]string, x.Len())
	for i := 0; i < x.Len(); i++ {
		parts[i] = Format(x.labels[i])
	}
	return "[" + stringpool.JoinPooled(parts, ", ") + "]"
}

// sorted returns x when it is already ascending or cannot be ordered
func (x *Index) sorted() *Index {
	if x.Len() <= 1 || x.IsMonotonic() || !x.IsOrderable() {
		return x
	}
	return mustBuild(sortIfOrderable(x.Labels()))
}

func sortIfOrderable(labels []Label) []Label {
	if !orderable(labels) {
		return labels
	}
	sort.SliceStable(labels, func(i, j int) bool {
		c, _ := Compare(labels[i], labels[j])
		return c < 0
	})
	return labels
}

// SortLabels returns labels sorted ascending when they are orderable and in
// their original order otherwise
func SortLabels(labels []Label) []Label {
	out := make([]Label, len(labels))
	for i, l := range labels {
		out[i] = Normalize(l)
	}
	return sortIfOrderable(out)
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}
