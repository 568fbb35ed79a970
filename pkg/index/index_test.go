package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Label{"a", "b", "a"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))

	// int and int64 normalize to the same key
	_, err = New([]Label{1, int64(1)})
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))
}

func TestPositionOf(t *testing.T) {
	idx := MustNew("x", "y", "z")

	pos, ok := idx.PositionOf("y")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = idx.PositionOf("w")
	assert.False(t, ok)

	r := Range(3)
	pos, ok = r.PositionOf(int32(2))
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestSetOperations(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Index
		union    []Label
		intersec []Label
		diff     []Label
	}{
		{
			name:     "sorted integers",
			a:        MustNew(0, 1, 2),
			b:        MustNew(1, 2, 3),
			union:    []Label{int64(0), int64(1), int64(2), int64(3)},
			intersec: []Label{int64(1), int64(2)},
			diff:     []Label{int64(0)},
		},
		{
			name:     "strings sorted",
			a:        MustNew("c", "a"),
			b:        MustNew("b", "a"),
			union:    []Label{"a", "b", "c"},
			intersec: []Label{"a"},
			diff:     []Label{"c"},
		},
		{
			name:     "mixed numeric kinds",
			a:        MustNew(2, 0.5),
			b:        MustNew(1),
			union:    []Label{0.5, int64(1), int64(2)},
			intersec: []Label{},
			diff:     []Label{0.5, int64(2)},
		},
		{
			name:     "unorderable keeps insertion order",
			a:        MustNew("b", 1),
			b:        MustNew(2, "a"),
			union:    []Label{"b", int64(1), int64(2), "a"},
			intersec: []Label{},
			diff:     []Label{"b", int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.union, tt.a.Union(tt.b).Labels())
			assert.Equal(t, tt.intersec, tt.a.Intersection(tt.b).Labels())
			assert.Equal(t, tt.diff, tt.a.Difference(tt.b).Labels())
		})
	}
}

func TestUnionFastPaths(t *testing.T) {
	a := MustNew("a", "b")
	assert.Same(t, a, a.Union(MustNew("a", "b")))
	assert.Same(t, a, a.Union(Empty()))
	assert.Same(t, a, Empty().Union(a))
	assert.Same(t, a, a.Intersection(MustNew("a", "b")))

	unorderable := MustNew("b", 1)
	assert.Same(t, unorderable, unorderable.Union(Empty()))
}

func TestUnionWithEmptyOrEqualSorts(t *testing.T) {
	a := MustNew(3, 1)
	want := []Label{int64(1), int64(3)}

	assert.Equal(t, want, a.Union(Empty()).Labels())
	assert.Equal(t, want, Empty().Union(a).Labels())
	assert.Equal(t, want, a.Union(MustNew(3, 1)).Labels())
	assert.Equal(t, want, a.Intersection(MustNew(3, 1)).Labels())
	assert.Equal(t, []Label{int64(3), int64(1)}, a.Labels())
}

func TestIntegralFloatMatchesInteger(t *testing.T) {
	ints := MustNew(1, 2)
	pos, ok := ints.PositionOf(2.0)
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
	_, ok = ints.PositionOf(2.5)
	assert.False(t, ok)

	floats := MustNew(1.0, 2.5)
	pos, ok = floats.PositionOf(1)
	assert.True(t, ok)
	assert.Equal(t, 0, pos)

	_, err := New([]Label{int64(1), 1.0})
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))

	assert.Equal(t, []Label{int64(1), int64(2), 3.0}, ints.Union(MustNew(2.0, 3.0)).Labels())
	assert.Equal(t, []Label{int64(2)}, ints.Intersection(MustNew(2.0)).Labels())
}

func TestUnhashableLabelsRejected(t *testing.T) {
	_, err := New([]Label{"a", []int{1}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = New([]Label{map[string]int{"a": 1}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = MustNew("a").Insert(0, []string{"b"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, ok := MustNew("a").PositionOf([]int{1})
	assert.False(t, ok)

	_, err = New([]Label{[2]int{1, 2}, struct{ A string }{"x"}})
	assert.NoError(t, err)
}

func TestUnionIsSupersetAndSorted(t *testing.T) {
	a := MustNew(5, 3, 9)
	b := MustNew(4, 3, 1)
	u := a.Union(b)

	for _, l := range a.Labels() {
		assert.True(t, u.Contains(l))
	}
	for _, l := range b.Labels() {
		assert.True(t, u.Contains(l))
	}
	assert.True(t, u.IsMonotonic())
}

func TestRetainExcludeKeepOrder(t *testing.T) {
	a := MustNew("z", "a", "m")
	b := MustNew("m", "z")
	assert.Equal(t, []Label{"z", "m"}, a.Retain(b).Labels())
	assert.Equal(t, []Label{"a"}, a.Exclude(b).Labels())
}

func TestIsMonotonic(t *testing.T) {
	assert.True(t, MustNew(1, 2, 3).IsMonotonic())
	assert.False(t, MustNew(3, 1).IsMonotonic())
	assert.False(t, MustNew(1, "a").IsMonotonic())
	assert.True(t, Empty().IsMonotonic())
}

func TestInsertDeleteTake(t *testing.T) {
	idx := MustNew("a", "c")

	ins, err := idx.Insert(1, "b")
	require.NoError(t, err)
	assert.Equal(t, []Label{"a", "b", "c"}, ins.Labels())

	_, err = idx.Insert(1, "a")
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateLabel))

	assert.Equal(t, []Label{"a", "c"}, ins.Delete(1).Labels())

	taken, err := ins.Take([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []Label{"c", "a"}, taken.Labels())

	_, err = ins.Take([]int{5})
	assert.Error(t, err)

	assert.Equal(t, []Label{"b", "c"}, ins.Slice(1, 10).Labels())
	assert.Equal(t, []Label{"c"}, ins.Slice(-1, 3).Labels())
}

func TestTimeLabelsNormalize(t *testing.T) {
	now := time.Now()
	idx := MustNew(now)
	assert.True(t, idx.Contains(now.Round(0)))
	assert.True(t, idx.Contains(now))
}

func TestShift(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	dates := MustNew(day(1), day(2))
	shifted, err := dates.Shift(2, Duration(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []Label{day(3), day(4)}, shifted.Labels())

	monthly, err := dates.Shift(1, Calendar{Months: 1})
	require.NoError(t, err)
	assert.Equal(t, time.February, monthly.At(0).(time.Time).Month())

	nums, err := MustNew(0, 10).Shift(-1, Step(5))
	require.NoError(t, err)
	assert.Equal(t, []Label{int64(-5), int64(5)}, nums.Labels())

	_, err = MustNew("a").Shift(1, Step(1))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = dates.Shift(1, nil)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "[a, 1, 2024-03-01]", MustNew("a", 1, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).String())
}
