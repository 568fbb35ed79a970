// Package pool provides typed object pooling for tabula's hot paths.
//
// The aligner and the cumulative kernels need short-lived scratch slices
// sized to a table dimension. Rather than allocating one per call they
// borrow from the global slice pools here and return them when done.
//
// Example usage:
//
//	positions := pool.GetInts(n)
//	defer pool.PutInts(positions)
//
//	myPool := pool.New(
//	    func() *Scratch { return &Scratch{} },
//	    func(s *Scratch) { s.Reset() },
//	)
//	s := myPool.Get()
//	defer myPool.Put(s)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and an optional reset hook.
// The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
		misses    int64
	}
}

// New creates a typed pool. newFn is called when the pool is empty; reset,
// if non-nil, is called before an object is returned to the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		atomic.AddInt64(&p.stats.misses, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, allocating one if it is empty
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	before := atomic.LoadInt64(&p.stats.misses)
	obj := p.pool.Get().(T)
	if atomic.LoadInt64(&p.stats.misses) == before {
		atomic.AddInt64(&p.stats.hits, 1)
	}
	return obj
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns allocation count, objects checked out, and cache hits and
// misses. Under concurrent use hits and misses are approximate.
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits),
		atomic.LoadInt64(&p.stats.misses)
}

// defaultSliceCap is the capacity of freshly allocated scratch slices
const defaultSliceCap = 256

// Global scratch pools. Slices travel as pointers so that Put does not
// allocate.
var (
	// IntSlicePool holds position buffers used when building indexers
	IntSlicePool = New(
		func() *[]int {
			s := make([]int, 0, defaultSliceCap)
			return &s
		},
		func(s *[]int) { *s = (*s)[:0] },
	)

	// FloatSlicePool holds running-sum and gather buffers
	FloatSlicePool = New(
		func() *[]float64 {
			s := make([]float64, 0, defaultSliceCap)
			return &s
		},
		func(s *[]float64) { *s = (*s)[:0] },
	)

	// BoolSlicePool holds seen/validity masks
	BoolSlicePool = New(
		func() *[]bool {
			s := make([]bool, 0, defaultSliceCap)
			return &s
		},
		func(s *[]bool) { *s = (*s)[:0] },
	)
)

// GetInts returns a zeroed int slice of length n
func GetInts(n int) *[]int {
	s := IntSlicePool.Get()
	*s = grow(*s, n)
	return s
}

// PutInts returns an int slice to the global pool. Nil is ignored.
func PutInts(s *[]int) {
	if s != nil {
		IntSlicePool.Put(s)
	}
}

// GetFloats returns a zeroed float64 slice of length n
func GetFloats(n int) *[]float64 {
	s := FloatSlicePool.Get()
	*s = grow(*s, n)
	return s
}

// PutFloats returns a float64 slice to the global pool. Nil is ignored.
func PutFloats(s *[]float64) {
	if s != nil {
		FloatSlicePool.Put(s)
	}
}

// GetBools returns a zeroed bool slice of length n
func GetBools(n int) *[]bool {
	s := BoolSlicePool.Get()
	*s = grow(*s, n)
	return s
}

// PutBools returns a bool slice to the global pool. Nil is ignored.
func PutBools(s *[]bool) {
	if s != nil {
		BoolSlicePool.Put(s)
	}
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	var zero T
	for i := range s {
		s[i] = zero
	}
	return s
}
