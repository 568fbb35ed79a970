package pool

import (
	"sync"
	"sync/atomic"
)

// StringInternPool deduplicates frequently repeated strings such as column
// names and categorical cell values read from documents
type StringInternPool struct {
	mu      sync.RWMutex
	strings map[string]string
	maxSize int
	size    int64
	hits    int64
	misses  int64
}

// NewStringInternPool creates an intern pool holding at most maxSize strings
func NewStringInternPool(maxSize int) *StringInternPool {
	return &StringInternPool{
		strings: make(map[string]string, 64),
		maxSize: maxSize,
	}
}

var globalStringInternPool = NewStringInternPool(10000)

// Intern returns the canonical copy of s
func (p *StringInternPool) Intern(s string) string {
	p.mu.RLock()
	if interned, ok := p.strings[s]; ok {
		p.mu.RUnlock()
		atomic.AddInt64(&p.hits, 1)
		return interned
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if interned, ok := p.strings[s]; ok {
		atomic.AddInt64(&p.hits, 1)
		return interned
	}

	atomic.AddInt64(&p.misses, 1)
	if atomic.LoadInt64(&p.size) >= int64(p.maxSize) {
		return s
	}
	p.strings[s] = s
	atomic.AddInt64(&p.size, 1)
	return s
}

// Stats returns intern pool statistics
func (p *StringInternPool) Stats() (size, hits, misses int64) {
	return atomic.LoadInt64(&p.size),
		atomic.LoadInt64(&p.hits),
		atomic.LoadInt64(&p.misses)
}

// Clear empties the pool
func (p *StringInternPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.strings = make(map[string]string, 64)
	atomic.StoreInt64(&p.size, 0)
	atomic.StoreInt64(&p.hits, 0)
	atomic.StoreInt64(&p.misses, 0)
}

// InternString interns a string using the global pool
func InternString(s string) string {
	return globalStringInternPool.Intern(s)
}

// GetInternStats returns global intern pool statistics
func GetInternStats() (size, hits, misses int64) {
	return globalStringInternPool.Stats()
}
