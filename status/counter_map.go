package status

import (
	"sort"
	"sync"
	"sync/atomic"
)

// CounterMap is a thread-safe string-keyed counter registry
// Registration uses the mutex; increments on a cached pointer are lock-free
type CounterMap struct {
	mu    sync.RWMutex
	items map[string]*atomic.Int64
}

// NewCounterMap creates an initialized CounterMap
func NewCounterMap() *CounterMap {
	return &CounterMap{
		items: make(map[string]*atomic.Int64),
	}
}

// Get returns the counter for key, creating it if absent
// First call for a key allocates; subsequent calls return the cached pointer
func (m *CounterMap) Get(key string) *atomic.Int64 {
	m.mu.RLock()
	if ptr, ok := m.items[key]; ok {
		m.mu.RUnlock()
		return ptr
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok := m.items[key]; ok {
		return ptr
	}

	ptr := new(atomic.Int64)
	m.items[key] = ptr
	return ptr
}

// Inc adds one to the counter for key
func (m *CounterMap) Inc(key string) {
	m.Get(key).Add(1)
}

// Range iterates over all counters in sorted key order
func (m *CounterMap) Range(fn func(key string, count int64)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.items) == 0 {
		return
	}

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fn(k, m.items[k].Load())
	}
}

// Count returns the number of registered counters
func (m *CounterMap) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
