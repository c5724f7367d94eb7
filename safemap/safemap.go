// Package safemap provides a type-safe concurrent map built on sync.Map.
// The server uses it for the live connection table, which is written by
// the accept loop and read by shutdown and the per-connection goroutines.
package safemap

import "sync"

// SafeMap is a concurrent map safe for use by multiple goroutines. Keys
// must be comparable; values may be any type. A SafeMap must not be
// copied after first use.
type SafeMap[K comparable, V any] struct {
	m sync.Map
}

// New returns an empty SafeMap ready for use.
//
// Returns:
//   - A pointer to a new SafeMap[K, V]
func New[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{}
}

// Store sets the value for key k, overwriting any existing value.
//
// Parameters:
//   - k: The key to store
//   - v: The value to associate with k
func (m *SafeMap[K, V]) Store(k K, v V) {
	m.m.Store(k, v)
}

// Load returns the value for key k and whether the key was present.
//
// Parameters:
//   - k: The key to look up
//
// Returns:
//   - The value associated with k, or the zero value of V if not found
//   - true if the key was present, false otherwise
func (m *SafeMap[K, V]) Load(k K) (V, bool) {
	v, found := m.m.Load(k)
	if !found {
		var zero V
		return zero, false
	}

	return v.(V), true
}

// Delete removes the entry for key k. Deleting a missing key is a no-op.
//
// Parameters:
//   - k: The key to delete
func (m *SafeMap[K, V]) Delete(k K) {
	m.m.Delete(k)
}

// Range calls f sequentially for each entry. If f returns false, Range
// stops the iteration.
//
// Parameters:
//   - f: Function called for each entry; return false to stop iteration
func (m *SafeMap[K, V]) Range(f func(k K, v V) bool) {
	m.m.Range(func(k, v interface{}) bool {
		return f(k.(K), v.(V))
	})
}

// Len returns the number of entries. It iterates the whole map; use
// sparingly on hot paths.
//
// Returns:
//   - The number of key-value pairs in the map
func (m *SafeMap[K, V]) Len() int {
	n := 0
	m.Range(func(K, V) bool {
		n++
		return true
	})

	return n
}
