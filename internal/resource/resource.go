// internal/resource/resource.go
package resource

import "sync"

// Resource holds the fetch state for one remote collection or record:
// the last value, whether a fetch is in flight, and the last error.
// Concurrent fetches are not deduplicated; callers gate on Loading.
type Resource[T any] struct {
	mu      sync.RWMutex
	value   T
	hasData bool
	loading bool
	err     error
}

// New creates an empty Resource.
func New[T any]() *Resource[T] {
	return &Resource[T]{}
}

// Begin marks a fetch as in flight.
func (r *Resource[T]) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = true
}

// Resolve stores a successful result and clears loading and error state.
func (r *Resource[T]) Resolve(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.hasData = true
	r.loading = false
	r.err = nil
}

// Fail records a fetch failure. The previous value is kept so the display
// can keep rendering stale data.
func (r *Resource[T]) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	r.err = err
}

// Value returns the last stored value and whether one has ever been stored.
func (r *Resource[T]) Value() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.hasData
}

// Loading reports whether a fetch is in flight.
func (r *Resource[T]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Err returns the last fetch error, nil after a successful fetch.
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Reset clears the resource back to its initial state.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.hasData = false
	r.loading = false
	r.err = nil
}
