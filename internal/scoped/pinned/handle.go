package pinned

import (
	"sync/atomic"

	"github.com/kolkov/scopedref/internal/scoped/abort"
	"github.com/kolkov/scopedref/internal/scoped/stats"
)

// Handle is a counted view of a pinned guard's value. It holds the value
// pointer and a pointer to the guard's counter, nothing else. Assigning a
// Handle moves it; use Clone for an additional counted handle.
type Handle[T any] struct {
	value *T
	count *atomic.Int64
}

// Value returns the guarded value. The pointee must be treated as read-only.
func (h Handle[T]) Value() *T {
	if h.value == nil {
		panic(abort.ErrReleased)
	}
	return h.value
}

// Clone returns another handle counted against the same guard.
func (h Handle[T]) Clone() Handle[T] {
	if h.value == nil {
		panic(abort.ErrReleased)
	}
	if h.count != nil {
		h.count.Add(1)
		stats.HandleCreated()
	}
	return Handle[T]{value: h.value, count: h.count}
}

// Release gives the handle up and subtracts one from the guard's counter.
// Releasing the same variable twice is a no-op.
func (h *Handle[T]) Release() {
	if h.value == nil {
		return
	}
	count := h.count
	h.value, h.count = nil, nil
	if count == nil {
		return // unchecked build
	}
	stats.HandleReleased()
	if n := count.Add(-1); n < 0 {
		stats.Violation()
		abort.Fatal(&abort.Violation{Kind: abort.KindOverRelease, Backend: Backend, Live: n})
	}
}
