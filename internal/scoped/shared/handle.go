package shared

import (
	"github.com/kolkov/scopedref/internal/scoped/abort"
	"github.com/kolkov/scopedref/internal/scoped/check"
	"github.com/kolkov/scopedref/internal/scoped/stats"
)

// Handle is a counted view of a guarded value that may be sent to other
// goroutines. Assigning a Handle moves it: keep using only the new copy.
// Use Clone for an additional, separately counted handle.
type Handle[T any] struct {
	c  *cell[T]
	id uint64
}

// Value returns the guarded value. The pointee must be treated as read-only.
func (h Handle[T]) Value() *T {
	if h.c == nil {
		panic(abort.ErrReleased)
	}
	return h.c.value
}

// Clone returns another handle to the same value and adds one to the live
// count.
func (h Handle[T]) Clone() Handle[T] {
	if h.c == nil {
		panic(abort.ErrReleased)
	}
	if !check.Enabled {
		return Handle[T]{c: h.c}
	}
	h.c.refs.Add(1)
	return h.c.handle()
}

// Release gives the handle up and subtracts one from the live count.
// Releasing the same variable twice is a no-op.
func (h *Handle[T]) Release() {
	c := h.c
	if c == nil {
		return
	}
	h.c = nil
	if !check.Enabled {
		return
	}

	if h.id != 0 {
		c.origins.Delete(h.id)
	}
	stats.HandleReleased()

	// While the guard is open its own hold is part of refs. A negative
	// live count means a copied handle was released twice.
	live := c.refs.Add(-1)
	if !c.closed.Load() {
		live--
	}
	if live < 0 {
		stats.Violation()
		abort.Fatal(&abort.Violation{
			Kind:    abort.KindOverRelease,
			Backend: Backend,
			Live:    live,
		})
	}
}
