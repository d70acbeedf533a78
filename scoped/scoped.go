package scoped

import (
	"github.com/kolkov/scopedref/internal/scoped/abort"
	"github.com/kolkov/scopedref/internal/scoped/check"
	"github.com/kolkov/scopedref/internal/scoped/pinned"
	"github.com/kolkov/scopedref/internal/scoped/shared"
)

// Guard is the movable guard. See New.
type Guard[T any] = shared.Guard[T]

// Handle is a counted reference derived from a Guard.
type Handle[T any] = shared.Handle[T]

// PinnedGuard is the allocation-free guard that must not be copied after its
// first Lift. See NewPinned.
type PinnedGuard[T any] = pinned.Guard[T]

// PinnedHandle is a counted reference derived from a PinnedGuard.
type PinnedHandle[T any] = pinned.Handle[T]

// Violation describes a detected safety violation. It is the panic value in
// recoverable (test) mode.
type Violation = abort.Violation

// Enabled reports whether live-count bookkeeping is compiled in.
const Enabled = check.Enabled

var (
	// ErrSafetyViolation matches every Violation.
	ErrSafetyViolation = abort.ErrSafetyViolation
	// ErrHandlesOutstanding matches a guard closed with live handles.
	ErrHandlesOutstanding = abort.ErrHandlesOutstanding
	// ErrGuardMoved matches a pinned guard used from a new address.
	ErrGuardMoved = abort.ErrGuardMoved
	// ErrOverRelease matches a handle released more often than created.
	ErrOverRelease = abort.ErrOverRelease

	// ErrClosed is the panic value for using a closed guard.
	ErrClosed = abort.ErrClosed
	// ErrReleased is the panic value for using a released handle.
	ErrReleased = abort.ErrReleased
	// ErrZeroGuard is the panic value for using an uninitialized guard.
	ErrZeroGuard = abort.ErrZeroGuard
)

// New creates a movable guard over value.
//
// The caller must Close the guard before value is recycled, normally with
// defer right after New. A guard that is never closed is never checked;
// prefer With when the guard's scope is a single call.
func New[T any](value *T) Guard[T] {
	return shared.New(value)
}

// NewPinned creates an unpinned guard over value. Store the result in its
// final variable, take handles only through that variable and Close it
// before value is recycled. Prefer WithPinned, or PinnedGuard.Init for a
// guard embedded in another struct.
func NewPinned[T any](value *T) PinnedGuard[T] {
	return pinned.New(value)
}

// With runs fn with a movable guard over value and closes the guard when fn
// returns, including when fn panics.
func With[T any](value *T, fn func(Guard[T])) {
	g := shared.New(value)
	defer g.Close()
	fn(g)
}

// WithPinned runs fn with a pinned guard over value and closes it when fn
// returns. fn only ever sees a pointer, so the guard cannot be copied out
// from under its handles.
//
// Passing the guard to fn moves it to the heap. On allocation-sensitive
// paths declare the guard as a local variable, or embed it and use Init.
func WithPinned[T any](value *T, fn func(*PinnedGuard[T])) {
	var g pinned.Guard[T]
	g.Init(value)
	defer g.Close()
	fn(&g)
}
