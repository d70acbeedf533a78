package pinned

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/scopedref/internal/scoped/abort"
	"github.com/kolkov/scopedref/internal/scoped/check"
	"github.com/kolkov/scopedref/internal/scoped/stats"
)

// Backend names this implementation in violation reports.
const Backend = "pinned"

// noCopy may be embedded into structs which must not be copied
// after the first use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Guard owns the scope-bound value pointer and a live-handle counter.
//
// A Guard must not be copied after its first Lift.
type Guard[T any] struct {
	noCopy noCopy

	value  *T
	count  atomic.Int64
	home   pinState
	closed atomic.Bool
}

// New returns an unpinned guard over value. Assign it to its final location
// before the first Lift and Close it before value goes out of use.
func New[T any](value *T) Guard[T] {
	if check.Enabled {
		stats.GuardOpened()
	}
	return Guard[T]{value: value}
}

// Init prepares g in place, for guards embedded in other structs.
// Reinitializing a guard that still has live handles is a violation.
func (g *Guard[T]) Init(value *T) {
	if check.Enabled {
		if g.value != nil && !g.closed.Load() {
			if n := g.count.Load(); n != 0 {
				g.fatal(abort.KindOutstanding, n)
			}
			stats.GuardClosed()
		}
		stats.GuardOpened()
	}
	*g = Guard[T]{value: value}
}

// Lift returns a Handle that points at g's counter. It never blocks.
// Builds with the scoped_pincheck tag also pin g at its current address.
func (g *Guard[T]) Lift() Handle[T] {
	if g.value == nil {
		panic(abort.ErrZeroGuard)
	}
	if !check.Enabled {
		return Handle[T]{value: g.value}
	}
	if !g.home.pin(&g.count) {
		g.fatal(abort.KindMoved, g.count.Load())
	}
	// Count first so a racing Close either sees the handle or makes us back
	// out.
	g.count.Add(1)
	if g.closed.Load() {
		g.count.Add(-1)
		panic(abort.ErrClosed)
	}
	stats.HandleCreated()
	return Handle[T]{value: g.value, count: &g.count}
}

// Value returns the guarded value. The pointee must be treated as read-only.
func (g *Guard[T]) Value() *T {
	if g.value == nil {
		panic(abort.ErrZeroGuard)
	}
	if check.Enabled && g.closed.Load() {
		panic(abort.ErrClosed)
	}
	return g.value
}

// Live returns the number of outstanding handles. Always zero in unchecked
// builds.
func (g *Guard[T]) Live() int64 {
	return g.count.Load()
}

// Go lifts a handle and runs fn with it on eg, releasing the handle when fn
// returns.
func (g *Guard[T]) Go(eg *errgroup.Group, fn func(Handle[T]) error) {
	h := g.Lift()
	eg.Go(func() error {
		defer h.Release()
		return fn(h)
	})
}

// Close ends the guard's scope. A nonzero live count terminates the process
// (see package abort). Close is idempotent.
func (g *Guard[T]) Close() {
	if !check.Enabled || g.value == nil {
		return
	}
	if !g.closed.CompareAndSwap(false, true) {
		return
	}
	stats.GuardClosed()

	if !g.home.at(&g.count) {
		g.fatal(abort.KindMoved, g.count.Load())
		return
	}
	switch n := g.count.Load(); {
	case n > 0:
		g.fatal(abort.KindOutstanding, n)
	case n < 0:
		g.fatal(abort.KindOverRelease, n)
	}
}

func (g *Guard[T]) fatal(kind abort.Kind, live int64) {
	stats.Violation()
	abort.Fatal(&abort.Violation{Kind: kind, Backend: Backend, Live: live})
}
