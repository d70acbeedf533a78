package shared

import (
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/scopedref/internal/scoped/abort"
	"github.com/kolkov/scopedref/internal/scoped/check"
	"github.com/kolkov/scopedref/internal/scoped/stackdepot"
	"github.com/kolkov/scopedref/internal/scoped/stats"
)

const (
	// Backend names this implementation in violation reports.
	Backend = "shared"

	// TrackEnv enables origin tracking when set to "1" at startup.
	TrackEnv = "SCOPEDTRACK"

	// maxOrigins bounds the origins attached to one report.
	maxOrigins = 16
)

var tracking = os.Getenv(TrackEnv) == "1"

// Tracking reports whether handle origins are being recorded.
func Tracking() bool { return tracking }

// cell is the single allocation shared by a guard and its handles.
type cell[T any] struct {
	value  *T
	refs   atomic.Int64
	closed atomic.Bool

	// Origin tracking only.
	nextID  atomic.Uint64
	origins sync.Map // handle id -> stack depot hash
}

// Guard owns the scope-bound value pointer and enforces that no Handle
// outlives it. The zero Guard is not usable; create one with New.
type Guard[T any] struct {
	c *cell[T]
}

// New creates a guard over value. The caller must Close the guard before
// value goes out of use, normally with defer. A guard that is never closed
// is never checked.
func New[T any](value *T) Guard[T] {
	c := &cell[T]{value: value}
	if check.Enabled {
		c.refs.Store(1)
		stats.GuardOpened()
	}
	return Guard[T]{c: c}
}

func (g Guard[T]) cell() *cell[T] {
	if g.c == nil {
		panic(abort.ErrZeroGuard)
	}
	return g.c
}

// Lift returns a new Handle to the guarded value and adds one to the live
// count. It never blocks.
func (g Guard[T]) Lift() Handle[T] {
	c := g.cell()
	if !check.Enabled {
		return Handle[T]{c: c}
	}
	// Count first so a racing Close either sees the handle or makes us back
	// out.
	c.refs.Add(1)
	if c.closed.Load() {
		c.refs.Add(-1)
		panic(abort.ErrClosed)
	}
	return c.handle()
}

// Value returns the guarded value. The pointee must be treated as read-only.
func (g Guard[T]) Value() *T {
	c := g.cell()
	if check.Enabled && c.closed.Load() {
		panic(abort.ErrClosed)
	}
	return c.value
}

// Live returns the number of outstanding handles. Always zero in unchecked
// builds.
func (g Guard[T]) Live() int64 {
	if !check.Enabled {
		return 0
	}
	c := g.cell()
	n := c.refs.Load()
	if !c.closed.Load() {
		n-- // the guard's own hold
	}
	return n
}

// Go lifts a handle and runs fn with it on eg, releasing the handle when fn
// returns. The handle is lifted before Go returns, so closing the guard
// before eg.Wait is reported as a violation.
func (g Guard[T]) Go(eg *errgroup.Group, fn func(Handle[T]) error) {
	h := g.Lift()
	eg.Go(func() error {
		defer h.Release()
		return fn(h)
	})
}

// Close ends the guard's scope. If any handle is still live the process is
// terminated (see package abort). Close is idempotent across all copies of
// the guard.
func (g Guard[T]) Close() {
	if !check.Enabled {
		return
	}
	c := g.cell()
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	stats.GuardClosed()

	live := c.refs.Add(-1)
	if live == 0 {
		return
	}
	kind := abort.KindOutstanding
	if live < 0 {
		kind = abort.KindOverRelease
	}
	stats.Violation()
	abort.Fatal(&abort.Violation{
		Kind:    kind,
		Backend: Backend,
		Live:    live,
		Origins: c.originList(),
	})
}

func (c *cell[T]) handle() Handle[T] {
	stats.HandleCreated()
	h := Handle[T]{c: c}
	if tracking {
		h.id = c.nextID.Add(1)
		// Skip handle and Lift/Clone.
		c.origins.Store(h.id, stackdepot.CaptureStack(2))
	}
	return h
}

func (c *cell[T]) originList() []uint64 {
	var out []uint64
	c.origins.Range(func(_, v any) bool {
		out = append(out, v.(uint64))
		return len(out) < maxOrigins
	})
	return out
}
