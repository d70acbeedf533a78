// Package stats keeps process-wide counters of guards and handles.
//
// Counting is off until Enable is called, so programs that never export
// metrics pay one atomic load per operation instead of contending on shared
// cache lines. Counters observed before Enable are not backfilled: a handle
// lifted earlier and released later can drive HandlesLive below zero, which
// is why Snapshot clamps the gauges at zero.
package stats

import "sync/atomic"

var (
	enabled atomic.Bool

	guardsOpen  atomic.Int64
	handlesLive atomic.Int64
	lifts       atomic.Uint64
	violations  atomic.Uint64
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	GuardsOpen  int64
	HandlesLive int64
	Lifts       uint64
	Violations  uint64
}

// Enable turns counting on. It is safe to call more than once.
func Enable() { enabled.Store(true) }

// Enabled reports whether counting is on.
func Enabled() bool { return enabled.Load() }

// GuardOpened records a new guard.
func GuardOpened() {
	if enabled.Load() {
		guardsOpen.Add(1)
	}
}

// GuardClosed records a closed guard.
func GuardClosed() {
	if enabled.Load() {
		guardsOpen.Add(-1)
	}
}

// HandleCreated records a Lift or Clone.
func HandleCreated() {
	if enabled.Load() {
		lifts.Add(1)
		handlesLive.Add(1)
	}
}

// HandleReleased records a Release.
func HandleReleased() {
	if enabled.Load() {
		handlesLive.Add(-1)
	}
}

// Violation records a detected violation. Always counted: violations are
// rare and usually the last thing a process does.
func Violation() {
	violations.Add(1)
}

// Read returns the current counters.
func Read() Snapshot {
	return Snapshot{
		GuardsOpen:  max(guardsOpen.Load(), 0),
		HandlesLive: max(handlesLive.Load(), 0),
		Lifts:       lifts.Load(),
		Violations:  violations.Load(),
	}
}

// Reset zeroes the counters and disables counting. Tests only.
func Reset() {
	enabled.Store(false)
	guardsOpen.Store(0)
	handlesLive.Store(0)
	lifts.Store(0)
	violations.Store(0)
}
