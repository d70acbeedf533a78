package abort

import (
	"errors"
	"fmt"
)

// Kind classifies a safety violation.
type Kind int

const (
	// KindOutstanding: a guard was closed while handles were still live.
	KindOutstanding Kind = iota
	// KindMoved: a pinned guard was used from a new address after its first Lift.
	KindMoved
	// KindOverRelease: more releases than lifts reached a counter.
	KindOverRelease
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindOutstanding:
		return "outstanding-handles"
	case KindMoved:
		return "guard-moved"
	case KindOverRelease:
		return "over-release"
	default:
		return "unknown"
	}
}

var (
	// ErrSafetyViolation matches every *Violation.
	ErrSafetyViolation = errors.New("scoped: safety violation")

	// ErrHandlesOutstanding matches violations of KindOutstanding.
	ErrHandlesOutstanding = errors.New("scoped: guard closed while lifted handles still exist")

	// ErrGuardMoved matches violations of KindMoved.
	ErrGuardMoved = errors.New("scoped: pinned guard moved after lift")

	// ErrOverRelease matches violations of KindOverRelease.
	ErrOverRelease = errors.New("scoped: handle released more times than it was lifted")
)

// Violation describes a detected safety violation.
type Violation struct {
	// Kind is the violated invariant.
	Kind Kind

	// Backend names the guard implementation ("shared" or "pinned").
	Backend string

	// Live is the live-handle count observed at detection time.
	Live int64

	// Goroutine is the ID of the goroutine that detected the violation.
	// Filled in by Fatal.
	Goroutine int64

	// Stack holds program counters of the detecting goroutine.
	// Filled in by Fatal unless the traceback level is none.
	Stack []uintptr

	// Origins are stack depot hashes of the call sites that created the
	// outstanding handles. Only populated when origin tracking is on.
	Origins []uint64

	traceback Traceback
	dump      []byte
}

func (v *Violation) sentinel() error {
	switch v.Kind {
	case KindOutstanding:
		return ErrHandlesOutstanding
	case KindMoved:
		return ErrGuardMoved
	case KindOverRelease:
		return ErrOverRelease
	default:
		return nil
	}
}

// Error implements error.
func (v *Violation) Error() string {
	switch v.Kind {
	case KindOutstanding:
		return fmt.Sprintf("scoped: %s guard closed while %d lifted handle(s) still exist", v.Backend, v.Live)
	case KindMoved:
		return fmt.Sprintf("scoped: %s guard used from a new address after its first lift", v.Backend)
	case KindOverRelease:
		return fmt.Sprintf("scoped: %s handle released more times than it was lifted (count %d)", v.Backend, v.Live)
	default:
		return "scoped: safety violation"
	}
}

// Is reports whether target is ErrSafetyViolation or the sentinel of v.Kind.
func (v *Violation) Is(target error) bool {
	return target == ErrSafetyViolation || (target != nil && target == v.sentinel())
}

// Misuse confined to a single goroutine is reported with an ordinary panic,
// the way sync.WaitGroup reports a negative counter.
var (
	// ErrClosed is the panic value for Lift or Value on a closed guard.
	ErrClosed = errors.New("scoped: use of closed guard")

	// ErrReleased is the panic value for Value or Clone on a released handle.
	ErrReleased = errors.New("scoped: use of released handle")

	// ErrZeroGuard is the panic value for methods called on a zero guard.
	ErrZeroGuard = errors.New("scoped: use of uninitialized guard")
)
