// Package scopedtest lets tests assert on safety violations.
//
// By default a violation terminates the process, which would end the test
// binary along with it. Recoverable switches the reporter to panic with the
// violation for the duration of one test:
//
//	func TestEarlyClose(t *testing.T) {
//		scopedtest.Recoverable(t)
//
//		v := 1.0
//		g := scoped.New(&v)
//		h := g.Lift()
//		defer h.Release()
//
//		scopedtest.ExpectViolation(t, g.Close)
//	}
//
// The switch is process-wide, so tests using it must not run in parallel
// with tests that rely on the fatal path. Never import this package from
// production code.
package scopedtest

import (
	"testing"

	"github.com/kolkov/scopedref/internal/scoped/abort"
)

// Recoverable makes violations panic with a *scoped.Violation until the test
// and its subtests finish.
func Recoverable(tb testing.TB) {
	tb.Helper()
	prev := abort.SetRecoverable(true)
	tb.Cleanup(func() { abort.SetRecoverable(prev) })
}

// ExpectViolation runs fn in recoverable mode and returns the violation it
// raised. The test fails if fn returns without one. Panics that are not
// violations are re-raised.
func ExpectViolation(tb testing.TB, fn func()) *abort.Violation {
	tb.Helper()
	v := CatchViolation(fn)
	if v == nil {
		tb.Fatal("expected a safety violation, got none")
	}
	return v
}

// ExpectNoViolation runs fn in recoverable mode and fails the test if it
// raised a violation.
func ExpectNoViolation(tb testing.TB, fn func()) {
	tb.Helper()
	if v := CatchViolation(fn); v != nil {
		tb.Fatalf("unexpected safety violation: %v", v)
	}
}

// CatchViolation runs fn in recoverable mode and returns the violation it
// raised, or nil.
func CatchViolation(fn func()) (v *abort.Violation) {
	prev := abort.SetRecoverable(true)
	defer abort.SetRecoverable(prev)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ok bool
		if v, ok = r.(*abort.Violation); !ok {
			panic(r)
		}
	}()
	fn()
	return nil
}
