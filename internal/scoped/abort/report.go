package abort

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/kolkov/scopedref/internal/scoped/stackdepot"
)

// Traceback selects how much stack a report prints.
type Traceback int

const (
	// TracebackSingle prints the detecting goroutine's stack.
	TracebackSingle Traceback = iota
	// TracebackNone prints the message and a re-run hint.
	TracebackNone
	// TracebackAll prints every goroutine's stack.
	TracebackAll
)

const (
	// TracebackEnv is the environment variable read by ParseTraceback.
	TracebackEnv = "SCOPEDTRACEBACK"

	// ExitCode is the process status used by Fatal.
	ExitCode = 2

	maxStackDepth = 32
	banner        = "==================\n"
)

var (
	// recoverable switches Fatal to panic(v). Test harness only.
	recoverable atomic.Bool

	// Overridden by this package's tests.
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// SetRecoverable switches Fatal between terminating the process (false, the
// default) and panicking with the *Violation (true). It returns the previous
// setting so callers can restore it.
func SetRecoverable(on bool) (prev bool) {
	return recoverable.Swap(on)
}

// Recoverable reports whether Fatal currently panics instead of exiting.
func Recoverable() bool {
	return recoverable.Load()
}

// ParseTraceback maps a SCOPEDTRACEBACK value to a Traceback level.
// Unknown values select the default, TracebackSingle. Numeric values follow
// GOTRACEBACK: 0 is none, 1 is single, 2 and above is all.
func ParseTraceback(s string) Traceback {
	switch s {
	case "none", "0":
		return TracebackNone
	case "all", "2", "system", "crash":
		return TracebackAll
	default:
		return TracebackSingle
	}
}

// Fatal reports v and terminates the process with ExitCode. It does not
// return. In recoverable mode it panics with v instead.
func Fatal(v *Violation) {
	v.Goroutine = goroutineID()
	v.traceback = ParseTraceback(os.Getenv(TracebackEnv))
	switch v.traceback {
	case TracebackSingle:
		// Skip runtime.Callers, captureStackTrace and Fatal.
		v.Stack = captureStackTrace(3)
	case TracebackAll:
		v.Stack = captureStackTrace(3)
		v.dump = allGoroutines()
	}

	if recoverable.Load() {
		panic(v)
	}

	var buf bytes.Buffer
	Format(&buf, v)
	//nolint:errcheck // nothing left to do if stderr is gone
	stderr.Write(buf.Bytes())
	if f, ok := stderr.(interface{ Sync() error }); ok {
		_ = f.Sync()
	}
	exit(ExitCode)
}

func captureStackTrace(skip int) []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}

func allGoroutines() []byte {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		if len(buf) >= 16<<20 {
			return buf
		}
		buf = make([]byte, 2*len(buf))
	}
}

// Format writes the report for v to w.
//
//nolint:errcheck // Error handling omitted for stderr output formatting
func Format(w io.Writer, v *Violation) {
	fmt.Fprint(w, banner)
	switch v.Kind {
	case KindOutstanding:
		fmt.Fprintf(w, "FATAL: SCOPED REFERENCE OUTLIVES ITS GUARD\n")
		fmt.Fprintf(w, "%s guard closed by goroutine %d while %d lifted handle(s) still exist.\n",
			v.Backend, v.Goroutine, v.Live)
	case KindMoved:
		fmt.Fprintf(w, "FATAL: PINNED GUARD MOVED\n")
		fmt.Fprintf(w, "%s guard used by goroutine %d from a different address than its first lift.\n",
			v.Backend, v.Goroutine)
		fmt.Fprintf(w, "Outstanding handles point at the old counter.\n")
	case KindOverRelease:
		fmt.Fprintf(w, "FATAL: SCOPED HANDLE OVER-RELEASED\n")
		fmt.Fprintf(w, "%s handle released by goroutine %d drove the live count to %d.\n",
			v.Backend, v.Goroutine, v.Live)
		fmt.Fprintf(w, "A handle was copied instead of cloned, or released twice.\n")
	default:
		fmt.Fprintf(w, "FATAL: SCOPED SAFETY VIOLATION\n")
	}
	fmt.Fprintf(w, "Continuing would leave a dangling reference. Aborting.\n")

	switch {
	case v.traceback == TracebackNone:
		fmt.Fprintf(w, "\n(Hint: re-run with %s=single to see a backtrace.)\n", TracebackEnv)
	case len(v.Stack) > 0:
		fmt.Fprint(w, stackdepot.FormatPCs(v.Stack))
	}

	for _, origin := range v.Origins {
		fmt.Fprintf(w, "\nOutstanding handle created at:\n")
		fmt.Fprint(w, stackdepot.GetStack(origin).FormatStack())
	}

	if len(v.dump) > 0 {
		fmt.Fprintf(w, "\nAll goroutines:\n%s", v.dump)
	}
	fmt.Fprint(w, banner)
}

// String returns the formatted report, as Format would write it.
func (v *Violation) String() string {
	var buf bytes.Buffer
	Format(&buf, v)
	return buf.String()
}
