// Package stackdepot stores the call stacks at which handles were created.
//
// Origin tracking records one stack per Lift or Clone. Most handles in a
// program come from a handful of call sites, so stacks are deduplicated by
// an FNV-1a hash of their program counters and each handle only carries the
// 64-bit hash.
//
// Usage:
//
//	// On Lift, skipping the depot and the backend frames.
//	hash := stackdepot.CaptureStack(1)
//
//	// In the violation report.
//	fmt.Print(stackdepot.GetStack(hash).FormatStack())
package stackdepot

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

const (
	// MaxFrames is the maximum number of stack frames kept per origin.
	// Frames below the Lift or Clone call site are enough to find the
	// goroutine that kept a handle.
	MaxFrames = 16

	// internalPrefix marks frames belonging to this module's internals.
	internalPrefix = "github.com/kolkov/scopedref/internal/"
)

// StackTrace is a captured stack of fixed size.
type StackTrace struct {
	PC [MaxFrames]uintptr
}

// stackDepot maps uint64 hash -> *StackTrace.
var stackDepot sync.Map

// CaptureStack records the caller's stack and returns its hash.
//
// skip is the number of additional frames to drop above the caller of
// CaptureStack, so a backend can hide its own Lift frame. A zero hash means
// no frames were available.
func CaptureStack(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// runtime.Callers + CaptureStack.
	n := runtime.Callers(2+skip, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashStack(pcs[:n])
	if _, exists := stackDepot.Load(hash); exists {
		return hash
	}

	stackDepot.Store(hash, &StackTrace{PC: pcs})
	return hash
}

// GetStack returns the stack stored under hash, or nil.
func GetStack(hash uint64) *StackTrace {
	if hash == 0 {
		return nil
	}
	val, ok := stackDepot.Load(hash)
	if !ok {
		return nil
	}
	return val.(*StackTrace)
}

func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()
	for _, pc := range pcs {
		//nolint:gosec // G103: reading the PC value as bytes for hashing
		pcBytes := (*[8]byte)(unsafe.Pointer(&pc))[:]
		_, _ = h.Write(pcBytes)
	}
	return h.Sum64()
}

// FormatStack formats the stack the way the violation report prints it:
//
//	main.worker()
//	      /path/to/file.go:45
//
// Runtime frames and non-test frames inside this module's internal packages
// are dropped.
func (st *StackTrace) FormatStack() string {
	if st == nil {
		return "  <unknown>\n"
	}

	return FormatPCs(st.PC[:])
}

// FormatPCs formats program counters from runtime.Callers with the same
// filtering as FormatStack. A zero PC terminates the stack.
func FormatPCs(pcs []uintptr) string {
	if len(pcs) == 0 || pcs[0] == 0 {
		return "  <unknown>\n"
	}

	frames := runtime.CallersFrames(pcs)
	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if !skipFrame(frame) {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}

func skipFrame(frame runtime.Frame) bool {
	if strings.HasPrefix(frame.Function, "runtime.") {
		return true
	}
	// Tests living inside the internal packages are user code for the report.
	return strings.HasPrefix(frame.Function, internalPrefix) &&
		!strings.HasSuffix(frame.File, "_test.go")
}

// Reset clears the depot. Tests only; not safe for concurrent use.
func Reset() {
	stackDepot = sync.Map{}
}

// Stats returns the number of unique stacks stored.
func Stats() (uniqueStacks int) {
	stackDepot.Range(func(_, _ any) bool {
		uniqueStacks++
		return true
	})
	return uniqueStacks
}
