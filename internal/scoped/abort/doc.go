// Package abort reports safety violations and terminates the process.
//
// A handle that outlives its guard may be sitting on any goroutine. A panic
// only unwinds the goroutine that closed the guard, and it can be recovered,
// so the goroutine holding the handle would keep reading a value its owner
// has already recycled. The reporter therefore never panics in production:
// it writes a report to stderr, flushes it and calls os.Exit(2), which no
// deferred function or recover can intercept.
//
// Report layout:
//
//	==================
//	FATAL: SCOPED REFERENCE OUTLIVES ITS GUARD
//	shared guard closed by goroutine 7 while 1 lifted handle(s) still exist.
//	Continuing would leave a dangling reference. Aborting.
//	  main.process()
//	      /path/to/main.go:42
//
//	Outstanding handle created at:
//	  main.process()
//	      /path/to/main.go:38
//	==================
//
// The amount of stack printed follows SCOPEDTRACEBACK, read when the report
// is produced:
//
//	none    message only, plus a hint to re-run with a traceback
//	single  stack of the goroutine that detected the violation (default)
//	all     stacks of every goroutine
//
// Tests switch the reporter to recoverable mode with SetRecoverable, in
// which Fatal panics with the *Violation instead of exiting.
package abort
