// Package pinned implements the fixed-address guard.
//
// The guard carries its own atomic counter and each Handle points straight
// at that field, so a guard declared as a local variable or embedded in an
// existing struct costs no allocation. The price is that the guard must not
// be copied once a handle has been lifted from it, the same rule sync.Mutex
// follows. go vet's copylocks check flags such copies (Guard embeds noCopy).
//
// Building with -tags scoped_pincheck adds a run-time check: on its first
// Lift the guard records the address of its counter, and any later Lift or
// Close through a different address is a violation. Recording that address
// inside the guard makes the guard escape to the heap, so the check is off
// by default. The recorded address is an ordinary pointer, so goroutine
// stack growth does not trigger a false report.
//
// Use package shared when the guard has to move.
package pinned
