// Package shared implements the movable, heap-backed guard.
//
// A Guard and all of its Handles point at one heap cell holding the value
// pointer and a reference count. The guard's own hold counts as one, so the
// live-handle count is refs-1. Because all state lives in the cell, a Guard
// can be copied, stored in structs, returned and sent on channels; any copy
// may Close it. That makes this backend the right choice when the guard
// cannot stay put. When it can, the pinned backend avoids the allocation.
//
// Closing a guard while handles are live is a safety violation and
// terminates the process through package abort.
//
// Setting SCOPEDTRACK=1 before the process starts records the call stack of
// every Lift and Clone so that the violation report can say where each
// outstanding handle came from. It costs one stack capture per handle.
package shared
