// Package check selects between checked and unchecked bookkeeping.
//
// The default build is checked: every Lift, Clone, Release and Close touches
// the live counter and Close verifies that no handle is outstanding. Building
// with
//
//	go build -tags scoped_unchecked
//
// compiles the counter operations out. Handles then become plain pointers
// and a guard closed while handles remain is not detected. That is the
// documented trade-off of the unchecked build, not a defect.
//
// Enabled is a constant so that the backends' `if check.Enabled` branches are
// removed by the compiler instead of costing a load per call.
package check
