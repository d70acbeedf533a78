// Package scoped hands out counted references to scope-bound values and
// terminates the process if a reference outlives its scope.
//
// Some values only stay valid until the function that owns them returns: a
// buffer that goes back to a sync.Pool, an arena slot that will be reused, a
// struct that is reset for the next request. Sharing such a value with other
// goroutines is safe only if every goroutine is done with it before the owner
// recycles it. A Guard makes that rule checkable:
//
//	buf := pool.Get().(*bytes.Buffer)
//	defer pool.Put(buf)
//
//	g := scoped.New(buf)
//	defer g.Close() // runs before pool.Put
//
//	var eg errgroup.Group
//	g.Go(&eg, func(h scoped.Handle[bytes.Buffer]) error {
//		return consume(h.Value())
//	})
//	return eg.Wait() // every handle is released before Close runs
//
// Every Lift or Clone adds one to the guard's live count and every Release
// subtracts one. Close inspects the count once. If any handle is still live,
// Close writes a report to stderr and exits the process with status 2. It
// does not panic, because the goroutine holding the handle would not see a
// panic on the closing goroutine and could keep using the recycled value.
// Close never waits for handles to drain.
//
// # Backends
//
// [Guard] (shared) keeps its state in one heap cell, so the guard itself may
// be copied, stored and returned. [PinnedGuard] keeps the counter inline and
// costs no allocation as a local variable or embedded in an existing struct,
// but must not be copied after its first Lift. go vet reports such copies.
//
// [With] and [WithPinned] create, bind and close a guard in one step:
//
//	scoped.WithPinned(&req, func(g *scoped.PinnedGuard[Request]) {
//		var eg errgroup.Group
//		g.Go(&eg, validate)
//		g.Go(&eg, audit)
//		_ = eg.Wait()
//	})
//
// # Build modes
//
// Bookkeeping is on by default. Building with -tags scoped_unchecked
// compiles it out: handles become bare pointers, Close checks nothing and a
// handle that outlives its guard is not detected. [Enabled] reports the mode.
//
// Building with -tags scoped_pincheck makes pinned guards record their
// address at the first Lift and report a later Lift or Close from a copy.
// The guard then lives on the heap.
//
// # Environment
//
//	SCOPEDTRACEBACK=none|single|all   stack printed with a report (default single)
//	SCOPEDTRACK=1                     record where each shared handle was lifted
//
// # Limits
//
// Only Close checks. A guard that is never closed is never checked, and a
// value recycled while such a guard's handles are still live goes unnoticed.
// The checks also rely on handles being released exactly once; copying a
// Handle by assignment moves it, and only Clone creates a new counted handle.
//
// Tests can assert on violations with package scopedtest.
package scoped
