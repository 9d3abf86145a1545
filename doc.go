// Package waitcounter provides a shared counter of in-flight operations with
// the ability to wait, optionally bounded by a timeout or context, until the
// count drains back to zero.
//
// # Why This Package Exists
//
// The standard library already answers "wait until all tracked work is done"
// with sync.WaitGroup, but a WaitGroup makes two assumptions that don't hold
// for long-lived trackers: Wait cannot give up (no timeout, no context), and
// Add must not race with Wait once the group has drained (reuse requires
// careful external coordination). This package drops both assumptions:
//
//   - Waiting is composable. Quiesced exposes quiescence as a channel, so a
//     waiter can select against deadlines, contexts, shutdown signals, or
//     anything else. WaitTimeout and WaitContext package up the two common
//     cases and always report whether they observed quiescence or gave up.
//   - Tracking is handle-based. Counter.Ticket hands back a Ticket whose
//     Release decrements exactly once no matter how many times it runs, so
//     a deferred Release is always safe and the count can never be pushed
//     negative by double-accounting in cleanup paths.
//
// The intended shape of a producer is:
//
//	t := counter.Ticket()
//	defer t.Release()
//	// ... do work ...
//
// Deferred functions run during panic unwinding, so the decrement is
// guaranteed on every exit path, not just the successful one. An observer
// then asks the single question this package answers — "is anyone still
// active?" — and blocks until the answer is no:
//
//	if !counter.WaitTimeout(5 * time.Second) {
//		log.Printf("shutdown timed out with %d operations still active", counter.Count())
//	}
//
// # When NOT to Use This Package
//
// This package implements one narrow primitive. If you need anything beyond
// it, use alternatives:
//
//   - Limiting concurrency (at most N active operations): use a semaphore;
//     this counter never blocks producers, no matter how high the count.
//   - Plain fork-join with no timeout: use sync.WaitGroup directly.
//   - Fork-join with error propagation: use golang.org/x/sync/errgroup.
//   - Cancelling the tracked work itself: pass contexts to your workers;
//     a Ticket can only be released by its holder, never revoked.
//   - Fairness or ordering among waiters or tickets: there is none. All
//     waiters are released by a single broadcast, and tickets may be
//     released in any order.
//
// # Design Trade-offs
//
//   - Quiescence is edge-triggered per observer. The channel returned by
//     Quiesced is closed on the first drain to zero after the call and stays
//     closed; a waiter is released even if new tickets were issued before it
//     got scheduled. Observers that outlive one drain must re-arm by calling
//     Quiesced again.
//   - Broadcast only. A drain to zero wakes every current waiter; there is
//     no single-wake variant, because independent observers of a global
//     condition all deserve the same answer.
//   - No logging, no metrics, no configuration. The counter is a leaf
//     primitive; observability belongs to its callers.
//
// # Implementation
//
// The count and a generation channel live behind one mutex. Issuing the
// first ticket opens a fresh channel; releasing the last one closes it.
// Waiters register by reading the current generation under that same mutex,
// which closes the classic check-then-wait race: a waiter that saw a
// positive count holds the very channel the final release will close. Closed
// channels never produce spurious wake-ups, so no predicate re-check loop is
// needed.
package waitcounter
