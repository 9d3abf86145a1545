package waitcounter

import (
	"context"
	"sync"
	"time"
)

// closed is handed out by Quiesced whenever the counter is already at zero,
// so callers receive a channel that never blocks instead of a nil channel
// that blocks forever.
var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// A Counter tracks the number of currently active operations and lets any
// number of observers block until that number returns to zero.
//
// Producers register work by calling Ticket, which increments the counter and
// returns a Ticket whose Release decrements it again. Observers block on
// Wait, WaitTimeout, or WaitContext, or compose their own blocking logic from
// the Quiesced channel.
//
// The zero-value Counter is ready to use and starts quiescent. A Counter must
// not be copied after first use; share it by pointer. Because tickets and
// waiters hold ordinary pointers, the counter stays alive for as long as the
// longest-lived ticket or waiter references it.
//
// All methods are safe for concurrent use by any number of goroutines.
type Counter struct {
	mu    sync.Mutex
	count int

	// quiet is the current quiescence generation. Issuing a ticket while the
	// counter is at zero installs a fresh channel; releasing the last ticket
	// closes it, which is the broadcast that releases every waiter at once.
	// It stays nil until the first ticket is issued.
	quiet chan struct{}
}

// Ticket registers one active operation, incrementing the counter, and
// returns a Ticket bound to it. The counter is decremented again exactly once
// when the ticket is released.
//
// Callers should pair Ticket with a deferred Release so that the decrement
// happens on every exit path, including panic unwinding:
//
//	t := counter.Ticket()
//	defer t.Release()
//	// ... do work ...
//
// Ticket never blocks and may be called from any number of goroutines
// concurrently; no increment is ever lost.
func (c *Counter) Ticket() *Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.count == 1 {
		// Leaving quiescence: open a new generation for future waiters. The
		// previous generation, if any, is already closed.
		c.quiet = make(chan struct{})
	}
	return &Ticket{counter: c}
}

// Go calls f in a new goroutine that holds a freshly issued ticket. The
// ticket is released when f returns, whether it returns normally or panics
// (the release happens during unwinding; the panic itself still propagates
// and is not recovered).
//
// Go is a convenience for the common spawn-and-track pattern:
//
//	for _, task := range tasks {
//		counter.Go(func() { process(task) })
//	}
//	counter.Wait()
func (c *Counter) Go(f func()) {
	t := c.Ticket()
	go func() {
		defer t.Release()
		f()
	}()
}

// Count returns the number of tickets issued but not yet released. It is a
// point-in-time snapshot: by the time the caller acts on it, concurrent
// tickets or releases may have changed it. It is mainly useful for reporting
// how much work was still outstanding after a wait timed out.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Quiesced returns a channel that is closed once no active operations remain.
// If the counter is already at zero, the returned channel is closed already.
//
// The channel is the composition point for custom blocking logic:
//
//	select {
//	case <-counter.Quiesced():
//		// all operations completed
//	case <-ctx.Done():
//		// gave up waiting
//	}
//
// The returned channel belongs to the quiescence generation current at the
// time of the call: it is closed as soon as the count reaches zero at any
// later point, and stays closed even if new tickets are issued afterwards.
// Callers that care about a subsequent quiescence must call Quiesced again
// to obtain the new generation.
//
// Receiving from the channel conveys no values; it only ever unblocks by
// being closed, so every waiter is released by the same broadcast.
func (c *Counter) Quiesced() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return closed
	}
	return c.quiet
}

// Wait blocks the calling goroutine until no active operations remain. If the
// counter is already at zero, Wait returns immediately. Any number of
// goroutines may wait concurrently; releasing the last outstanding ticket
// releases all of them.
func (c *Counter) Wait() {
	<-c.Quiesced()
}

// WaitTimeout blocks until no active operations remain or until the given
// duration elapses, whichever comes first. It reports true if the counter
// reached zero and false if the timeout expired with operations still active,
// so callers can always tell "all clear" apart from "gave up".
//
// A non-positive timeout degenerates to a non-blocking poll: true exactly
// when the counter is already quiescent. On a false return, Count reports how
// many operations were still outstanding (at that instant).
func (c *Counter) WaitTimeout(timeout time.Duration) bool {
	quiesced := c.Quiesced()
	select {
	case <-quiesced:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-quiesced:
		return true
	case <-timer.C:
		return false
	}
}

// WaitContext blocks until no active operations remain or until ctx is done,
// whichever comes first. It returns nil on quiescence and ctx.Err()
// otherwise.
//
// If the counter is already quiescent when WaitContext is called, it returns
// nil even if ctx is already done; the quiescence check comes first.
func (c *Counter) WaitContext(ctx context.Context) error {
	quiesced := c.Quiesced()
	select {
	case <-quiesced:
		return nil
	default:
	}
	select {
	case <-quiesced:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release undoes one increment. Only reachable through Ticket.Release, whose
// sync.Once guarantees each ticket takes this path at most once, so the count
// can never go negative unless this package itself is broken.
func (c *Counter) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		panic("waitcounter: released more tickets than were issued")
	}
	c.count--
	if c.count == 0 {
		// Reaching quiescence: broadcast to every waiter of this generation.
		// Decrements that leave the count positive wake nobody.
		close(c.quiet)
	}
}

// A Ticket represents exactly one active operation registered with a Counter.
// Its only observable behaviour is Release.
//
// Tickets are created by Counter.Ticket; the zero-value Ticket is invalid.
type Ticket struct {
	counter *Counter
	once    sync.Once
}

// Release decrements the counter this ticket was issued from. If this was the
// last outstanding ticket, all goroutines currently waiting on the counter
// are released.
//
// Release is idempotent: only the first call decrements, so an explicit
// Release followed by a deferred one is safe and counts as a single release.
func (t *Ticket) Release() {
	t.once.Do(t.counter.release)
}
