// Package pool implements the bounded pool of resource handles that
// every domain operation must hold while it touches shared state. The
// pool is a classic monitor: one mutex guards the available set and a
// condition variable parks callers while the set is empty. A release
// wakes exactly one waiter. Fairness is NOT guaranteed — any blocked
// waiter may be woken, so starvation under heavy contention is an
// accepted property.
package pool

import (
	"context"
	"sync"

	"github.com/alzablotsky/coupon-system/internal/domain"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 5

// Handle is an opaque token representing one unit of the bounded
// resource. The caller that acquired it owns it exclusively until it
// returns it with Release.
type Handle struct {
	id int
}

// ID identifies the handle within its pool. Useful for logging only.
func (h *Handle) ID() int { return h.id }

// Pool is a fixed-capacity set of pre-allocated handles. The zero
// value is not usable; construct with New.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	free   []*Handle
	cap    int
	closed bool
}

// New creates a pool with capacity handles, all available. A capacity
// below 1 falls back to DefaultCapacity.
func New(capacity int) *Pool {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	p := &Pool{cap: capacity}
	p.cond = sync.NewCond(&p.mu)
	p.free = make([]*Handle, 0, capacity)
	for i := 0; i < capacity; i++ {
		p.free = append(p.free, &Handle{id: i + 1})
	}
	return p
}

// Acquire blocks until a handle is available, the context is cancelled,
// or the pool is closed. Cancellation and closure both surface as
// domain.ErrInterrupted: the caller abandoned the wait without a handle
// and must not release anything.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	// Wake this waiter when the context ends so the wait loop can
	// observe ctx.Err. Broadcast, not Signal: the woken goroutine must
	// be this one, and another waiter woken spuriously just re-checks.
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.free) == 0 {
		if p.closed || ctx.Err() != nil {
			return nil, domain.ErrInterrupted
		}
		p.cond.Wait()
	}
	h := p.free[0]
	p.free = p.free[1:]
	return h, nil
}

// Release returns a handle to the available set and wakes one waiter.
// Ownership is not tracked, matching the count-based contract: any
// release is accepted. The set is capped at capacity so a stray
// double-release cannot grow the pool, and a release into a closed
// pool simply discards the handle.
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.free) >= p.cap {
		return
	}
	p.free = append(p.free, h)
	p.cond.Signal()
}

// CloseAll empties the available set for shutdown. Handles already
// acquired stay valid; their eventual release is discarded. Pending and
// future Acquire calls fail with domain.ErrInterrupted so shutdown
// cannot strand a waiter.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.free = nil
	p.cond.Broadcast()
}

// Available reports how many handles are currently free.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Capacity reports the fixed pool size.
func (p *Pool) Capacity() int { return p.cap }
