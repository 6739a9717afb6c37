// Package sweeper runs the background task that removes expired
// coupons. One pass takes the same path as any domain operation:
// acquire a pool handle, read through the storage gateway, delete, and
// release. Between passes the loop sleeps for the configured interval
// (24h by default) and checks once per iteration whether it was asked
// to stop — a pass already in progress always finishes.
package sweeper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
)

// DefaultInterval is the nominal daily cadence between sweep passes.
const DefaultInterval = 24 * time.Hour

// Store is the slice of the coupon storage gateway the sweeper needs.
type Store interface {
	FindAll(ctx context.Context) ([]*model.Coupon, error)
	Delete(ctx context.Context, id uint64) error
}

// Sweeper periodically deletes coupons whose end date has passed.
type Sweeper struct {
	pool     *pool.Pool
	store    Store
	interval time.Duration

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}
}

// New builds a sweeper. A non-positive interval falls back to
// DefaultInterval.
func New(p *pool.Pool, store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{pool: p, store: store, interval: interval}
}

// Start launches the sweep loop. Starting an already-running sweeper is
// a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.quit, s.done)
}

// Stop asks the loop to finish and waits for it. The stop is
// cooperative: a pass in flight completes before the loop exits.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	quit, done := s.quit, s.done
	s.mu.Unlock()

	close(quit)
	<-done
}

// Running reports whether the loop is active.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) loop(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	for {
		if n, err := s.SweepOnce(context.Background()); err != nil {
			log.Printf("sweeper: pass failed: %v", err)
		} else if n > 0 {
			log.Printf("sweeper: removed %d expired coupons", n)
		}
		select {
		case <-quit:
			return
		case <-timer.C:
			timer.Reset(s.interval)
		}
	}
}

// SweepOnce performs a single pass and reports how many coupons it
// removed. Expiry is evaluated against wall-clock time at the start of
// the pass; only coupons with endDate strictly before it are deleted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Release(h)

	now := time.Now()
	coupons, err := s.store.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, c := range coupons {
		if !c.Expired(now) {
			continue
		}
		if err := s.store.Delete(ctx, c.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
