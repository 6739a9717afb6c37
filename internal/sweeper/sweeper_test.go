package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
)

type fakeStore struct {
	mu      sync.Mutex
	coupons map[uint64]*model.Coupon
}

func newFakeStore(coupons ...*model.Coupon) *fakeStore {
	s := &fakeStore{coupons: map[uint64]*model.Coupon{}}
	for _, c := range coupons {
		s.coupons[c.ID] = c
	}
	return s
}

func (s *fakeStore) FindAll(context.Context) ([]*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coupons, id)
	return nil
}

func TestSweepOnceDeletesOnlyExpired(t *testing.T) {
	now := time.Now()
	store := newFakeStore(
		&model.Coupon{ID: 1, Title: "old", EndDate: now.AddDate(0, 0, -2)},
		&model.Coupon{ID: 2, Title: "older", EndDate: now.AddDate(-1, 0, 0)},
		&model.Coupon{ID: 3, Title: "fresh", EndDate: now.AddDate(1, 0, 0)},
	)
	p := pool.New(2)
	s := New(p, store, time.Hour)

	n, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d coupons, want 2", n)
	}
	if _, ok := store.coupons[3]; !ok {
		t.Fatal("unexpired coupon was deleted")
	}
	if len(store.coupons) != 1 {
		t.Fatalf("%d coupons left, want 1", len(store.coupons))
	}
	if got := p.Available(); got != 2 {
		t.Fatalf("pool available = %d after pass, want 2", got)
	}
}

func TestSweepOnceInterruptedWhenPoolDrained(t *testing.T) {
	p := pool.New(1)
	h, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	defer p.Release(h)

	s := New(p, newFakeStore(), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.SweepOnce(ctx); !errors.Is(err, domain.ErrInterrupted) {
		t.Fatalf("SweepOnce with drained pool: got %v, want ErrInterrupted", err)
	}
}

func TestStartStop(t *testing.T) {
	store := newFakeStore(
		&model.Coupon{ID: 1, Title: "old", EndDate: time.Now().AddDate(0, 0, -1)},
	)
	s := New(pool.New(2), store, time.Hour)

	s.Start()
	if !s.Running() {
		t.Fatal("sweeper not running after Start")
	}
	s.Start() // second Start is a no-op

	// The loop sweeps immediately on start; wait for the pass to land.
	deadline := time.After(time.Second)
	for {
		store.mu.Lock()
		n := len(store.coupons)
		store.mu.Unlock()
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial pass did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.Stop()
	if s.Running() {
		t.Fatal("sweeper still running after Stop")
	}
	s.Stop() // second Stop is a no-op
}
