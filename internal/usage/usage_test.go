package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(now func() time.Time) *Service {
	store := newMemoryStore()
	if now != nil {
		store.now = now
	}
	return &Service{store: store}
}

func TestGetInitializesDefaults(t *testing.T) {
	svc := newTestService(nil)

	u, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Plan != defaultPlan || u.Limit != defaultLimit || u.Used != 0 {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	if !u.ResetsAt.After(time.Now()) {
		t.Fatalf("expected future reset, got %v", u.ResetsAt)
	}
}

func TestConsumeEnforcesLimit(t *testing.T) {
	svc := newTestService(nil)

	for i := 0; i < defaultLimit; i++ {
		if _, err := svc.Consume(context.Background(), "user-1", 1); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}
	if _, err := svc.Consume(context.Background(), "user-1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected limit error, got %v", err)
	}

	ok, u, err := svc.CanConsume(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("can consume: %v", err)
	}
	if ok {
		t.Fatalf("expected CanConsume false at limit, usage %+v", u)
	}
}

func TestPeriodRollResetsUsage(t *testing.T) {
	current := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(func() time.Time { return current })

	if _, err := svc.Consume(context.Background(), "user-1", defaultLimit); err != nil {
		t.Fatalf("consume: %v", err)
	}

	current = current.AddDate(0, 1, 0)
	u, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get after roll: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected usage reset after period roll, got %d", u.Used)
	}
	if !u.ResetsAt.After(current) {
		t.Fatalf("expected next reset after current time, got %v", u.ResetsAt)
	}
}

func TestNextReset(t *testing.T) {
	now := time.Date(2026, time.January, 20, 9, 30, 0, 0, time.UTC)
	got := nextReset(now)
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("nextReset = %v, want %v", got, want)
	}
}
