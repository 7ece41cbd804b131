package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	byID map[string]Usage
	now  func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byID: make(map[string]Usage),
		now:  time.Now,
	}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID), nil
}

func (s *memoryStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID)
	if n <= 0 {
		return u, nil
	}
	if u.Used+n > u.Limit {
		return Usage{}, ErrLimitReached
	}
	u.Used += n
	s.byID[userID] = u
	return u, nil
}

// ensureLocked initializes defaults and rolls the period when expired.
func (s *memoryStore) ensureLocked(userID string) Usage {
	now := s.now().UTC()
	u, ok := s.byID[userID]
	if !ok {
		u = Usage{Plan: defaultPlan, Limit: defaultLimit, ResetsAt: nextReset(now)}
	}
	if !u.ResetsAt.After(now) {
		u.Used = 0
		u.ResetsAt = nextReset(now)
	}
	s.byID[userID] = u
	return u
}
