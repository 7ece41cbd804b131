package actionitems

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores action items in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]ActionItem
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]ActionItem)}
}

// InsertBatch stores all items.
func (r *MemoryRepo) InsertBatch(ctx context.Context, items []ActionItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		r.byID[item.ID] = item
	}
	return nil
}

// ListByAnalysis returns items ordered by section then insertion index.
func (r *MemoryRepo) ListByAnalysis(ctx context.Context, analysisID string) ([]ActionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []ActionItem{}
	for _, item := range r.byID {
		if item.AnalysisID == analysisID {
			out = append(out, item)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].Idx < out[j].Idx
	})
	return out, nil
}

// SetCompleted toggles the completion flag on one item.
func (r *MemoryRepo) SetCompleted(ctx context.Context, itemID string, completed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[itemID]
	if !ok {
		return ErrNotFound
	}
	item.Completed = completed
	item.UpdatedAt = time.Now().UTC()
	r.byID[itemID] = item
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
