package submissions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores submissions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Submission
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Submission)}
}

// Create stores the submission.
func (r *MemoryRepo) Create(ctx context.Context, submission Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	r.byID[submission.ID] = submission
	return nil
}

// UpdateStatus sets the lifecycle status of an existing submission.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, submissionID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.byID[submissionID]
	if !ok {
		return ErrNotFound
	}
	submission.Status = status
	submission.UpdatedAt = time.Now().UTC()
	r.byID[submissionID] = submission
	return nil
}

// SetAnalysisID back-fills the analysis reference on the submission.
func (r *MemoryRepo) SetAnalysisID(ctx context.Context, submissionID, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.byID[submissionID]
	if !ok {
		return ErrNotFound
	}
	submission.AnalysisID = analysisID
	submission.UpdatedAt = time.Now().UTC()
	r.byID[submissionID] = submission
	return nil
}

// GetByID returns a submission by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, submissionID string) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	submission, ok := r.byID[submissionID]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return submission, nil
}

// ListByUser returns submissions for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]Submission, 0, len(r.byID))
	for _, s := range r.byID {
		if s.UserID == userID {
			all = append(all, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []Submission{}, nil
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
