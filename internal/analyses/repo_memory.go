package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"radar-backend/internal/radar"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// CreatePlaceholder inserts the analysis in processing state.
func (r *MemoryRepo) CreatePlaceholder(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	analysis.Status = StatusProcessing
	analysis.IsReady = false
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = now
	}
	analysis.UpdatedAt = now
	r.byID[analysis.ID] = analysis
	return nil
}

// Complete writes the normalized result onto the analysis.
func (r *MemoryRepo) Complete(ctx context.Context, analysisID string, result radar.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return ErrNotFound
	}
	analysis.Status = StatusCompleted
	analysis.IsReady = result.HasCoreScores()
	analysis.PowerScore = result.PowerScore
	analysis.GravityScore = result.GravityScore
	analysis.RiskScore = result.RiskScore
	analysis.Confidence = result.Confidence
	analysis.TLDR = result.TLDR
	analysis.Diagnosis = result.Diagnosis
	analysis.Strategy = result.Strategy
	analysis.RiskFlags = result.RiskFlags
	analysis.Radar = result.Radar
	analysis.Profile = result.Profile
	analysis.SourcesConfirmed = result.SourcesConfirmed
	latency := result.LatencyMS
	analysis.LatencyMS = &latency
	analysis.ErrorCode = nil
	analysis.ErrorMessage = nil
	analysis.UpdatedAt = time.Now().UTC()
	r.byID[analysisID] = analysis
	return nil
}

// Fail marks the analysis errored with a structured error captured.
func (r *MemoryRepo) Fail(ctx context.Context, analysisID, code, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return ErrNotFound
	}
	analysis.Status = StatusError
	analysis.IsReady = false
	analysis.ErrorCode = &code
	analysis.ErrorMessage = &message
	analysis.UpdatedAt = time.Now().UTC()
	r.byID[analysisID] = analysis
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
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
	all := make([]Analysis, 0, len(r.byID))
	for _, a := range r.byID {
		if a.UserID == userID {
			all = append(all, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []Analysis{}, nil
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
