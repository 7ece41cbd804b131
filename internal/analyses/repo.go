package analyses

import (
	"context"

	"radar-backend/internal/radar"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	// CreatePlaceholder inserts the analysis in processing state with
	// is_ready=false, before any provider call is made.
	CreatePlaceholder(ctx context.Context, analysis Analysis) error
	// Complete marks the analysis completed with all mapped result
	// fields. is_ready flips to true only when all three core scores
	// are present.
	Complete(ctx context.Context, analysisID string, result radar.Result) error
	// Fail marks the analysis errored and not ready, with a structured
	// error captured.
	Fail(ctx context.Context, analysisID, code, message string) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
}
