package actionitems

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("action item not found")

// Repo defines persistence operations for action items.
type Repo interface {
	InsertBatch(ctx context.Context, items []ActionItem) error
	ListByAnalysis(ctx context.Context, analysisID string) ([]ActionItem, error)
	SetCompleted(ctx context.Context, itemID string, completed bool) error
}
