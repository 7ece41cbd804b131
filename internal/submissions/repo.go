package submissions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("submission not found")

// Repo defines persistence operations for submissions.
type Repo interface {
	Create(ctx context.Context, submission Submission) error
	UpdateStatus(ctx context.Context, submissionID, status string) error
	SetAnalysisID(ctx context.Context, submissionID, analysisID string) error
	GetByID(ctx context.Context, submissionID string) (Submission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error)
}
