package submissions

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Submission is the intake record for one user request.
type Submission struct {
	ID         string    `json:"jobId"`
	UserID     string    `json:"userId"`
	UserEmail  string    `json:"userEmail"`
	InputText  string    `json:"inputText"`
	QueryID    string    `json:"queryId,omitempty"`
	AnalysisID string    `json:"analysisId,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
