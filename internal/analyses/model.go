package analyses

import (
	"time"

	"radar-backend/internal/radar"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Analysis is the durable record of one AI evaluation. IsReady stays
// false until the record is fully populated: it can only flip to true
// with all three core scores present and status completed.
type Analysis struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	InputText        string         `json:"inputText"`
	Status           string         `json:"status"`
	IsReady          bool           `json:"isReady"`
	PowerScore       *float64       `json:"powerScore,omitempty"`
	GravityScore     *float64       `json:"gravityScore,omitempty"`
	RiskScore        *float64       `json:"riskScore,omitempty"`
	Confidence       *float64       `json:"confidence,omitempty"`
	TLDR             *string        `json:"tldr,omitempty"`
	Diagnosis        *string        `json:"diagnosis,omitempty"`
	Strategy         *string        `json:"strategy,omitempty"`
	RiskFlags        []string       `json:"riskFlags,omitempty"`
	Radar            radar.Axes     `json:"radar"`
	Profile          map[string]any `json:"profile,omitempty"`
	SourcesConfirmed bool           `json:"sourcesConfirmed"`
	LatencyMS        *int64         `json:"latencyMs,omitempty"`
	ErrorCode        *string        `json:"errorCode,omitempty"`
	ErrorMessage     *string        `json:"errorMessage,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
