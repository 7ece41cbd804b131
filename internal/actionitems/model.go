package actionitems

import "time"

// ActionItem is one ordered, categorized recommendation derived from an
// analysis. Ordering within a section follows the insertion index.
type ActionItem struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysisId"`
	Section    string    `json:"section"`
	Idx        int       `json:"idx"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
