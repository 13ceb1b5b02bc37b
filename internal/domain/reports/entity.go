package reports

import "time"

// ReportID identifier type
type ReportID string

// Report is an AI-written clinical note for one prediction, stored for
// auditing and retrieval.
type Report struct {
	ID           ReportID  `json:"id"`
	UserID       string    `json:"user_id"`
	PredictionID string    `json:"prediction_id"`
	Result       string    `json:"result"` // JSON string from AI
	CreatedAt    time.Time `json:"created_at"`
}
