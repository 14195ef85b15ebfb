package analyses

import "time"

// Analysis is the derived summary and keyword list of one document. Analyses are append-only.
type Analysis struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Summary    string    `json:"summary"`
	Keywords   []string  `json:"keywords"`
	CreatedAt  time.Time `json:"createdAt"`
}
