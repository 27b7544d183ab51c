package types

import "github.com/google/uuid"

// Portfolio is the set of patents attributed to a matched company, built
// downstream of the matcher. Ambiguous and unmatched companies have none.
type Portfolio struct {
	CompanyID   uuid.UUID `json:"company_id"`
	AssigneeID  uuid.UUID `json:"assignee_id"`
	PatentIDs   []string  `json:"patent_ids"`
	PatentCount int       `json:"patent_count"`
}

// SurvivalObservation is one row of the exported dataset consumed by the
// econometric modeling step: the company, its patent position, and its label.
type SurvivalObservation struct {
	CompanyID      uuid.UUID `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	Category       string    `json:"category,omitempty"`
	Decision       Decision  `json:"decision"`
	MatchScore     float64   `json:"match_score"`
	HasPatents     bool      `json:"has_patents"`
	PatentCount    int       `json:"patent_count"`
	SurvivalStatus string    `json:"survival_status,omitempty"`
}
