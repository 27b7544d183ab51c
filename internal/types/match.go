package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Decision is the outcome of matching one company against the assignee set.
type Decision string

const (
	// DecisionMatched means the best candidate scored at or above the high
	// threshold and was uniquely best (after the patent-count tie-break).
	DecisionMatched Decision = "matched"
	// DecisionAmbiguous means the score cleared the low threshold but the
	// match could not be accepted automatically; these require manual review
	// and are never silently resolved.
	DecisionAmbiguous Decision = "ambiguous"
	// DecisionUnmatched means no acceptable candidate was found, including
	// the empty-name and no-shared-token cases.
	DecisionUnmatched Decision = "unmatched"
)

// MatchResult is the linkage outcome for a single company record. Exactly one
// result is produced per input company, and results are never mutated.
type MatchResult struct {
	CompanyID      uuid.UUID  `json:"company_id"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	Score          float64    `json:"score"`
	Decision       Decision   `json:"decision"`
	CandidateCount int        `json:"candidate_count"`
	// Reason records why a non-matched decision was taken (empty name,
	// no shared token, tie, below threshold). Informational only.
	Reason string `json:"reason,omitempty"`
}

// Validate enforces the result invariants: a matched result always carries an
// assignee, non-matched results never do, and scores stay in [0,1].
func (m *MatchResult) Validate() error {
	if m.CompanyID == uuid.Nil {
		return fmt.Errorf("match result missing company ID")
	}
	if m.Score < 0 || m.Score > 1 {
		return fmt.Errorf("match result for %s: score %f out of [0,1]", m.CompanyID, m.Score)
	}
	switch m.Decision {
	case DecisionMatched:
		if m.AssigneeID == nil || *m.AssigneeID == uuid.Nil {
			return fmt.Errorf("matched result for %s missing assignee ID", m.CompanyID)
		}
	case DecisionAmbiguous, DecisionUnmatched:
		if m.AssigneeID != nil {
			return fmt.Errorf("%s result for %s must not carry an assignee ID", m.Decision, m.CompanyID)
		}
	default:
		return fmt.Errorf("match result for %s: unknown decision %q", m.CompanyID, m.Decision)
	}
	return nil
}
