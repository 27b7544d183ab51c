package types

import (
	"fmt"

	"github.com/google/uuid"
)

// AssigneeRecord represents a patent assignee from the INPI extract together
// with the patents registered under that name. Records are immutable.
type AssigneeRecord struct {
	ID             uuid.UUID `json:"id"`
	RawName        string    `json:"raw_name"`
	NormalizedName string    `json:"normalized_name"`
	PatentIDs      []string  `json:"patent_ids"`
}

// PatentCount returns the number of patents attributed to the assignee.
func (a *AssigneeRecord) PatentCount() int {
	return len(a.PatentIDs)
}

// Validate checks structural invariants of an assignee record.
func (a *AssigneeRecord) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("assignee record missing ID (raw name: %q)", a.RawName)
	}
	if a.RawName == "" {
		return fmt.Errorf("assignee %s: empty raw name", a.ID)
	}
	return nil
}
