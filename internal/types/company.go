// Package types provides type definitions for structured data used throughout the patent-linker pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Survival labels attached to a company record. The label is carried through
// to the exported dataset; the pipeline itself never interprets it.
const (
	SurvivalActive  = "active"
	SurvivalClosed  = "closed"
	SurvivalUnknown = ""
)

// CompanyRecord represents a startup scraped from the directory or loaded
// from a companies CSV. The matcher fills an empty NormalizedName in place;
// every other field is immutable once emitted.
type CompanyRecord struct {
	ID             uuid.UUID `json:"id"`
	RawName        string    `json:"raw_name"`
	NormalizedName string    `json:"normalized_name"`
	Tagline        string    `json:"tagline,omitempty"`
	DetailURL      string    `json:"detail_url,omitempty"`
	Category       string    `json:"category,omitempty"`
	ListPage       int       `json:"list_page,omitempty"`
	SurvivalStatus string    `json:"survival_status,omitempty"`
}

// Validate checks structural invariants of a company record.
// An empty raw name is allowed (it yields an unmatched result downstream),
// but the record must carry an ID so results stay traceable.
func (c *CompanyRecord) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("company record missing ID (raw name: %q)", c.RawName)
	}
	switch c.SurvivalStatus {
	case SurvivalActive, SurvivalClosed, SurvivalUnknown:
	default:
		return fmt.Errorf("company %s: unknown survival status %q", c.ID, c.SurvivalStatus)
	}
	return nil
}
