package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMatchResultValidate_Matched(t *testing.T) {
	assigneeID := uuid.New()
	result := MatchResult{
		CompanyID:  uuid.New(),
		AssigneeID: &assigneeID,
		Score:      0.95,
		Decision:   DecisionMatched,
	}

	assert.NoError(t, result.Validate())
}

func TestMatchResultValidate_MatchedWithoutAssignee(t *testing.T) {
	result := MatchResult{
		CompanyID: uuid.New(),
		Score:     0.95,
		Decision:  DecisionMatched,
	}

	assert.Error(t, result.Validate())
}

func TestMatchResultValidate_UnmatchedWithAssignee(t *testing.T) {
	assigneeID := uuid.New()
	result := MatchResult{
		CompanyID:  uuid.New(),
		AssigneeID: &assigneeID,
		Score:      0.2,
		Decision:   DecisionUnmatched,
	}

	assert.Error(t, result.Validate())
}

func TestMatchResultValidate_ScoreOutOfRange(t *testing.T) {
	result := MatchResult{
		CompanyID: uuid.New(),
		Score:     1.5,
		Decision:  DecisionUnmatched,
	}

	assert.Error(t, result.Validate())
}

func TestMatchResultValidate_UnknownDecision(t *testing.T) {
	result := MatchResult{
		CompanyID: uuid.New(),
		Score:     0.5,
		Decision:  Decision("maybe"),
	}

	assert.Error(t, result.Validate())
}

func TestCompanyRecordValidate(t *testing.T) {
	record := CompanyRecord{ID: uuid.New(), RawName: "Enerbee SAS", SurvivalStatus: SurvivalActive}
	assert.NoError(t, record.Validate())

	record.SurvivalStatus = "defunct"
	assert.Error(t, record.Validate())

	record = CompanyRecord{RawName: "no id"}
	assert.Error(t, record.Validate())
}

func TestAssigneeRecordValidate(t *testing.T) {
	record := AssigneeRecord{ID: uuid.New(), RawName: "ENERBEE", PatentIDs: []string{"FR3012345"}}
	assert.NoError(t, record.Validate())
	assert.Equal(t, 1, record.PatentCount())

	record.RawName = ""
	assert.Error(t, record.Validate())
}
