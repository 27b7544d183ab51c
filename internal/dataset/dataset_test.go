package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

func TestReadCompanies(t *testing.T) {
	csvData := `startup_name,tagline,category,list_page,survival_status
Enerbee,Energy harvesting,Energy generation,1,active
Greentech Solaire,,Solar,2,closed
,missing name,Solar,2,
`
	companies, report, err := readCompanies(strings.NewReader(csvData), DefaultCompanyNameColumn)
	require.NoError(t, err)

	require.Len(t, companies, 3)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 3, report.Loaded)
	assert.Equal(t, 0, report.Skipped)

	assert.Equal(t, "Enerbee", companies[0].RawName)
	assert.Equal(t, "Energy harvesting", companies[0].Tagline)
	assert.Equal(t, 1, companies[0].ListPage)
	assert.Equal(t, types.SurvivalActive, companies[0].SurvivalStatus)
	assert.Equal(t, types.SurvivalClosed, companies[1].SurvivalStatus)

	// Empty names are loaded (unmatched downstream) and warned about.
	assert.Equal(t, "", companies[2].RawName)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[len(report.Warnings)-1], "empty company name")
}

func TestReadCompanies_UnknownSurvivalStatusCleared(t *testing.T) {
	csvData := "startup_name,survival_status\nEnerbee,liquidated\n"
	companies, report, err := readCompanies(strings.NewReader(csvData), DefaultCompanyNameColumn)
	require.NoError(t, err)

	// The row loads with the label blanked instead of being dropped.
	require.Len(t, companies, 1)
	assert.Equal(t, "Enerbee", companies[0].RawName)
	assert.Equal(t, types.SurvivalUnknown, companies[0].SurvivalStatus)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], `unknown survival status "liquidated"`)
}

func TestReadCompanies_CustomNameColumn(t *testing.T) {
	csvData := "nom,tagline\nAcme,builds things\n"
	companies, _, err := readCompanies(strings.NewReader(csvData), "nom")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].RawName)
}

func TestReadCompanies_MissingColumn(t *testing.T) {
	csvData := "name\nAcme\n"
	_, _, err := readCompanies(strings.NewReader(csvData), DefaultCompanyNameColumn)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "startup_name")
}

func TestReadAssignees_AggregatesPatents(t *testing.T) {
	csvData := `company_name,patent_id
ENERBEE,FR3012345
ENERBEE,FR3067890
ENERBEE,FR3012345
AIR LIQUIDE,EP1234567
,FR0000001
`
	assignees, report, err := readAssignees(strings.NewReader(csvData), DefaultAssigneeNameColumn, DefaultPatentIDColumn)
	require.NoError(t, err)

	require.Len(t, assignees, 2)
	assert.Equal(t, "ENERBEE", assignees[0].RawName)
	// Duplicate patent row collapses.
	assert.Equal(t, []string{"FR3012345", "FR3067890"}, assignees[0].PatentIDs)
	assert.Equal(t, "AIR LIQUIDE", assignees[1].RawName)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "empty assignee name")
}

func TestWriteMatchResults_RoundTripShape(t *testing.T) {
	companyID := uuid.New()
	assigneeID := uuid.New()
	companies := []types.CompanyRecord{{ID: companyID, RawName: "Enerbee", NormalizedName: "enerbee"}}
	assignees := []types.AssigneeRecord{{ID: assigneeID, RawName: "ENERBEE", PatentIDs: []string{"FR1", "FR2"}}}
	results := []types.MatchResult{{
		CompanyID:      companyID,
		AssigneeID:     &assigneeID,
		Score:          1.0,
		Decision:       types.DecisionMatched,
		CandidateCount: 1,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeMatchResults(&buf, companies, assignees, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "company_id,company_name")
	assert.Contains(t, lines[1], "matched")
	assert.Contains(t, lines[1], "1.0000")
	assert.Contains(t, lines[1], "ENERBEE")
	assert.Contains(t, lines[1], ",2,") // patent count
}

func TestWriteMatchResults_CountMismatch(t *testing.T) {
	err := WriteMatchResults(t.TempDir()+"/out.csv",
		[]types.CompanyRecord{{ID: uuid.New()}},
		nil,
		nil,
	)
	assert.Error(t, err)
}

func TestWriteObservations(t *testing.T) {
	obs := []types.SurvivalObservation{
		{
			CompanyID:      uuid.New(),
			CompanyName:    "Enerbee",
			Category:       "Energy generation",
			Decision:       types.DecisionMatched,
			MatchScore:     0.97,
			HasPatents:     true,
			PatentCount:    4,
			SurvivalStatus: types.SurvivalActive,
		},
		{
			CompanyID:   uuid.New(),
			CompanyName: "Quantum Frogs",
			Decision:    types.DecisionUnmatched,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeObservations(&buf, obs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "0.9700,true,4,active")
	assert.Contains(t, lines[2], "unmatched")
	assert.Contains(t, lines[2], "false,0")
}

func TestWriteAndReloadCompanies(t *testing.T) {
	path := t.TempDir() + "/companies.csv"
	companies := []types.CompanyRecord{
		{ID: uuid.New(), RawName: "Enerbee", Tagline: "harvesting", Category: "Energy", ListPage: 1, SurvivalStatus: types.SurvivalActive},
	}

	require.NoError(t, WriteCompanies(path, companies))

	reloaded, report, err := LoadCompanies(path, CompanyCSVOptions{})
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, "Enerbee", reloaded[0].RawName)
	assert.Equal(t, 1, reloaded[0].ListPage)
	assert.Equal(t, types.SurvivalActive, reloaded[0].SurvivalStatus)
}
