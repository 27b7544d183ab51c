package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

const companiesCSV = `startup_name,tagline,category,survival_status
Enerbee,Energy harvesting,Energy,active
Société Solaire SAS,Solar panels,Energy,closed
Aqualie,Water treatment,Water,active
`

const assigneesCSV = `company_name,patent_id
ENERBEE,EP1000001
ENERBEE,EP1000002
SOLAIRE WINDPOWER HOLDING,EP2000001
`

func writeInputs(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	companies := filepath.Join(dir, "companies.csv")
	assignees := filepath.Join(dir, "assignees.csv")
	require.NoError(t, os.WriteFile(companies, []byte(companiesCSV), 0o644))
	require.NoError(t, os.WriteFile(assignees, []byte(assigneesCSV), 0o644))
	return companies, assignees, dir
}

func TestRunPipeline(t *testing.T) {
	companies, assignees, dir := writeInputs(t)

	var events []ProgressEvent
	result, err := RunPipeline(context.Background(), RunOptions{
		CompaniesPath: companies,
		AssigneesPath: assignees,
		OutputDir:     dir,
		Label:         "test run",
		OnProgress:    func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, result.MatchResults, 3)
	assert.Equal(t, types.DecisionMatched, result.MatchResults[0].Decision, "Enerbee matches exactly after normalization")
	assert.Equal(t, types.DecisionUnmatched, result.MatchResults[2].Decision, "Aqualie shares no token with any assignee")

	require.Len(t, result.Portfolios, 1)
	assert.Equal(t, 2, result.Portfolios[0].PatentCount)
	assert.Len(t, result.Observations, 3)
	assert.Equal(t, 1, result.Summary.Matched)

	for _, name := range []string{"match_results.csv", "survival_dataset.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected output file %s", name)
	}

	// Companies loaded from CSV carry no normalized name; the written results
	// must still include the form the scores were computed against.
	written, err := os.ReadFile(filepath.Join(dir, "match_results.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "societe solaire")
	assert.Contains(t, string(written), ",enerbee,")

	require.NotEmpty(t, events)
	assert.Equal(t, "companies", events[0].Step)
}

func TestRunPipeline_MissingCompaniesFile(t *testing.T) {
	_, assignees, dir := writeInputs(t)

	_, err := RunPipeline(context.Background(), RunOptions{
		CompaniesPath: filepath.Join(dir, "nope.csv"),
		AssigneesPath: assignees,
		OutputDir:     dir,
	})
	assert.ErrorContains(t, err, "loading companies failed")
}

func TestRunPipeline_UnknownScorer(t *testing.T) {
	companies, assignees, dir := writeInputs(t)

	_, err := RunPipeline(context.Background(), RunOptions{
		CompaniesPath: companies,
		AssigneesPath: assignees,
		OutputDir:     dir,
		Scorer:        "soundex",
	})
	assert.ErrorContains(t, err, "matching failed")
}
