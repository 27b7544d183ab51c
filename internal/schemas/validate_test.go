package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

func TestValidateMatchResults_Valid(t *testing.T) {
	data := []byte(`{
		"run_id": "run-1",
		"results": [
			{"company_id": "c1", "assignee_id": "a1", "score": 0.95, "decision": "matched", "candidate_count": 3},
			{"company_id": "c2", "score": 0.0, "decision": "unmatched", "reason": "no assignee shares a token"}
		]
	}`)
	assert.NoError(t, ValidateMatchResults(data))
}

func TestValidateMatchResults_BadDecision(t *testing.T) {
	data := []byte(`{"results": [{"company_id": "c1", "score": 0.5, "decision": "maybe"}]}`)
	err := ValidateMatchResults(data)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Error(), "decision")
}

func TestValidateMatchResults_ScoreOutOfRange(t *testing.T) {
	data := []byte(`{"results": [{"company_id": "c1", "score": 1.5, "decision": "matched"}]}`)
	err := ValidateMatchResults(data)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestValidateMatchResults_MissingResults(t *testing.T) {
	err := ValidateMatchResults([]byte(`{"run_id": "run-1"}`))
	require.Error(t, err)
}

func TestMarshalMatchResults(t *testing.T) {
	assignee := uuid.New()
	results := []types.MatchResult{
		{CompanyID: uuid.New(), AssigneeID: &assignee, Score: 0.97, Decision: types.DecisionMatched, CandidateCount: 2},
		{CompanyID: uuid.New(), Score: 0.8, Decision: types.DecisionAmbiguous, CandidateCount: 4, Reason: "best candidate below high threshold"},
	}

	data, err := MarshalMatchResults("run-42", results)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-42"`)
	assert.NoError(t, ValidateMatchResults(data))
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": `, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "failed to load schema")
}

func TestResolveSchemaPath(t *testing.T) {
	// Tests run from internal/schemas, two levels below the repo root.
	path := ResolveSchemaPath(filepath.Join("schemas", "match_results.schema.json"))
	require.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))

	assert.Empty(t, ResolveSchemaPath(filepath.Join("schemas", "no_such.schema.json")))
}

func TestValidateJSON_File(t *testing.T) {
	schemaPath := ResolveSchemaPath(filepath.Join("schemas", "match_results.schema.json"))
	require.NotEmpty(t, schemaPath)

	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(
		`{"results": [{"company_id": "c1", "score": 0.95, "decision": "matched"}]}`), 0o644))
	assert.NoError(t, ValidateJSON(schemaPath, valid))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(
		`{"results": [{"company_id": "c1", "score": 0.95, "decision": "maybe"}]}`), 0o644))
	err := ValidateJSON(schemaPath, invalid)
	require.Error(t, err)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestValidateJSON_MissingFile(t *testing.T) {
	schemaPath := ResolveSchemaPath(filepath.Join("schemas", "match_results.schema.json"))
	require.NotEmpty(t, schemaPath)

	err := ValidateJSON(schemaPath, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON file not found")
}
