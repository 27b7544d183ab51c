package matching

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/similarity"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

func newTestMatcher(t *testing.T, assignees []types.AssigneeRecord, opts ...Option) *Matcher {
	t.Helper()
	m, err := New(assignees, normalize.New(), similarity.Combined{}, DefaultThresholds(), opts...)
	require.NoError(t, err)
	return m
}

func company(name string) types.CompanyRecord {
	return types.CompanyRecord{ID: uuid.New(), RawName: name}
}

func assignee(name string, patents ...string) types.AssigneeRecord {
	return types.AssigneeRecord{ID: uuid.New(), RawName: name, PatentIDs: patents}
}

func TestMatch_OneResultPerCompany(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{
		assignee("ENERBEE", "FR1"),
		assignee("AIR LIQUIDE SA", "FR2", "FR3"),
	})

	companies := []types.CompanyRecord{
		company("Enerbee"),
		company(""),
		company("Quantum Frogs"),
		company("Air Liquide"),
	}

	results, err := m.Match(context.Background(), companies)
	require.NoError(t, err)
	require.Len(t, results, len(companies))
	for i, r := range results {
		assert.Equal(t, companies[i].ID, r.CompanyID)
		assert.NoError(t, r.Validate())
	}
}

func TestMatch_ExactNormalizedMatch(t *testing.T) {
	target := assignee("Société Générale SAS", "FR10")
	m := newTestMatcher(t, []types.AssigneeRecord{
		target,
		assignee("TOTALENERGIES", "FR11"),
	})

	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "societe generale"})

	assert.Equal(t, types.DecisionMatched, result.Decision)
	assert.Equal(t, 1.0, result.Score)
	require.NotNil(t, result.AssigneeID)
	assert.Equal(t, target.ID, *result.AssigneeID)
}

func TestMatch_FillsCompanyNormalizedName(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{assignee("SOCIETE GENERALE", "FR1")})

	companies := []types.CompanyRecord{company("Société Générale SAS")}
	results, err := m.Match(context.Background(), companies)
	require.NoError(t, err)

	// CSV-loaded companies arrive without a normalized name; the matcher
	// fills it so result writers can include the form it scored against.
	assert.Equal(t, "societe generale", companies[0].NormalizedName)
	assert.Equal(t, types.DecisionMatched, results[0].Decision)
}

func TestMatch_EmptyNameUnmatched(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{assignee("ENERBEE", "FR1")})

	for _, raw := range []string{"", "   ", "S.A.S.", "x"} {
		result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: raw})
		assert.Equal(t, types.DecisionUnmatched, result.Decision, "raw name %q", raw)
		assert.Nil(t, result.AssigneeID)
	}
}

func TestMatch_NoSharedTokenUnmatched(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{
		assignee("ENERBEE", "FR1"),
		assignee("AIR LIQUIDE", "FR2"),
	})

	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "Quantum Frogs"})

	assert.Equal(t, types.DecisionUnmatched, result.Decision)
	assert.Equal(t, 0, result.CandidateCount)
	assert.Equal(t, "no assignee shares a token", result.Reason)
}

func TestMatch_TieBrokenByPatentCount(t *testing.T) {
	// Both assignees normalize to "greentech solaire": identical top score,
	// the one holding more patents wins.
	small := assignee("Greentech Solaire SARL", "FR1")
	large := assignee("GREENTECH SOLAIRE", "FR2", "FR3", "FR4")
	m := newTestMatcher(t, []types.AssigneeRecord{small, large})

	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "Greentech Solaire"})

	assert.Equal(t, types.DecisionMatched, result.Decision)
	require.NotNil(t, result.AssigneeID)
	assert.Equal(t, large.ID, *result.AssigneeID)
}

func TestMatch_TieWithEqualPatentCountsAmbiguous(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{
		assignee("Greentech Solaire SARL", "FR1"),
		assignee("GREENTECH SOLAIRE", "FR2"),
	})

	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "Greentech Solaire"})

	assert.Equal(t, types.DecisionAmbiguous, result.Decision)
	assert.Nil(t, result.AssigneeID)
	assert.Contains(t, result.Reason, "tie")
}

func TestMatch_BetweenThresholdsAmbiguous(t *testing.T) {
	m, err := New(
		[]types.AssigneeRecord{assignee("ENERBEE INNOVATION", "FR1")},
		normalize.New(),
		similarity.TokenSort{},
		Thresholds{High: 0.95, Low: 0.5},
	)
	require.NoError(t, err)

	// "enerbee innovations" vs "enerbee innovation": one edit, score just
	// below 0.95 under token-sort.
	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "Enerbee Innovations"})

	assert.Equal(t, types.DecisionAmbiguous, result.Decision)
	assert.Nil(t, result.AssigneeID)
	assert.Greater(t, result.Score, 0.5)
	assert.Less(t, result.Score, 0.95)
}

func TestMatch_BelowLowThresholdUnmatched(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{assignee("SOLAIRE DIRECT HOLDINGS INTERNATIONAL", "FR1")})

	// Shares the token "solaire" but the overall similarity is weak.
	result := m.MatchOne(&types.CompanyRecord{ID: uuid.New(), RawName: "Solaire Bretagne Maintenance Services"})

	assert.Equal(t, types.DecisionUnmatched, result.Decision)
	assert.Equal(t, "best candidate below low threshold", result.Reason)
	assert.Equal(t, 1, result.CandidateCount)
}

func TestMatch_Deterministic(t *testing.T) {
	assignees := []types.AssigneeRecord{
		assignee("Greentech Solaire SARL", "FR1"),
		assignee("GREENTECH SOLAIRE", "FR2"),
		assignee("ENERBEE", "FR3"),
		assignee("AIR LIQUIDE", "FR4", "FR5"),
	}
	companies := []types.CompanyRecord{
		company("Greentech Solaire"),
		company("Enerbee"),
		company("air liquide"),
		company("Nonexistent Startup"),
	}

	m := newTestMatcher(t, assignees, WithWorkers(4))

	first, err := m.Match(context.Background(), companies)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.Match(context.Background(), companies)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatch_ContextCancellation(t *testing.T) {
	m := newTestMatcher(t, []types.AssigneeRecord{assignee("ENERBEE", "FR1")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	companies := make([]types.CompanyRecord, 100)
	for i := range companies {
		companies[i] = company("Enerbee")
	}

	_, err := m.Match(ctx, companies)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{High: 1.2, Low: 0.5}.Validate())
	assert.Error(t, Thresholds{High: 0.6, Low: 0.8}.Validate())
}
