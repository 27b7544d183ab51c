package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Levenshtein{}.Score("societe generale", "societe generale"))
	assert.Equal(t, 1.0, Levenshtein{}.Score("", ""))
}

func TestLevenshtein_SingleEdit(t *testing.T) {
	// One substitution over 7 runes.
	assert.InDelta(t, 1.0-1.0/7.0, Levenshtein{}.Score("enerbee", "enerbae"), 1e-9)
}

func TestLevenshtein_Disjoint(t *testing.T) {
	score := Levenshtein{}.Score("abc", "xyz")
	assert.Equal(t, 0.0, score)
}

func TestLevenshtein_EmptyAgainstNonEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Levenshtein{}.Score("", "acme"))
}

func TestTokenSort_OrderInvariant(t *testing.T) {
	score := TokenSort{}.Score("generale societe", "societe generale")
	assert.Equal(t, 1.0, score)
}

func TestTokenSort_MinorEdit(t *testing.T) {
	reordered := TokenSort{}.Score("lab energie", "energie labs")
	plain := Levenshtein{}.Score("lab energie", "energie labs")
	assert.Greater(t, reordered, plain)
}

func TestTokenSet_SubsetScoresFull(t *testing.T) {
	// Trade name embedded in the registered name.
	assert.Equal(t, 1.0, TokenSet{}.Score("enerbee", "enerbee innovations"))
}

func TestTokenSet_NoSharedTokens(t *testing.T) {
	score := TokenSet{}.Score("alpha beta", "gamma delta")
	assert.Less(t, score, 0.5)
}

func TestTokenSet_EmptySides(t *testing.T) {
	assert.Equal(t, 1.0, TokenSet{}.Score("", ""))
	assert.Equal(t, 0.0, TokenSet{}.Score("", "acme"))
	assert.Equal(t, 0.0, TokenSet{}.Score("acme", ""))
}

func TestCombined_TakesBestMetric(t *testing.T) {
	combined := Combined{}
	a, b := "enerbee", "enerbee innovations"

	// Token-set should dominate here.
	assert.Equal(t, 1.0, combined.Score(a, b))
	assert.GreaterOrEqual(t, combined.Score(a, b), TokenSort{}.Score(a, b))
}

func TestForName(t *testing.T) {
	for _, name := range []string{"levenshtein", "token-sort", "token-set", "combined"} {
		scorer, err := ForName(name)
		require.NoError(t, err)
		assert.Equal(t, name, scorer.Name())
	}

	// Empty name falls back to the combined scorer.
	scorer, err := ForName("")
	require.NoError(t, err)
	assert.Equal(t, "combined", scorer.Name())

	_, err = ForName("soundex")
	assert.Error(t, err)
}
