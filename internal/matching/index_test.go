package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

func TestIndex_CandidatesShareToken(t *testing.T) {
	idx := NewIndex([]types.AssigneeRecord{
		assignee("AIR LIQUIDE SA"),
		assignee("LIQUIDE AZOTE SERVICES"),
		assignee("ENERBEE"),
	}, normalize.New())

	got := idx.Candidates([]string{"liquide"})
	assert.Equal(t, []int{0, 1}, got)

	got = idx.Candidates([]string{"air", "liquide"})
	assert.Equal(t, []int{0, 1}, got)

	assert.Empty(t, idx.Candidates([]string{"frogs"}))
}

func TestIndex_SkipsImplausiblyShortNames(t *testing.T) {
	idx := NewIndex([]types.AssigneeRecord{
		assignee("X"),
		assignee("S.A."), // normalizes to empty
		assignee("ENERBEE"),
	}, normalize.New())

	assert.Empty(t, idx.Candidates([]string{"x"}))
	assert.Equal(t, []int{2}, idx.Candidates([]string{"enerbee"}))
}

func TestIndex_FillsNormalizedNames(t *testing.T) {
	idx := NewIndex([]types.AssigneeRecord{assignee("Société Générale SAS")}, normalize.New())

	assert.Equal(t, "societe generale", idx.Assignee(0).NormalizedName)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_LeavesInputUnmodified(t *testing.T) {
	input := []types.AssigneeRecord{assignee("Société Générale SAS")}

	idx := NewIndex(input, normalize.New())

	assert.Equal(t, "societe generale", idx.Assignee(0).NormalizedName)
	assert.Empty(t, input[0].NormalizedName)
}
