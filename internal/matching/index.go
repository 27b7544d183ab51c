package matching

import (
	"slices"
	"sort"
	"strings"

	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

// minNameLength is the plausibility floor: normalized names shorter than this
// are too generic to match against anything.
const minNameLength = 2

// Index is a token inverted index over assignee records. Restricting
// candidates to assignees sharing at least one normalized token keeps the
// scoring step tractable on large extracts.
type Index struct {
	assignees []types.AssigneeRecord
	postings  map[string][]int
}

// NewIndex builds the index. Assignees whose normalized name is empty or
// shorter than the plausibility floor are excluded from candidate lookups.
// The index works on its own copy of the slice; the caller's records are
// never modified.
func NewIndex(assignees []types.AssigneeRecord, norm *normalize.Normalizer) *Index {
	idx := &Index{
		assignees: slices.Clone(assignees),
		postings:  make(map[string][]int),
	}
	for i := range idx.assignees {
		name := idx.assignees[i].NormalizedName
		if name == "" {
			name = norm.Name(idx.assignees[i].RawName)
			idx.assignees[i].NormalizedName = name
		}
		if len(name) < minNameLength {
			continue
		}
		seen := make(map[string]struct{})
		for _, tok := range normTokens(name) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			idx.postings[tok] = append(idx.postings[tok], i)
		}
	}
	return idx
}

// Candidates returns the indices of assignees sharing at least one token with
// the given normalized tokens, in ascending index order for determinism.
func (idx *Index) Candidates(tokens []string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, tok := range tokens {
		for _, i := range idx.postings[tok] {
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Assignee returns the record at the given index.
func (idx *Index) Assignee(i int) *types.AssigneeRecord {
	return &idx.assignees[i]
}

// Len returns the number of indexed assignee records.
func (idx *Index) Len() int {
	return len(idx.assignees)
}

// normTokens splits an already-normalized name into its tokens.
func normTokens(name string) []string {
	return strings.Fields(name)
}
