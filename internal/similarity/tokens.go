package similarity

import (
	"sort"
	"strings"
)

// TokenSort scores by sorting each name's tokens alphabetically before
// computing the normalized edit distance, making the metric invariant to
// word order ("generale societe" vs "societe generale").
type TokenSort struct{}

// Name implements Scorer.
func (TokenSort) Name() string { return "token-sort" }

// Score implements Scorer.
func (TokenSort) Score(a, b string) float64 {
	return Levenshtein{}.Score(sortTokens(a), sortTokens(b))
}

// TokenSet scores by splitting both names into token sets and comparing the
// shared-token core against each side's remainder. A name fully contained in
// the other (plus the shared core) scores 1.0, which tolerates registered
// names that embed the trade name ("enerbee" vs "enerbee innovations").
type TokenSet struct{}

// Name implements Scorer.
func (TokenSet) Name() string { return "token-set" }

// Score implements Scorer.
func (TokenSet) Score(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		if len(tokensA) == 0 && len(tokensB) == 0 {
			return 1.0
		}
		return 0.0
	}

	setA := toSet(tokensA)
	setB := toSet(tokensB)

	var shared, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(shared, " ")
	fullA := joinNonEmpty(core, strings.Join(onlyA, " "))
	fullB := joinNonEmpty(core, strings.Join(onlyB, " "))

	lev := Levenshtein{}
	score := lev.Score(fullA, fullB)
	if core != "" {
		score = max(score, lev.Score(core, fullA), lev.Score(core, fullB))
	}
	return score
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
