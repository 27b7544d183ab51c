// Package similarity provides string-similarity scoring for normalized
// company names. The matcher depends only on the Scorer interface, so the
// metric can be swapped without touching decision logic.
package similarity

import "fmt"

// Scorer computes a similarity score in [0,1] between two normalized names.
// 1.0 means identical, 0.0 means no similarity. Implementations must be
// deterministic and safe for concurrent use.
type Scorer interface {
	Score(a, b string) float64
	Name() string
}

// ForName returns the scorer registered under the given name. Known names:
// "levenshtein", "token-sort", "token-set", "combined".
func ForName(name string) (Scorer, error) {
	switch name {
	case "levenshtein":
		return Levenshtein{}, nil
	case "token-sort":
		return TokenSort{}, nil
	case "token-set":
		return TokenSet{}, nil
	case "combined", "":
		return Combined{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity scorer %q", name)
	}
}

// Combined scores with both the token-sort and token-set metrics and keeps
// the higher one. Token-sort tolerates reordering with minor edits; token-set
// additionally tolerates extra tokens on one side (trade names embedded in
// longer registered names).
type Combined struct{}

// Name implements Scorer.
func (Combined) Name() string { return "combined" }

// Score implements Scorer.
func (Combined) Score(a, b string) float64 {
	sortScore := TokenSort{}.Score(a, b)
	setScore := TokenSet{}.Score(a, b)
	return max(sortScore, setScore)
}
