// Package normalize turns raw company and assignee names into a canonical
// form so that names sourced from the directory and from the patent extract
// become comparable: case-folded, diacritics stripped, legal-entity suffixes
// removed, punctuation and whitespace collapsed.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLegalSuffixes lists the legal-form tokens dropped during
// normalization. Covers French forms plus the foreign forms that show up in
// assignee extracts.
var DefaultLegalSuffixes = []string{
	"sas", "sasu", "sarl", "sa", "snc", "eurl", "gie",
	"ltd", "limited", "inc", "corp", "corporation",
	"bv", "gmbh", "spa", "srl",
}

// foldDiacritics decomposes to NFKD, drops combining marks, and recomposes,
// so "Société" and "Societe" fold to the same bytes.
var foldDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizer applies the normalization pipeline with a configurable
// legal-suffix set. The zero value is not usable; construct with New.
type Normalizer struct {
	suffixes map[string]struct{}
	// mergeSingles joins a single-letter token with a following short token,
	// recovering names the directory renders with spaced initials
	// ("S Tile" -> "stile").
	mergeSingles bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLegalSuffixes replaces the default legal-suffix set.
func WithLegalSuffixes(suffixes []string) Option {
	return func(n *Normalizer) {
		n.suffixes = make(map[string]struct{}, len(suffixes))
		for _, s := range suffixes {
			n.suffixes[strings.ToLower(s)] = struct{}{}
		}
	}
}

// WithSingleLetterMerge enables merging of single-letter tokens into the
// following token when that token is short (at most 4 characters).
func WithSingleLetterMerge() Option {
	return func(n *Normalizer) { n.mergeSingles = true }
}

// New creates a Normalizer with the default legal-suffix set.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	WithLegalSuffixes(DefaultLegalSuffixes)(n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name normalizes a raw name. The pipeline:
//  1. lower-case
//  2. strip diacritics (NFKD, drop combining marks)
//  3. replace non-alphanumeric runes with spaces
//  4. collapse whitespace
//  5. drop legal-form tokens
//  6. optionally merge single-letter tokens
//
// Returns "" for names that normalize to nothing (empty, punctuation-only,
// or legal-form-only input).
func (n *Normalizer) Name(raw string) string {
	return strings.Join(n.Tokens(raw), " ")
}

// Tokens returns the normalized name as its token list, in order.
func (n *Normalizer) Tokens(raw string) []string {
	folded, _, err := transform.String(foldDiacritics, strings.ToLower(raw))
	if err != nil {
		// Fold failure leaves diacritics in place; matching degrades but
		// the record is still emitted.
		folded = strings.ToLower(raw)
	}

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	fields := strings.Fields(sb.String())
	tokens := fields[:0]
	for _, tok := range fields {
		if _, drop := n.suffixes[tok]; !drop {
			tokens = append(tokens, tok)
		}
	}

	if n.mergeSingles {
		tokens = mergeSingleLetterTokens(tokens)
	}
	return tokens
}

// mergeSingleLetterTokens joins a single-letter token with the next token
// when the next token has at most 4 characters.
func mergeSingleLetterTokens(tokens []string) []string {
	merged := tokens[:0]
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && len(tokens[i]) == 1 && len(tokens[i+1]) <= 4 {
			merged = append(merged, tokens[i]+tokens[i+1])
			i++
			continue
		}
		merged = append(merged, tokens[i])
	}
	return merged
}

// TokenSet returns the normalized tokens as a set, for shared-token checks.
func (n *Normalizer) TokenSet(raw string) map[string]struct{} {
	tokens := n.Tokens(raw)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
