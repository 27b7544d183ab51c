// Package matching links scraped company records to patent assignees. The
// matcher produces exactly one MatchResult per input company: matched when a
// candidate is uniquely best above the high threshold, ambiguous when a
// plausible match exists but cannot be accepted automatically, unmatched
// otherwise. Anomalies (empty names, no shared tokens) become unmatched
// results rather than errors so a run always covers every company.
package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/similarity"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

// Thresholds holds the acceptance cutoffs for the decision policy. Both are
// scores in [0,1]; Low must not exceed High.
type Thresholds struct {
	// High is the minimum score for automatic acceptance.
	High float64
	// Low is the minimum score for flagging a candidate as ambiguous
	// (manual review); below it the company is unmatched.
	Low float64
}

// DefaultThresholds mirrors the historical cutoff of 90/100 for acceptance,
// with review flagging from 0.75.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.90, Low: 0.75}
}

// Validate checks threshold consistency.
func (t Thresholds) Validate() error {
	if t.High < 0 || t.High > 1 || t.Low < 0 || t.Low > 1 {
		return fmt.Errorf("thresholds must be in [0,1], got high=%f low=%f", t.High, t.Low)
	}
	if t.Low > t.High {
		return fmt.Errorf("low threshold %f exceeds high threshold %f", t.Low, t.High)
	}
	return nil
}

// Matcher links companies to assignees. Construct with New; safe for
// concurrent use once built.
type Matcher struct {
	index      *Index
	norm       *normalize.Normalizer
	scorer     similarity.Scorer
	thresholds Thresholds
	workers    int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWorkers sets the number of goroutines scoring companies in parallel.
// Zero or negative selects GOMAXPROCS. Results are returned in input order
// regardless of worker count.
func WithWorkers(n int) Option {
	return func(m *Matcher) { m.workers = n }
}

// New builds a matcher over the given assignee set.
func New(assignees []types.AssigneeRecord, norm *normalize.Normalizer, scorer similarity.Scorer, thresholds Thresholds, opts ...Option) (*Matcher, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	m := &Matcher{
		index:      NewIndex(assignees, norm),
		norm:       norm,
		scorer:     scorer,
		thresholds: thresholds,
		workers:    1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers <= 0 {
		m.workers = runtime.GOMAXPROCS(0)
	}
	return m, nil
}

// Match produces one result per company, in input order. Companies loaded
// without a NormalizedName get the field filled in place, so downstream
// writers see the name the scores were computed against. The only error
// condition is context cancellation; data anomalies are encoded in the
// results themselves.
func (m *Matcher) Match(ctx context.Context, companies []types.CompanyRecord) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(companies))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i := range companies {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = m.MatchOne(&companies[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// candidate pairs an assignee with its similarity score.
type candidate struct {
	idx   int
	score float64
}

// MatchOne scores a single company against the assignee index and applies
// the decision policy. A missing NormalizedName is computed and filled on
// the record.
func (m *Matcher) MatchOne(company *types.CompanyRecord) types.MatchResult {
	name := company.NormalizedName
	if name == "" {
		name = m.norm.Name(company.RawName)
		company.NormalizedName = name
	}

	if len(name) < minNameLength {
		return types.MatchResult{
			CompanyID: company.ID,
			Decision:  types.DecisionUnmatched,
			Reason:    "empty or implausibly short name",
		}
	}

	indices := m.index.Candidates(normTokens(name))
	if len(indices) == 0 {
		return types.MatchResult{
			CompanyID: company.ID,
			Decision:  types.DecisionUnmatched,
			Reason:    "no assignee shares a token",
		}
	}

	candidates := make([]candidate, 0, len(indices))
	for _, idx := range indices {
		score := m.scorer.Score(name, m.index.Assignee(idx).NormalizedName)
		candidates = append(candidates, candidate{idx: idx, score: score})
	}
	m.sortCandidates(candidates)

	return m.decide(company, candidates)
}

// sortCandidates orders candidates by score, then patent count, then
// normalized name, then ID. The full ordering keeps runs deterministic.
func (m *Matcher) sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		aRec, bRec := m.index.Assignee(a.idx), m.index.Assignee(b.idx)
		if aRec.PatentCount() != bRec.PatentCount() {
			return aRec.PatentCount() > bRec.PatentCount()
		}
		if aRec.NormalizedName != bRec.NormalizedName {
			return aRec.NormalizedName < bRec.NormalizedName
		}
		return aRec.ID.String() < bRec.ID.String()
	})
}

// decide applies the threshold policy to sorted candidates.
func (m *Matcher) decide(company *types.CompanyRecord, candidates []candidate) types.MatchResult {
	best := candidates[0]
	result := types.MatchResult{
		CompanyID:      company.ID,
		Score:          best.score,
		CandidateCount: len(candidates),
	}

	if best.score < m.thresholds.Low {
		result.Decision = types.DecisionUnmatched
		result.Reason = "best candidate below low threshold"
		return result
	}

	if best.score < m.thresholds.High {
		result.Decision = types.DecisionAmbiguous
		result.Reason = "best candidate below high threshold"
		return result
	}

	// Top-score group: ties are broken by patent count; an unresolved tie is
	// surfaced for manual review, never silently resolved.
	tied := 1
	for tied < len(candidates) && candidates[tied].score == best.score {
		tied++
	}
	if tied > 1 {
		bestCount := m.index.Assignee(best.idx).PatentCount()
		runnerCount := m.index.Assignee(candidates[1].idx).PatentCount()
		if bestCount == runnerCount {
			result.Decision = types.DecisionAmbiguous
			result.Reason = fmt.Sprintf("top-score tie between %d assignees", tied)
			return result
		}
	}

	id := m.index.Assignee(best.idx).ID
	result.AssigneeID = &id
	result.Decision = types.DecisionMatched
	return result
}
