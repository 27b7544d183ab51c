// Package portfolio builds per-company patent portfolios from accepted match
// results and assembles the survival observations exported downstream.
package portfolio

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

// Build attributes each matched company its assignee's patent set. Ambiguous
// and unmatched companies yield no portfolio; they still appear in the
// exported dataset with a zero patent position.
func Build(results []types.MatchResult, assignees []types.AssigneeRecord) ([]types.Portfolio, error) {
	byID := make(map[uuid.UUID]*types.AssigneeRecord, len(assignees))
	for i := range assignees {
		byID[assignees[i].ID] = &assignees[i]
	}

	var portfolios []types.Portfolio
	for _, result := range results {
		if result.Decision != types.DecisionMatched {
			continue
		}
		if result.AssigneeID == nil {
			return nil, fmt.Errorf("matched result for company %s has no assignee", result.CompanyID)
		}
		assignee, ok := byID[*result.AssigneeID]
		if !ok {
			return nil, fmt.Errorf("matched result for company %s references unknown assignee %s", result.CompanyID, *result.AssigneeID)
		}
		patents := make([]string, len(assignee.PatentIDs))
		copy(patents, assignee.PatentIDs)
		portfolios = append(portfolios, types.Portfolio{
			CompanyID:   result.CompanyID,
			AssigneeID:  assignee.ID,
			PatentIDs:   patents,
			PatentCount: len(patents),
		})
	}
	return portfolios, nil
}

// Observations joins companies, their match results, and portfolios into the
// survival dataset rows. One observation per company, in company order.
func Observations(companies []types.CompanyRecord, results []types.MatchResult, portfolios []types.Portfolio) ([]types.SurvivalObservation, error) {
	if len(results) != len(companies) {
		return nil, fmt.Errorf("result count %d does not match company count %d", len(results), len(companies))
	}

	byCompany := make(map[uuid.UUID]*types.Portfolio, len(portfolios))
	for i := range portfolios {
		byCompany[portfolios[i].CompanyID] = &portfolios[i]
	}

	observations := make([]types.SurvivalObservation, 0, len(companies))
	for i := range companies {
		company := &companies[i]
		result := results[i]
		if result.CompanyID != company.ID {
			return nil, fmt.Errorf("result %d is for company %s, expected %s", i, result.CompanyID, company.ID)
		}

		obs := types.SurvivalObservation{
			CompanyID:      company.ID,
			CompanyName:    company.RawName,
			Category:       company.Category,
			Decision:       result.Decision,
			MatchScore:     result.Score,
			SurvivalStatus: company.SurvivalStatus,
		}
		if p, ok := byCompany[company.ID]; ok {
			obs.HasPatents = p.PatentCount > 0
			obs.PatentCount = p.PatentCount
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// Summary aggregates portfolio statistics for reporting.
type Summary struct {
	Companies    int
	Matched      int
	Ambiguous    int
	Unmatched    int
	TotalPatents int
	// Buckets counts matched companies by portfolio size: 1, 2-5, 6-20, >20.
	Buckets [4]int
}

// Summarize computes decision counts and portfolio-size buckets.
func Summarize(results []types.MatchResult, portfolios []types.Portfolio) Summary {
	s := Summary{Companies: len(results)}
	for _, r := range results {
		switch r.Decision {
		case types.DecisionMatched:
			s.Matched++
		case types.DecisionAmbiguous:
			s.Ambiguous++
		case types.DecisionUnmatched:
			s.Unmatched++
		}
	}
	for _, p := range portfolios {
		s.TotalPatents += p.PatentCount
		switch {
		case p.PatentCount <= 1:
			s.Buckets[0]++
		case p.PatentCount <= 5:
			s.Buckets[1]++
		case p.PatentCount <= 20:
			s.Buckets[2]++
		default:
			s.Buckets[3]++
		}
	}
	return s
}

// MatchRate returns the fraction of companies with an accepted match.
func (s Summary) MatchRate() float64 {
	if s.Companies == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Companies)
}
