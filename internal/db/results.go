package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

// SaveMatchResults stores one row per match result for a run, joined with
// names so the table is queryable on its own.
func (db *DB) SaveMatchResults(ctx context.Context, runID uuid.UUID, companies []types.CompanyRecord, assignees []types.AssigneeRecord, results []types.MatchResult) error {
	if len(results) != len(companies) {
		return fmt.Errorf("result count %d does not match company count %d", len(results), len(companies))
	}

	names := make(map[uuid.UUID]string, len(assignees))
	for i := range assignees {
		names[assignees[i].ID] = assignees[i].RawName
	}

	for i, result := range results {
		var assigneeID *uuid.UUID
		var assigneeName *string
		if result.AssigneeID != nil {
			assigneeID = result.AssigneeID
			if name, ok := names[*result.AssigneeID]; ok {
				assigneeName = &name
			}
		}
		_, err := db.pool.Exec(ctx,
			`INSERT INTO match_results
			   (run_id, company_id, company_name, assignee_id, assignee_name, score, decision, candidate_count, reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (run_id, company_id) DO UPDATE SET
			   assignee_id = $4, assignee_name = $5, score = $6,
			   decision = $7, candidate_count = $8, reason = $9`,
			runID, result.CompanyID, companies[i].RawName,
			assigneeID, assigneeName, result.Score,
			string(result.Decision), result.CandidateCount, result.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to save match result for company %s: %w", result.CompanyID, err)
		}
	}
	return nil
}

// CountDecisions returns the per-decision result counts for a run.
func (db *DB) CountDecisions(ctx context.Context, runID uuid.UUID) (map[types.Decision]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT decision, COUNT(*) FROM match_results WHERE run_id = $1 GROUP BY decision`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Decision]int)
	for rows.Next() {
		var decision string
		var count int
		if err := rows.Scan(&decision, &count); err != nil {
			return nil, fmt.Errorf("failed to scan decision count: %w", err)
		}
		counts[types.Decision(decision)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decision counts: %w", err)
	}
	return counts, nil
}
