package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

// WriteMatchResults writes one CSV row per match result, joined with company
// and assignee names so the file is reviewable without further lookups.
// Results are written in input order.
func WriteMatchResults(path string, companies []types.CompanyRecord, assignees []types.AssigneeRecord, results []types.MatchResult) error {
	if len(results) != len(companies) {
		return fmt.Errorf("result count %d does not match company count %d", len(results), len(companies))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create match results CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeMatchResults(f, companies, assignees, results); err != nil {
		return err
	}
	return f.Close()
}

func writeMatchResults(w io.Writer, companies []types.CompanyRecord, assignees []types.AssigneeRecord, results []types.MatchResult) error {
	byID := make(map[uuid.UUID]*types.AssigneeRecord, len(assignees))
	for i := range assignees {
		byID[assignees[i].ID] = &assignees[i]
	}

	writer := csv.NewWriter(w)
	header := []string{
		"company_id", "company_name", "normalized_name",
		"decision", "score", "candidate_count",
		"assignee_id", "assignee_name", "patent_count", "reason",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write match results header: %w", err)
	}

	for i, result := range results {
		company := companies[i]
		row := []string{
			company.ID.String(),
			company.RawName,
			company.NormalizedName,
			string(result.Decision),
			formatScore(result.Score),
			strconv.Itoa(result.CandidateCount),
			"", "", "0",
			result.Reason,
		}
		if result.AssigneeID != nil {
			row[6] = result.AssigneeID.String()
			if assignee, ok := byID[*result.AssigneeID]; ok {
				row[7] = assignee.RawName
				row[8] = strconv.Itoa(assignee.PatentCount())
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write match result row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush match results CSV: %w", err)
	}
	return nil
}

// WriteObservations writes the survival dataset: one row per company with
// its linkage outcome, patent position, and survival label. This is the
// artifact handed to the econometric modeling step.
func WriteObservations(path string, observations []types.SurvivalObservation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeObservations(f, observations); err != nil {
		return err
	}
	return f.Close()
}

func writeObservations(w io.Writer, observations []types.SurvivalObservation) error {
	writer := csv.NewWriter(w)
	header := []string{
		"company_id", "company_name", "category",
		"decision", "match_score", "has_patents", "patent_count",
		"survival_status",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}

	for _, obs := range observations {
		row := []string{
			obs.CompanyID.String(),
			obs.CompanyName,
			obs.Category,
			string(obs.Decision),
			formatScore(obs.MatchScore),
			strconv.FormatBool(obs.HasPatents),
			strconv.Itoa(obs.PatentCount),
			obs.SurvivalStatus,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset CSV: %w", err)
	}
	return nil
}

// WriteCompanies persists scraped companies so a scrape and a match can run
// as separate commands.
func WriteCompanies(path string, companies []types.CompanyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create companies CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	header := []string{"startup_name", "tagline", "detail_url", "category", "list_page", "survival_status"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write companies header: %w", err)
	}
	for _, c := range companies {
		row := []string{c.RawName, c.Tagline, c.DetailURL, c.Category, strconv.Itoa(c.ListPage), c.SurvivalStatus}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write company row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush companies CSV: %w", err)
	}
	return f.Close()
}

// formatScore renders scores with stable precision so re-runs produce
// byte-identical files.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
