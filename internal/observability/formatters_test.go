package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mbeaulieu/patent-linker/internal/portfolio"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

func TestPrintScrapeSummary(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintScrapeSummary([]types.CompanyRecord{
		{RawName: "Enerbee", Category: "Energy"},
		{RawName: "Solaire", Category: "Energy"},
		{RawName: "Aqualie", Category: "Water"},
	})

	out := buf.String()
	assert.Contains(t, out, "DIRECTORY CRAWL")
	assert.Contains(t, out, "Total companies: 3")
	assert.Contains(t, out, "Energy")
	assert.Contains(t, out, "Water")
}

func TestPrintScrapeSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScrapeSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintMatchSummary(t *testing.T) {
	company := types.CompanyRecord{ID: uuid.New(), RawName: "Enerbee"}
	other := types.CompanyRecord{ID: uuid.New(), RawName: "Solaire"}
	assignee := uuid.New()

	var buf bytes.Buffer
	printer := NewPrinter(&buf)
	printer.PrintMatchSummary([]types.MatchResult{
		{CompanyID: company.ID, AssigneeID: &assignee, Score: 1.0, Decision: types.DecisionMatched},
		{CompanyID: other.ID, Score: 0.81, Decision: types.DecisionAmbiguous},
	}, []types.CompanyRecord{company, other})

	out := buf.String()
	assert.Contains(t, out, "MATCH RESULTS")
	assert.Contains(t, out, "matched:   1 (50.0%)")
	assert.Contains(t, out, "ambiguous: 1 (50.0%)")
	assert.Contains(t, out, "Solaire (0.81)")
}

func TestPrintPortfolioSummary(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintPortfolioSummary(portfolio.Summary{
		Companies:    10,
		Matched:      4,
		Unmatched:    6,
		TotalPatents: 30,
		Buckets:      [4]int{1, 2, 1, 0},
	})

	out := buf.String()
	assert.Contains(t, out, "PATENT PORTFOLIOS")
	assert.Contains(t, out, "40.0% (4 of 10 companies)")
	assert.Contains(t, out, "2-5 patents:   2")
}

func TestPrintPortfolioSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPortfolioSummary(portfolio.Summary{})
	assert.Empty(t, buf.String())
}
