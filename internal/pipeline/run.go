// Package pipeline provides the high-level orchestration for the linkage process.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/dataset"
	"github.com/mbeaulieu/patent-linker/internal/db"
	"github.com/mbeaulieu/patent-linker/internal/matching"
	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/observability"
	"github.com/mbeaulieu/patent-linker/internal/portfolio"
	"github.com/mbeaulieu/patent-linker/internal/schemas"
	"github.com/mbeaulieu/patent-linker/internal/similarity"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	CompaniesPath  string
	AssigneesPath  string
	OutputDir      string
	CompanyColumn  string
	AssigneeColumn string
	PatentIDColumn string
	Scorer         string
	Thresholds     matching.Thresholds
	LegalSuffixes  []string
	Workers        int
	Verbose        bool
	DatabaseURL    string
	Label          string
	OnProgress     ProgressCallback
}

// Result holds the outputs of a full pipeline run for callers that want more
// than the files on disk.
type Result struct {
	RunID        uuid.UUID
	Companies    []types.CompanyRecord
	Assignees    []types.AssigneeRecord
	MatchResults []types.MatchResult
	Portfolios   []types.Portfolio
	Observations []types.SurvivalObservation
	Summary      portfolio.Summary
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// RunPipeline orchestrates the full linkage pipeline: load both extracts,
// match companies against assignees, build portfolios, and export the
// survival dataset.
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("database migration failed: %w", err)
			}
			runID, err = database.CreateRun(ctx, opts.Label)
			if err != nil {
				fmt.Printf("Warning: Failed to create database run: %v\n", err)
			} else if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
			}
		}
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Step 1: Load company records
	fmt.Printf("Step 1/6: Loading companies from %s...\n", opts.CompaniesPath)
	companies, companyReport, err := dataset.LoadCompanies(opts.CompaniesPath, dataset.CompanyCSVOptions{
		NameColumn: opts.CompanyColumn,
	})
	if err != nil {
		return nil, fmt.Errorf("loading companies failed: %w", err)
	}
	reportLoad(companyReport, "companies", opts.Verbose)
	emitProgress(&opts, db.StepCompanies, db.CategoryScraping,
		fmt.Sprintf("Loaded %d companies", len(companies)), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepCompanies, db.CategoryScraping, companies)
	}

	// Step 2: Load patent assignees
	fmt.Printf("Step 2/6: Loading patent assignees from %s...\n", opts.AssigneesPath)
	assignees, assigneeReport, err := dataset.LoadAssignees(opts.AssigneesPath, dataset.AssigneeCSVOptions{
		NameColumn:     opts.AssigneeColumn,
		PatentIDColumn: opts.PatentIDColumn,
	})
	if err != nil {
		return nil, fmt.Errorf("loading assignees failed: %w", err)
	}
	reportLoad(assigneeReport, "assignee rows", opts.Verbose)
	emitProgress(&opts, db.StepAssignees, db.CategoryMatching,
		fmt.Sprintf("Loaded %d distinct assignees", len(assignees)), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepAssignees, db.CategoryMatching, assignees)
	}

	// Step 3: Match companies against assignees
	fmt.Printf("Step 3/6: Matching %d companies against %d assignees...\n", len(companies), len(assignees))
	results, err := runMatching(ctx, &opts, companies, assignees)
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintMatchSummary(results, companies)
	}
	emitProgress(&opts, db.StepMatchResults, db.CategoryMatching,
		fmt.Sprintf("Matched %d companies", len(results)), nil)
	if database != nil && runID != uuid.Nil {
		artifact, err := schemas.MarshalMatchResults(runID.String(), results)
		if err != nil {
			return nil, fmt.Errorf("match results failed schema validation: %w", err)
		}
		_ = database.SaveArtifact(ctx, runID, db.StepMatchResults, db.CategoryMatching, json.RawMessage(artifact))
		if err := database.SaveMatchResults(ctx, runID, companies, assignees, results); err != nil {
			fmt.Printf("Warning: Failed to persist match results: %v\n", err)
		}
	}

	// Step 4: Build patent portfolios for accepted matches
	fmt.Printf("Step 4/6: Building patent portfolios...\n")
	portfolios, err := portfolio.Build(results, assignees)
	if err != nil {
		return nil, fmt.Errorf("building portfolios failed: %w", err)
	}
	summary := portfolio.Summarize(results, portfolios)
	if opts.Verbose {
		printer.PrintPortfolioSummary(summary)
	}
	emitProgress(&opts, db.StepPortfolios, db.CategoryPortfolio,
		fmt.Sprintf("Built %d portfolios holding %d patents", len(portfolios), summary.TotalPatents), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepPortfolios, db.CategoryPortfolio, portfolios)
	}

	// Step 5: Write reviewable match results
	matchPath := filepath.Join(outputDir, "match_results.csv")
	fmt.Printf("Step 5/6: Writing match results to %s...\n", matchPath)
	if err := dataset.WriteMatchResults(matchPath, companies, assignees, results); err != nil {
		return nil, fmt.Errorf("writing match results failed: %w", err)
	}

	// Step 6: Export the survival dataset
	datasetPath := filepath.Join(outputDir, "survival_dataset.csv")
	fmt.Printf("Step 6/6: Exporting survival dataset to %s...\n", datasetPath)
	observations, err := portfolio.Observations(companies, results, portfolios)
	if err != nil {
		return nil, fmt.Errorf("assembling observations failed: %w", err)
	}
	if err := dataset.WriteObservations(datasetPath, observations); err != nil {
		return nil, fmt.Errorf("writing dataset failed: %w", err)
	}
	emitProgress(&opts, db.StepDataset, db.CategoryExport,
		fmt.Sprintf("Exported %d observations", len(observations)), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepDataset, db.CategoryExport, observations)
		_ = database.CompleteRun(ctx, runID, db.RunStatusCompleted)
	}

	fmt.Printf("Done! Match rate: %.1f%% (%d matched, %d ambiguous, %d unmatched)\n",
		summary.MatchRate()*100, summary.Matched, summary.Ambiguous, summary.Unmatched)

	return &Result{
		RunID:        runID,
		Companies:    companies,
		Assignees:    assignees,
		MatchResults: results,
		Portfolios:   portfolios,
		Observations: observations,
		Summary:      summary,
	}, nil
}

// runMatching assembles the matcher from the run options and executes it.
func runMatching(ctx context.Context, opts *RunOptions, companies []types.CompanyRecord, assignees []types.AssigneeRecord) ([]types.MatchResult, error) {
	scorer, err := similarity.ForName(opts.Scorer)
	if err != nil {
		return nil, err
	}

	var normOpts []normalize.Option
	if len(opts.LegalSuffixes) > 0 {
		normOpts = append(normOpts, normalize.WithLegalSuffixes(opts.LegalSuffixes))
	}
	norm := normalize.New(normOpts...)

	thresholds := opts.Thresholds
	if thresholds == (matching.Thresholds{}) {
		thresholds = matching.DefaultThresholds()
	}

	matcher, err := matching.New(assignees, norm, scorer, thresholds, matching.WithWorkers(opts.Workers))
	if err != nil {
		return nil, err
	}
	return matcher.Match(ctx, companies)
}

// reportLoad prints skip counts and, in verbose mode, every load warning.
func reportLoad(report *dataset.LoadReport, what string, verbose bool) {
	if report.Skipped > 0 {
		fmt.Printf("Warning: skipped %d of %d %s\n", report.Skipped, report.Rows, what)
	}
	if verbose {
		for _, w := range report.Warnings {
			fmt.Printf("[VERBOSE] %s\n", w)
		}
	}
}
