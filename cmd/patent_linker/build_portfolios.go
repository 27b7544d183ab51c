package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/db"
	"github.com/mbeaulieu/patent-linker/internal/observability"
	"github.com/mbeaulieu/patent-linker/internal/portfolio"
	"github.com/mbeaulieu/patent-linker/internal/schemas"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

var buildPortfoliosCmd = &cobra.Command{
	Use:   "build-portfolios",
	Short: "Build patent portfolios from a stored matching run",
	Long:  "Load the match results of a previous run from the database, attribute each matched company its assignee's patents, and store the portfolios as a run artifact.",
	RunE:  runBuildPortfolios,
}

var (
	portfoliosRunID       string
	portfoliosDatabaseURL string
	portfoliosVerbose     bool
)

func init() {
	buildPortfoliosCmd.Flags().StringVar(&portfoliosRunID, "run-id", "", "Run ID of a stored matching run (required)")
	buildPortfoliosCmd.Flags().StringVar(&portfoliosDatabaseURL, "db-url", "", "PostgreSQL connection URL (required, defaults to DATABASE_URL env var)")
	buildPortfoliosCmd.Flags().BoolVarP(&portfoliosVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = buildPortfoliosCmd.MarkFlagRequired("run-id")

	rootCmd.AddCommand(buildPortfoliosCmd)
}

// loadRunArtifacts fetches and decodes the stored inputs of a matching run.
func loadRunArtifacts(ctx context.Context, database *db.DB, runID uuid.UUID) ([]types.CompanyRecord, []types.AssigneeRecord, []types.MatchResult, error) {
	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if run == nil {
		return nil, nil, nil, fmt.Errorf("run not found: %s", runID)
	}

	companiesJSON, err := database.GetArtifact(ctx, runID, db.StepCompanies)
	if err != nil {
		return nil, nil, nil, err
	}
	assigneesJSON, err := database.GetArtifact(ctx, runID, db.StepAssignees)
	if err != nil {
		return nil, nil, nil, err
	}
	resultsJSON, err := database.GetArtifact(ctx, runID, db.StepMatchResults)
	if err != nil {
		return nil, nil, nil, err
	}
	if companiesJSON == nil || assigneesJSON == nil || resultsJSON == nil {
		return nil, nil, nil, fmt.Errorf("run %s is missing matching artifacts; run the match command first", runID)
	}
	if err := schemas.ValidateMatchResults(resultsJSON); err != nil {
		return nil, nil, nil, fmt.Errorf("stored match results are invalid: %w", err)
	}

	var companies []types.CompanyRecord
	if err := json.Unmarshal(companiesJSON, &companies); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode companies artifact: %w", err)
	}
	var assignees []types.AssigneeRecord
	if err := json.Unmarshal(assigneesJSON, &assignees); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode assignees artifact: %w", err)
	}
	var artifact schemas.MatchResultsArtifact
	if err := json.Unmarshal(resultsJSON, &artifact); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode match results artifact: %w", err)
	}

	return companies, assignees, artifact.Results, nil
}

func connectForRun(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL required when using --run-id")
	}
	return db.Connect(ctx, databaseURL)
}

func runBuildPortfolios(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	runID, err := uuid.Parse(portfoliosRunID)
	if err != nil {
		return fmt.Errorf("invalid run-id: %w", err)
	}

	database, err := connectForRun(ctx, portfoliosDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	_, assignees, results, err := loadRunArtifacts(ctx, database, runID)
	if err != nil {
		return err
	}

	portfolios, err := portfolio.Build(results, assignees)
	if err != nil {
		return err
	}
	if err := database.SaveArtifact(ctx, runID, db.StepPortfolios, db.CategoryPortfolio, portfolios); err != nil {
		return fmt.Errorf("failed to save portfolios: %w", err)
	}

	summary := portfolio.Summarize(results, portfolios)
	if portfoliosVerbose {
		observability.NewPrinter(os.Stdout).PrintPortfolioSummary(summary)
	}

	fmt.Printf("Built %d portfolios holding %d patents (run: %s)\n", len(portfolios), summary.TotalPatents, runID)
	return nil
}
