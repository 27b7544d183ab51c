package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/dataset"
	"github.com/mbeaulieu/patent-linker/internal/db"
	"github.com/mbeaulieu/patent-linker/internal/matching"
	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/observability"
	"github.com/mbeaulieu/patent-linker/internal/schemas"
	"github.com/mbeaulieu/patent-linker/internal/similarity"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match companies against patent assignees",
	Long:  "Load a companies CSV and a patent assignees CSV, link them by fuzzy name matching, and write a reviewable match results CSV. With --db-url the results are also persisted under a new run.",
	RunE:  runMatch,
}

var (
	matchCompanies      string
	matchAssignees      string
	matchOutputFile     string
	matchCompanyColumn  string
	matchAssigneeColumn string
	matchPatentColumn   string
	matchHighThreshold  float64
	matchLowThreshold   float64
	matchScorer         string
	matchWorkers        int
	matchVerbose        bool
	matchDatabaseURL    string
)

func init() {
	matchCmd.Flags().StringVarP(&matchCompanies, "companies", "c", "", "Path to companies CSV (required)")
	matchCmd.Flags().StringVarP(&matchAssignees, "assignees", "a", "", "Path to patent assignees CSV (required)")
	matchCmd.Flags().StringVarP(&matchOutputFile, "out", "o", "match_results.csv", "Path to output CSV")
	matchCmd.Flags().StringVar(&matchCompanyColumn, "company-column", "", "Company name column in the companies CSV")
	matchCmd.Flags().StringVar(&matchAssigneeColumn, "assignee-column", "", "Assignee name column in the assignees CSV")
	matchCmd.Flags().StringVar(&matchPatentColumn, "patent-column", "", "Patent ID column in the assignees CSV")
	matchCmd.Flags().Float64Var(&matchHighThreshold, "high", matching.DefaultThresholds().High, "Score threshold for accepting a match")
	matchCmd.Flags().Float64Var(&matchLowThreshold, "low", matching.DefaultThresholds().Low, "Score threshold below which a company is unmatched")
	matchCmd.Flags().StringVar(&matchScorer, "scorer", "combined", "Similarity scorer: levenshtein, token-sort, token-set, combined")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 0, "Number of concurrent matching workers (default: GOMAXPROCS)")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print detailed debug information")
	matchCmd.Flags().StringVar(&matchDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	_ = matchCmd.MarkFlagRequired("companies")
	_ = matchCmd.MarkFlagRequired("assignees")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	companies, companyReport, err := dataset.LoadCompanies(matchCompanies, dataset.CompanyCSVOptions{
		NameColumn: matchCompanyColumn,
	})
	if err != nil {
		return err
	}
	assignees, assigneeReport, err := dataset.LoadAssignees(matchAssignees, dataset.AssigneeCSVOptions{
		NameColumn:     matchAssigneeColumn,
		PatentIDColumn: matchPatentColumn,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d companies (%d skipped) and %d assignees (%d rows skipped)\n",
		len(companies), companyReport.Skipped, len(assignees), assigneeReport.Skipped)

	scorer, err := similarity.ForName(matchScorer)
	if err != nil {
		return err
	}
	matcher, err := matching.New(assignees, normalize.New(), scorer, matching.Thresholds{
		High: matchHighThreshold,
		Low:  matchLowThreshold,
	}, matching.WithWorkers(matchWorkers))
	if err != nil {
		return err
	}

	results, err := matcher.Match(ctx, companies)
	if err != nil {
		return err
	}
	if matchVerbose {
		observability.NewPrinter(os.Stdout).PrintMatchSummary(results, companies)
	}

	if err := dataset.WriteMatchResults(matchOutputFile, companies, assignees, results); err != nil {
		return err
	}
	fmt.Printf("Wrote %d match results to %s\n", len(results), matchOutputFile)

	databaseURL := matchDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Warning: Failed to connect to database: %v\n", err)
		return nil
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	runID, err := database.CreateRun(ctx, fmt.Sprintf("match %s", matchCompanies))
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	artifact, err := schemas.MarshalMatchResults(runID.String(), results)
	if err != nil {
		return fmt.Errorf("match results failed schema validation: %w", err)
	}
	if err := database.SaveArtifact(ctx, runID, db.StepCompanies, db.CategoryScraping, companies); err != nil {
		return err
	}
	if err := database.SaveArtifact(ctx, runID, db.StepAssignees, db.CategoryMatching, assignees); err != nil {
		return err
	}
	if err := database.SaveArtifact(ctx, runID, db.StepMatchResults, db.CategoryMatching, json.RawMessage(artifact)); err != nil {
		return err
	}
	if err := database.SaveMatchResults(ctx, runID, companies, assignees, results); err != nil {
		return err
	}
	if err := database.CompleteRun(ctx, runID, db.RunStatusCompleted); err != nil {
		return err
	}

	fmt.Printf("Saved match results to database (run: %s)\n", runID)
	return nil
}
