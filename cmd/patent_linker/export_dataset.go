package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/dataset"
	"github.com/mbeaulieu/patent-linker/internal/db"
	"github.com/mbeaulieu/patent-linker/internal/portfolio"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

var exportDatasetCmd = &cobra.Command{
	Use:   "export-dataset",
	Short: "Export the survival dataset of a stored run",
	Long:  "Load a run's match results and portfolios from the database, join them with the company records, and write the survival dataset CSV consumed by the econometric modeling step.",
	RunE:  runExportDataset,
}

var (
	exportRunID       string
	exportOutputFile  string
	exportDatabaseURL string
)

func init() {
	exportDatasetCmd.Flags().StringVar(&exportRunID, "run-id", "", "Run ID of a stored matching run (required)")
	exportDatasetCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "survival_dataset.csv", "Path to output CSV")
	exportDatasetCmd.Flags().StringVar(&exportDatabaseURL, "db-url", "", "PostgreSQL connection URL (required, defaults to DATABASE_URL env var)")

	_ = exportDatasetCmd.MarkFlagRequired("run-id")

	rootCmd.AddCommand(exportDatasetCmd)
}

func runExportDataset(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	runID, err := uuid.Parse(exportRunID)
	if err != nil {
		return fmt.Errorf("invalid run-id: %w", err)
	}

	database, err := connectForRun(ctx, exportDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	companies, assignees, results, err := loadRunArtifacts(ctx, database, runID)
	if err != nil {
		return err
	}

	// Reuse stored portfolios when build-portfolios already ran; otherwise
	// build them on the fly.
	var portfolios []types.Portfolio
	portfoliosJSON, err := database.GetArtifact(ctx, runID, db.StepPortfolios)
	if err != nil {
		return err
	}
	if portfoliosJSON != nil {
		if err := json.Unmarshal(portfoliosJSON, &portfolios); err != nil {
			return fmt.Errorf("failed to decode portfolios artifact: %w", err)
		}
	} else {
		portfolios, err = portfolio.Build(results, assignees)
		if err != nil {
			return err
		}
	}

	observations, err := portfolio.Observations(companies, results, portfolios)
	if err != nil {
		return err
	}
	if err := dataset.WriteObservations(exportOutputFile, observations); err != nil {
		return err
	}
	if err := database.SaveArtifact(ctx, runID, db.StepDataset, db.CategoryExport, observations); err != nil {
		return fmt.Errorf("failed to save dataset artifact: %w", err)
	}

	fmt.Printf("Exported %d observations to %s (run: %s)\n", len(observations), exportOutputFile, runID)
	return nil
}
