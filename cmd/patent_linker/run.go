package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/config"
	"github.com/mbeaulieu/patent-linker/internal/dataset"
	"github.com/mbeaulieu/patent-linker/internal/matching"
	"github.com/mbeaulieu/patent-linker/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full linkage pipeline end-to-end",
	Long: `Orchestrates the entire linkage process: loading -> matching -> portfolios -> export.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runCompanies      string
	runAssignees      string
	runOutputDir      string
	runCompanyColumn  string
	runAssigneeColumn string
	runPatentIDColumn string
	runHighThreshold  float64
	runLowThreshold   float64
	runScorer         string
	runWorkers        int
	runLabel          string
	runVerbose        bool
	runDatabaseURL    string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runCompanies, "companies", "c", "", "Path to companies CSV")
	runCommand.Flags().StringVarP(&runAssignees, "assignees", "a", "", "Path to patent assignees CSV")
	runCommand.Flags().StringVarP(&runOutputDir, "out", "o", "", "Output directory for result CSVs")
	runCommand.Flags().StringVar(&runCompanyColumn, "company-column", "", "Company name column in the companies CSV")
	runCommand.Flags().StringVar(&runAssigneeColumn, "assignee-column", "", "Assignee name column in the assignees CSV")
	runCommand.Flags().StringVar(&runPatentIDColumn, "patent-column", "", "Patent ID column in the assignees CSV")
	runCommand.Flags().Float64Var(&runHighThreshold, "high", 0, "Score threshold for accepting a match")
	runCommand.Flags().Float64Var(&runLowThreshold, "low", 0, "Score threshold below which a company is unmatched")
	runCommand.Flags().StringVar(&runScorer, "scorer", "", "Similarity scorer: levenshtein, token-sort, token-set, combined")
	runCommand.Flags().IntVar(&runWorkers, "workers", 0, "Number of concurrent matching workers (default: GOMAXPROCS)")
	runCommand.Flags().StringVar(&runLabel, "label", "", "Label for the pipeline run")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// mergeRunConfig resolves the effective configuration for the run command:
// config file values, then explicit CLI flags, then built-in defaults.
func mergeRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("companies") {
		cfg.Companies = runCompanies
	}
	if cmd.Flags().Changed("assignees") {
		cfg.Assignees = runAssignees
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("company-column") {
		cfg.CompanyColumn = runCompanyColumn
	}
	if cmd.Flags().Changed("assignee-column") {
		cfg.AssigneeColumn = runAssigneeColumn
	}
	if cmd.Flags().Changed("patent-column") {
		cfg.PatentIDColumn = runPatentIDColumn
	}
	if cmd.Flags().Changed("high") {
		cfg.HighThreshold = runHighThreshold
	}
	if cmd.Flags().Changed("low") {
		cfg.LowThreshold = runLowThreshold
	}
	if cmd.Flags().Changed("scorer") {
		cfg.Scorer = runScorer
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Apply defaults for unset values
	defaults := config.Config{
		OutputDir:      "out",
		CompanyColumn:  dataset.DefaultCompanyNameColumn,
		AssigneeColumn: dataset.DefaultAssigneeNameColumn,
		PatentIDColumn: dataset.DefaultPatentIDColumn,
		HighThreshold:  matching.DefaultThresholds().High,
		LowThreshold:   matching.DefaultThresholds().Low,
		Scorer:         "combined",
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Validate required fields
	if cfg.Companies == "" {
		return cfg, fmt.Errorf("--companies is required (via flag or config)")
	}
	if cfg.Assignees == "" {
		return cfg, fmt.Errorf("--assignees is required (via flag or config)")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergeRunConfig(cmd)
	if err != nil {
		return err
	}

	label := runLabel
	if label == "" {
		label = fmt.Sprintf("run %s vs %s", cfg.Companies, cfg.Assignees)
	}

	_, err = pipeline.RunPipeline(ctx, pipeline.RunOptions{
		CompaniesPath:  cfg.Companies,
		AssigneesPath:  cfg.Assignees,
		OutputDir:      cfg.OutputDir,
		CompanyColumn:  cfg.CompanyColumn,
		AssigneeColumn: cfg.AssigneeColumn,
		PatentIDColumn: cfg.PatentIDColumn,
		Scorer:         cfg.Scorer,
		Thresholds: matching.Thresholds{
			High: cfg.HighThreshold,
			Low:  cfg.LowThreshold,
		},
		LegalSuffixes: cfg.LegalSuffixes,
		Workers:       cfg.Workers,
		Verbose:       cfg.Verbose,
		DatabaseURL:   cfg.DatabaseURL,
		Label:         label,
	})
	return err
}
