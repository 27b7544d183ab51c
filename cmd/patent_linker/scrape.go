package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbeaulieu/patent-linker/internal/config"
	"github.com/mbeaulieu/patent-linker/internal/dataset"
	"github.com/mbeaulieu/patent-linker/internal/db"
	"github.com/mbeaulieu/patent-linker/internal/directory"
	"github.com/mbeaulieu/patent-linker/internal/fetch"
	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/observability"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Crawl directory categories into a companies CSV",
	Long:  "Crawl the startup directory's category listing pages, extract company cards, deduplicate them, and write a companies CSV usable as matching input.",
	RunE:  runScrape,
}

var (
	scrapeConfigPath  string
	scrapeOutputFile  string
	scrapeBaseURL     string
	scrapeCategories  []string
	scrapeMaxPages    int
	scrapeDelayMS     int
	scrapeUseBrowser  bool
	scrapeSkipCache   bool
	scrapeVerbose     bool
	scrapeDatabaseURL string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scrapeCmd.Flags().StringVarP(&scrapeOutputFile, "out", "o", "companies.csv", "Path to output companies CSV")
	scrapeCmd.Flags().StringVar(&scrapeBaseURL, "base-url", "", "Directory base URL")
	scrapeCmd.Flags().StringSliceVar(&scrapeCategories, "category", nil, "Category slug to crawl (repeatable)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "Listing pages to crawl per category")
	scrapeCmd.Flags().IntVar(&scrapeDelayMS, "delay-ms", 0, "Politeness delay between page fetches in milliseconds")
	scrapeCmd.Flags().BoolVar(&scrapeUseBrowser, "use-browser", false, "Render listings in a headless browser (requires Chrome)")
	scrapeCmd.Flags().BoolVar(&scrapeSkipCache, "skip-cache", false, "Bypass the crawled-page cache")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")
	scrapeCmd.Flags().StringVar(&scrapeDatabaseURL, "db-url", "", "PostgreSQL connection URL for the page cache (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if scrapeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(scrapeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = scrapeBaseURL
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = scrapeMaxPages
	}
	if cmd.Flags().Changed("delay-ms") {
		cfg.DelayMS = scrapeDelayMS
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = scrapeUseBrowser
	}
	if cmd.Flags().Changed("skip-cache") {
		cfg.SkipCache = scrapeSkipCache
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = scrapeDatabaseURL
	}
	if len(scrapeCategories) > 0 {
		cfg.Categories = nil
		for _, slug := range scrapeCategories {
			cfg.Categories = append(cfg.Categories, config.CategoryConfig{Slug: slug})
		}
	}
	cfg = cfg.MergeWithDefaults(config.Config{
		BaseURL:  directory.DefaultBaseURL,
		MaxPages: 1,
	})

	if len(cfg.Categories) == 0 {
		return fmt.Errorf("at least one --category is required (via flag or config)")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Page cache is optional; scraping works without a database.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without page cache...\n")
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				return fmt.Errorf("database migration failed: %w", err)
			}
		}
	}

	fetcher := fetch.NewCachedFetcher(database, &fetch.CachedFetcherConfig{
		CacheTTL:   cfg.CacheTTL(),
		SkipCache:  cfg.SkipCache,
		UseBrowser: cfg.UseBrowser,
	})
	scraper := directory.NewScraper(fetcher, directory.Config{
		BaseURL: cfg.BaseURL,
		Delay:   cfg.Delay(),
	}, normalize.New(normalizeOptions(cfg)...))
	if scrapeVerbose {
		scraper.Progress = func(format string, args ...any) {
			fmt.Printf("[VERBOSE] "+format+"\n", args...)
		}
	}

	var companies []types.CompanyRecord
	for i, cat := range cfg.Categories {
		maxPages := cat.MaxPages
		if maxPages == 0 {
			maxPages = cfg.MaxPages
		}
		name := cat.Name
		if name == "" {
			name = cat.Slug
		}
		fmt.Printf("Category %d/%d: %s...\n", i+1, len(cfg.Categories), cat.Slug)
		records, err := scraper.ScrapeCategory(ctx, directory.Category{
			Slug:     cat.Slug,
			Name:     name,
			MaxPages: maxPages,
		})
		if err != nil {
			return fmt.Errorf("scraping category %s failed: %w", cat.Slug, err)
		}
		companies = append(companies, records...)
	}

	before := len(companies)
	companies = directory.Deduplicate(companies)
	if before != len(companies) {
		fmt.Printf("Deduplicated %d cards into %d companies\n", before, len(companies))
	}

	if scrapeVerbose {
		observability.NewPrinter(os.Stdout).PrintScrapeSummary(companies)
	}

	if dir := filepath.Dir(scrapeOutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := dataset.WriteCompanies(scrapeOutputFile, companies); err != nil {
		return err
	}

	fmt.Printf("Wrote %d companies to %s\n", len(companies), scrapeOutputFile)
	return nil
}

// normalizeOptions builds normalizer options shared by scrape and match.
func normalizeOptions(cfg config.Config) []normalize.Option {
	var opts []normalize.Option
	if len(cfg.LegalSuffixes) > 0 {
		opts = append(opts, normalize.WithLegalSuffixes(cfg.LegalSuffixes))
	}
	return opts
}
