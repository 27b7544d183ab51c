// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// CategoryConfig identifies one directory category to scrape.
type CategoryConfig struct {
	Slug     string `json:"slug" validate:"required"`
	Name     string `json:"name,omitempty"`
	MaxPages int    `json:"max_pages,omitempty" validate:"omitempty,gte=1"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Companies string `json:"companies,omitempty"` // Path to companies CSV
	Assignees string `json:"assignees,omitempty"` // Path to patent assignees CSV
	OutputDir string `json:"output_dir,omitempty"`

	// CSV columns
	CompanyColumn  string `json:"company_column,omitempty"`
	AssigneeColumn string `json:"assignee_column,omitempty"`
	PatentIDColumn string `json:"patent_id_column,omitempty"`

	// Matching
	HighThreshold float64  `json:"high_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	LowThreshold  float64  `json:"low_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Scorer        string   `json:"scorer,omitempty" validate:"omitempty,oneof=levenshtein token-sort token-set combined"`
	Workers       int      `json:"workers,omitempty" validate:"omitempty,gte=1"`
	LegalSuffixes []string `json:"legal_suffixes,omitempty"`

	// Scraping
	BaseURL      string           `json:"base_url,omitempty" validate:"omitempty,url"`
	Categories   []CategoryConfig `json:"categories,omitempty" validate:"dive"`
	DelayMS      int              `json:"delay_ms,omitempty" validate:"omitempty,gte=0"`
	MaxPages     int              `json:"max_pages,omitempty" validate:"omitempty,gte=1"`
	UseBrowser   bool             `json:"use_browser,omitempty"`
	SkipCache    bool             `json:"skip_cache,omitempty"`
	CacheTTLDays int              `json:"cache_ttl_days,omitempty" validate:"omitempty,gte=1"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fields, ok := err.(validator.ValidationErrors); ok && len(fields) > 0 {
			return fmt.Errorf("config error: field %q failed %q validation", fields[0].Field(), fields[0].Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.HighThreshold > 0 && c.LowThreshold > 0 && c.LowThreshold > c.HighThreshold {
		return fmt.Errorf("config error: 'low_threshold' must not exceed 'high_threshold'")
	}

	// Validate file paths exist (if specified)
	if c.Companies != "" {
		if _, err := os.Stat(c.Companies); os.IsNotExist(err) {
			return fmt.Errorf("config error: companies file not found: %s", c.Companies)
		}
	}
	if c.Assignees != "" {
		if _, err := os.Stat(c.Assignees); os.IsNotExist(err) {
			return fmt.Errorf("config error: assignees file not found: %s", c.Assignees)
		}
	}

	return nil
}

// Delay returns the configured politeness delay between page fetches.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// CacheTTL returns the configured page cache freshness window, or zero when
// unset so callers fall back to their own default.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Companies == "" {
		result.Companies = defaults.Companies
	}
	if result.Assignees == "" {
		result.Assignees = defaults.Assignees
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.CompanyColumn == "" {
		result.CompanyColumn = defaults.CompanyColumn
	}
	if result.AssigneeColumn == "" {
		result.AssigneeColumn = defaults.AssigneeColumn
	}
	if result.PatentIDColumn == "" {
		result.PatentIDColumn = defaults.PatentIDColumn
	}
	if result.Scorer == "" {
		result.Scorer = defaults.Scorer
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.HighThreshold == 0 {
		result.HighThreshold = defaults.HighThreshold
	}
	if result.LowThreshold == 0 {
		result.LowThreshold = defaults.LowThreshold
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.DelayMS == 0 {
		result.DelayMS = defaults.DelayMS
	}
	if result.MaxPages == 0 {
		result.MaxPages = defaults.MaxPages
	}
	if result.CacheTTLDays == 0 {
		result.CacheTTLDays = defaults.CacheTTLDays
	}

	// Slice fields
	if len(result.LegalSuffixes) == 0 {
		result.LegalSuffixes = defaults.LegalSuffixes
	}
	if len(result.Categories) == 0 {
		result.Categories = defaults.Categories
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
