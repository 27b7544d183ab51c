package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is a pipeline execution record.
type Run struct {
	ID          uuid.UUID
	Label       string
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Fetch statuses for the crawled-page cache.
const (
	FetchStatusSuccess = "success"
	FetchStatusFailed  = "failed"
)

// DefaultPageCacheTTL is how long a cached directory page stays fresh.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// maxFetchFailures is the failure count after which a URL is skipped
// permanently instead of backed off.
const maxFetchFailures = 3

// CrawledPage is a cached directory page.
type CrawledPage struct {
	ID           uuid.UUID
	URL          string
	RawHTML      *string
	HTTPStatus   *int
	FetchStatus  string
	FailureCount int
	LastError    *string
	FetchedAt    time.Time
	ExpiresAt    *time.Time
}
