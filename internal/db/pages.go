package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetFreshCrawledPage returns the cached page for a URL when it is still
// within the TTL, or nil when missing or stale.
func (db *DB) GetFreshCrawledPage(ctx context.Context, url string, ttl time.Duration) (*CrawledPage, error) {
	var page CrawledPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, http_status, fetch_status, failure_count, last_error, fetched_at, expires_at
		 FROM crawled_pages
		 WHERE url = $1
		   AND fetch_status = 'success'
		   AND fetched_at > NOW() - make_interval(secs => $2)
		   AND (expires_at IS NULL OR expires_at > NOW())`,
		url, ttl.Seconds(),
	).Scan(&page.ID, &page.URL, &page.RawHTML, &page.HTTPStatus, &page.FetchStatus,
		&page.FailureCount, &page.LastError, &page.FetchedAt, &page.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	return &page, nil
}

// UpsertCrawledPage stores or refreshes a cached page and resets its failure
// counter.
func (db *DB) UpsertCrawledPage(ctx context.Context, page *CrawledPage) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO crawled_pages (url, raw_html, http_status, fetch_status, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, NOW(), $5)
		 ON CONFLICT (url) DO UPDATE SET
		   raw_html = $2, http_status = $3, fetch_status = $4,
		   failure_count = 0, last_error = NULL, fetched_at = NOW(), expires_at = $5
		 RETURNING id`,
		page.URL, page.RawHTML, page.HTTPStatus, page.FetchStatus, page.ExpiresAt,
	).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert cached page: %w", err)
	}
	return nil
}

// RecordFailedFetch increments the failure counter for a URL so repeated
// failures back the crawler off.
func (db *DB) RecordFailedFetch(ctx context.Context, url string, httpStatus int, errMsg string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (url, http_status, fetch_status, failure_count, last_error)
		 VALUES ($1, $2, 'failed', 1, $3)
		 ON CONFLICT (url) DO UPDATE SET
		   http_status = $2, fetch_status = 'failed',
		   failure_count = crawled_pages.failure_count + 1,
		   last_error = $3, fetched_at = NOW()`,
		url, httpStatus, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch failure: %w", err)
	}
	return nil
}

// ShouldSkipURL reports whether a URL has failed often enough to be skipped.
func (db *DB) ShouldSkipURL(ctx context.Context, url string) (bool, string, error) {
	var failureCount int
	var lastError *string
	err := db.pool.QueryRow(ctx,
		`SELECT failure_count, last_error FROM crawled_pages
		 WHERE url = $1 AND fetch_status = 'failed'`,
		url,
	).Scan(&failureCount, &lastError)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check skip status: %w", err)
	}
	if failureCount >= maxFetchFailures {
		reason := fmt.Sprintf("%d consecutive failures", failureCount)
		if lastError != nil {
			reason += ": " + *lastError
		}
		return true, reason, nil
	}
	return false, "", nil
}
