package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/mbeaulieu/patent-linker/internal/db"
)

// CachedFetcher wraps URL fetching with an optional database-backed cache
// and the browser fallback. With a nil database it degrades to plain
// fetching.
type CachedFetcher struct {
	db         *db.DB
	options    *Options
	cacheTTL   time.Duration
	skipCache  bool
	useBrowser bool
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL   time.Duration
	SkipCache  bool
	UseBrowser bool
	Options    *Options
}

// NewCachedFetcher creates a cached fetcher. database may be nil.
func NewCachedFetcher(database *db.DB, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = db.DefaultPageCacheTTL
	}
	return &CachedFetcher{
		db:         database,
		options:    config.Options,
		cacheTTL:   config.CacheTTL,
		skipCache:  config.SkipCache,
		useBrowser: config.UseBrowser,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch retrieves a URL, serving from cache when fresh, otherwise fetching
// (with browser fallback when enabled) and caching the result.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if f.db != nil && !f.skipCache {
		shouldSkip, reason, err := f.db.ShouldSkipURL(ctx, urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to check skip status: %w", err)
		}
		if shouldSkip {
			return nil, &Error{
				URL:     urlStr,
				Message: fmt.Sprintf("URL skipped: %s", reason),
			}
		}

		cached, err := f.db.GetFreshCrawledPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check cache: %w", err)
		}
		if cached != nil {
			return &CachedResult{
				Result: &Result{
					URL:        cached.URL,
					HTML:       derefString(cached.RawHTML),
					StatusCode: derefInt(cached.HTTPStatus),
				},
				FromCache: true,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		if f.db != nil {
			statusCode := 0
			if result != nil {
				statusCode = result.StatusCode
			}
			_ = f.db.RecordFailedFetch(ctx, urlStr, statusCode, err.Error())
		}
		return nil, err
	}

	if f.useBrowser && ShouldUseBrowser(result.HTML) {
		html, browserErr := WithBrowser(ctx, urlStr, f.options.Timeout)
		if browserErr != nil {
			return nil, &Error{
				URL:     urlStr,
				Message: "browser fallback failed",
				Cause:   browserErr,
			}
		}
		result.HTML = html
	}

	if f.db != nil {
		page := &db.CrawledPage{
			URL:         urlStr,
			RawHTML:     &result.HTML,
			HTTPStatus:  &result.StatusCode,
			FetchStatus: db.FetchStatusSuccess,
		}
		// Cache write failure is not fatal; the fetch succeeded.
		_ = f.db.UpsertCrawledPage(ctx, page)
	}

	return &CachedResult{Result: result, FromCache: false}, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
