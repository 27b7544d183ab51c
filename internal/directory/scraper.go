// Package directory scrapes the startup directory: category listing pages
// are paginated card grids where each card carries a title heading, a short
// tagline, and a "Read more" link to the detail page.
package directory

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/fetch"
	"github.com/mbeaulieu/patent-linker/internal/normalize"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

// DefaultBaseURL is the directory root.
const DefaultBaseURL = "https://www.frenchcleantech.com/"

// DefaultDelay is the politeness delay between listing page fetches.
const DefaultDelay = 600 * time.Millisecond

// maxParentHops bounds the walk from a "Read more" link up to its card block.
const maxParentHops = 10

var readMoreRe = regexp.MustCompile(`(?i)read\s+more`)

// Fetcher retrieves listing pages. Satisfied by *fetch.CachedFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.CachedResult, error)
}

// Category identifies one directory category to crawl.
type Category struct {
	Slug     string
	Name     string
	MaxPages int
}

// Config configures the scraper.
type Config struct {
	BaseURL string
	Delay   time.Duration
}

// Scraper crawls directory categories into company records.
type Scraper struct {
	fetcher Fetcher
	cfg     Config
	norm    *normalize.Normalizer
	// Progress receives per-page status lines; nil disables reporting.
	Progress func(format string, args ...any)
}

// NewScraper creates a scraper. The normalizer is used for deduplication and
// to pre-fill normalized names on the emitted records.
func NewScraper(fetcher Fetcher, cfg Config, norm *normalize.Normalizer) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	return &Scraper{fetcher: fetcher, cfg: cfg, norm: norm}
}

// ScrapeCategory crawls all listing pages of a category and returns the raw
// (non-deduplicated) records in page order.
func (s *Scraper) ScrapeCategory(ctx context.Context, category Category) ([]types.CompanyRecord, error) {
	if category.MaxPages < 1 {
		return nil, fmt.Errorf("category %q: max pages must be at least 1", category.Slug)
	}

	var companies []types.CompanyRecord
	for page := 1; page <= category.MaxPages; page++ {
		pageURL, err := s.categoryURL(category.Slug, page)
		if err != nil {
			return nil, err
		}
		s.progress("page %02d/%02d -> %s", page, category.MaxPages, pageURL)

		result, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listing page %d: %w", page, err)
		}

		records, err := s.ParseListing(result.HTML, category.Name, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse listing page %d: %w", page, err)
		}
		s.progress("  cards found: %d", len(records))
		companies = append(companies, records...)

		if page < category.MaxPages {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.Delay):
			}
		}
	}

	return companies, nil
}

// ParseListing extracts company cards from a listing page. Cards are located
// from their "Read more" anchors, walking up to the enclosing block that
// carries an h1/h2/h3 title.
func (s *Scraper) ParseListing(html, categoryName string, page int) ([]types.CompanyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", s.cfg.BaseURL, err)
	}

	var records []types.CompanyRecord
	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		if !readMoreRe.MatchString(cleanText(anchor.Text())) {
			return
		}

		block, title := cardBlock(anchor)
		if block == nil {
			return
		}

		name := cleanText(title.Text())
		record := types.CompanyRecord{
			ID:             uuid.New(),
			RawName:        name,
			NormalizedName: s.norm.Name(name),
			Tagline:        taglineAfter(title),
			Category:       categoryName,
			ListPage:       page,
		}
		if href, ok := anchor.Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil {
				record.DetailURL = base.ResolveReference(ref).String()
			}
		}
		records = append(records, record)
	})

	return records, nil
}

// cardBlock walks up from a "Read more" anchor to the first ancestor that
// contains a non-empty heading, returning the block and its title selection.
// A block holding more than one "Read more" link is the surrounding grid,
// not a card, so the walk gives up there.
func cardBlock(anchor *goquery.Selection) (*goquery.Selection, *goquery.Selection) {
	block := anchor
	for range maxParentHops {
		block = block.Parent()
		if block.Length() == 0 {
			return nil, nil
		}
		title := block.Find("h1, h2, h3").First()
		if title.Length() > 0 && cleanText(title.Text()) != "" {
			if countReadMore(block) > 1 {
				return nil, nil
			}
			return block, title
		}
	}
	return nil, nil
}

func countReadMore(block *goquery.Selection) int {
	n := 0
	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		if readMoreRe.MatchString(cleanText(a.Text())) {
			n++
		}
	})
	return n
}

// taglineAfter finds the tagline in the few siblings following the title,
// skipping the "Read more" link text itself.
func taglineAfter(title *goquery.Selection) string {
	sibling := title.Next()
	for range 4 {
		if sibling.Length() == 0 {
			return ""
		}
		text := cleanText(sibling.Text())
		if text != "" && !readMoreRe.MatchString(text) {
			return text
		}
		sibling = sibling.Next()
	}
	return ""
}

// Deduplicate keeps one record per company, preferring the occurrence seen
// on the earliest listing page. The dedup key uses the single-letter-merge
// normalization so spaced-initial renderings collapse.
func Deduplicate(companies []types.CompanyRecord) []types.CompanyRecord {
	key := normalize.New(normalize.WithSingleLetterMerge())

	sorted := make([]types.CompanyRecord, len(companies))
	copy(sorted, companies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ListPage < sorted[j].ListPage
	})

	seen := make(map[string]struct{}, len(sorted))
	deduped := sorted[:0]
	for _, c := range sorted {
		k := key.Name(c.RawName)
		if k == "" {
			// Nameless cards are kept; they surface as unmatched results.
			deduped = append(deduped, c)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped
}

// categoryURL builds the listing URL for a category page.
func (s *Scraper) categoryURL(slug string, page int) (string, error) {
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", s.cfg.BaseURL, err)
	}
	ref := &url.URL{Path: fmt.Sprintf("companies/categories/%s.html", slug)}
	u := base.ResolveReference(ref)
	if page > 1 {
		q := u.Query()
		q.Set("page", fmt.Sprintf("%d", page))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (s *Scraper) progress(format string, args ...any) {
	if s.Progress != nil {
		s.Progress(format, args...)
	}
}

// cleanText collapses runs of whitespace to single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
