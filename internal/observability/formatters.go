// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mbeaulieu/patent-linker/internal/portfolio"
	"github.com/mbeaulieu/patent-linker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScrapeSummary outputs per-category company counts after a crawl.
func (p *Printer) PrintScrapeSummary(companies []types.CompanyRecord) {
	if len(companies) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, c := range companies {
		counts[c.Category]++
	}
	categories := make([]string, 0, len(counts))
	for cat := range counts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total companies: %d\n\n", len(companies)))
	for _, cat := range categories {
		label := cat
		if label == "" {
			label = "(uncategorized)"
		}
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", label, counts[cat]))
	}

	p.printBox("DIRECTORY CRAWL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchSummary outputs decision counts and a sample of ambiguous cases.
func (p *Printer) PrintMatchSummary(results []types.MatchResult, companies []types.CompanyRecord) {
	if len(results) == 0 {
		return
	}

	byID := make(map[string]string, len(companies))
	for _, c := range companies {
		byID[c.ID.String()] = c.RawName
	}

	var matched, ambiguous, unmatched int
	var samples []string
	for _, r := range results {
		switch r.Decision {
		case types.DecisionMatched:
			matched++
		case types.DecisionAmbiguous:
			ambiguous++
			if len(samples) < maxItemsToShow {
				samples = append(samples, fmt.Sprintf("  • %s (%.2f)", byID[r.CompanyID.String()], r.Score))
			}
		case types.DecisionUnmatched:
			unmatched++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Companies matched: %d\n", len(results)))
	sb.WriteString(fmt.Sprintf("  matched:   %d (%.1f%%)\n", matched, percent(matched, len(results))))
	sb.WriteString(fmt.Sprintf("  ambiguous: %d (%.1f%%)\n", ambiguous, percent(ambiguous, len(results))))
	sb.WriteString(fmt.Sprintf("  unmatched: %d (%.1f%%)\n", unmatched, percent(unmatched, len(results))))

	if len(samples) > 0 {
		sb.WriteString("\nAmbiguous cases needing review:\n")
		sb.WriteString(strings.Join(samples, "\n"))
		sb.WriteString("\n")
		if ambiguous > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", ambiguous-maxItemsToShow))
		}
	}

	p.printBox("MATCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPortfolioSummary outputs patent-count buckets for matched companies.
func (p *Printer) PrintPortfolioSummary(summary portfolio.Summary) {
	if summary.Companies == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match rate: %.1f%% (%d of %d companies)\n\n",
		summary.MatchRate()*100, summary.Matched, summary.Companies))
	sb.WriteString(fmt.Sprintf("Total patents held: %d\n\n", summary.TotalPatents))
	sb.WriteString("Portfolio sizes:\n")
	sb.WriteString(fmt.Sprintf("  1 patent:      %d\n", summary.Buckets[0]))
	sb.WriteString(fmt.Sprintf("  2-5 patents:   %d\n", summary.Buckets[1]))
	sb.WriteString(fmt.Sprintf("  6-20 patents:  %d\n", summary.Buckets[2]))
	sb.WriteString(fmt.Sprintf("  >20 patents:   %d", summary.Buckets[3]))

	p.printBox("PATENT PORTFOLIOS", sb.String())
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
