// Package dataset provides the tabular I/O layer of the pipeline: loading
// company and assignee extracts from CSV and writing match results and the
// survival dataset consumed by the econometric modeling step.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mbeaulieu/patent-linker/internal/types"
)

// Default column names, matching the historical extract headers.
const (
	DefaultCompanyNameColumn  = "startup_name"
	DefaultAssigneeNameColumn = "company_name"
	DefaultPatentIDColumn     = "patent_id"
)

// LoadReport summarizes a CSV load. Malformed rows are skipped and counted,
// never fatal; the pipeline must finish a full run over every usable record.
type LoadReport struct {
	Rows     int
	Loaded   int
	Skipped  int
	Warnings []string
}

func (r *LoadReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CompanyCSVOptions configures company CSV parsing.
type CompanyCSVOptions struct {
	NameColumn string // defaults to DefaultCompanyNameColumn
}

// LoadCompanies reads a companies CSV. Recognized optional columns: tagline,
// detail_url, category, list_page, survival_status. Rows with an empty name
// are still loaded (they yield unmatched results downstream); rows with the
// wrong field count are skipped with a warning.
func LoadCompanies(path string, opts CompanyCSVOptions) ([]types.CompanyRecord, *LoadReport, error) {
	nameCol := opts.NameColumn
	if nameCol == "" {
		nameCol = DefaultCompanyNameColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open companies CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readCompanies(f, nameCol)
}

func readCompanies(r io.Reader, nameCol string) ([]types.CompanyRecord, *LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read companies header: %w", err)
	}
	cols := columnIndex(header)
	nameIdx, ok := cols[nameCol]
	if !ok {
		return nil, nil, fmt.Errorf("companies CSV missing column %q (header: %v)", nameCol, header)
	}

	report := &LoadReport{}
	var companies []types.CompanyRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read companies CSV: %w", err)
		}
		report.Rows++

		if nameIdx >= len(row) {
			report.Skipped++
			report.warnf("row %d: too few fields (%d)", report.Rows, len(row))
			continue
		}

		record := types.CompanyRecord{
			ID:             uuid.New(),
			RawName:        strings.TrimSpace(row[nameIdx]),
			Tagline:        field(row, cols, "tagline"),
			DetailURL:      field(row, cols, "detail_url"),
			Category:       field(row, cols, "category"),
			SurvivalStatus: strings.ToLower(field(row, cols, "survival_status")),
		}
		if page := field(row, cols, "list_page"); page != "" {
			if n, err := strconv.Atoi(page); err == nil {
				record.ListPage = n
			} else {
				report.warnf("row %d: unparsable list_page %q", report.Rows, page)
			}
		}
		switch record.SurvivalStatus {
		case types.SurvivalActive, types.SurvivalClosed, types.SurvivalUnknown:
		default:
			// A bad label alone does not drop the row; the record flows
			// through with the label cleared so the company still appears
			// in the output.
			report.warnf("row %d: unknown survival status %q (cleared)", report.Rows, record.SurvivalStatus)
			record.SurvivalStatus = types.SurvivalUnknown
		}
		if err := record.Validate(); err != nil {
			report.Skipped++
			report.warnf("row %d: %v", report.Rows, err)
			continue
		}
		if record.RawName == "" {
			report.warnf("row %d: empty company name (will be unmatched)", report.Rows)
		}

		companies = append(companies, record)
		report.Loaded++
	}

	return companies, report, nil
}

// AssigneeCSVOptions configures assignee CSV parsing.
type AssigneeCSVOptions struct {
	NameColumn     string // defaults to DefaultAssigneeNameColumn
	PatentIDColumn string // defaults to DefaultPatentIDColumn
}

// LoadAssignees reads the patent extract, one row per (assignee, patent),
// and aggregates rows into one AssigneeRecord per distinct assignee name.
// Aggregation preserves first-seen order so repeated loads are identical.
func LoadAssignees(path string, opts AssigneeCSVOptions) ([]types.AssigneeRecord, *LoadReport, error) {
	nameCol := opts.NameColumn
	if nameCol == "" {
		nameCol = DefaultAssigneeNameColumn
	}
	patentCol := opts.PatentIDColumn
	if patentCol == "" {
		patentCol = DefaultPatentIDColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open assignees CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readAssignees(f, nameCol, patentCol)
}

func readAssignees(r io.Reader, nameCol, patentCol string) ([]types.AssigneeRecord, *LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read assignees header: %w", err)
	}
	cols := columnIndex(header)
	nameIdx, ok := cols[nameCol]
	if !ok {
		return nil, nil, fmt.Errorf("assignees CSV missing column %q (header: %v)", nameCol, header)
	}
	patentIdx, hasPatentCol := cols[patentCol]

	report := &LoadReport{}
	byName := make(map[string]int)
	var assignees []types.AssigneeRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read assignees CSV: %w", err)
		}
		report.Rows++

		if nameIdx >= len(row) {
			report.Skipped++
			report.warnf("row %d: too few fields (%d)", report.Rows, len(row))
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			report.Skipped++
			report.warnf("row %d: empty assignee name", report.Rows)
			continue
		}

		var patentID string
		if hasPatentCol && patentIdx < len(row) {
			patentID = strings.TrimSpace(row[patentIdx])
		}

		idx, seen := byName[name]
		if !seen {
			assignees = append(assignees, types.AssigneeRecord{
				ID:      uuid.New(),
				RawName: name,
			})
			idx = len(assignees) - 1
			byName[name] = idx
		}
		if patentID != "" && !slices.Contains(assignees[idx].PatentIDs, patentID) {
			assignees[idx].PatentIDs = append(assignees[idx].PatentIDs, patentID)
		}
		report.Loaded++
	}

	return assignees, report, nil
}

// columnIndex maps lower-cased header names to positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
