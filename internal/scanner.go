package internal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// DefaultMaxHeaderRows bounds the header search to the first rows of a sheet.
	DefaultMaxHeaderRows = 25
	// DefaultPlaceholderPattern matches labels generated for blank header cells.
	DefaultPlaceholderPattern = "^Unnamed"
)

// ErrNoDataSheetFound is returned (wrapped in *NoDataSheetFoundError) when no
// sheet/header-row combination looks like a data table.
var ErrNoDataSheetFound = errors.New("no data-like sheet found")

// SheetAttempt records how far the scanner got on one sheet.
type SheetAttempt struct {
	Sheet     string
	RowsTried int
}

type NoDataSheetFoundError struct {
	Path     string
	Attempts []SheetAttempt
}

func (e *NoDataSheetFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s", ErrNoDataSheetFound, e.Path)
	if len(e.Attempts) == 0 {
		b.WriteString(" (no sheets searched)")
		return b.String()
	}
	b.WriteString(" (tried ")
	for i, a := range e.Attempts {
		if i > 0 {
			b.WriteString(", ")
		}
		if a.RowsTried == 0 {
			fmt.Fprintf(&b, "%q: empty", a.Sheet)
			continue
		}
		fmt.Fprintf(&b, "%q: header rows 0-%d", a.Sheet, a.RowsTried-1)
	}
	b.WriteString(")")
	return b.String()
}

func (e *NoDataSheetFoundError) Is(target error) bool {
	return target == ErrNoDataSheetFound
}

// ScanStrategy is the search for the data region of a workbook: which
// header rows to try, which columns to discard, and what counts as data.
type ScanStrategy struct {
	MaxHeaderRows int
	Sheet         string // restrict the search to one sheet when set
	Placeholder   *regexp.Regexp
	Predicate     Predicate
	Logger        *log.Logger
}

func DefaultScanStrategy() ScanStrategy {
	return ScanStrategy{
		MaxHeaderRows: DefaultMaxHeaderRows,
		Placeholder:   regexp.MustCompile(DefaultPlaceholderPattern),
		Predicate:     DefaultDataLikeness(),
	}
}

// ScanResult is the first candidate that satisfied the predicate.
type ScanResult struct {
	Candidate *Candidate
	Likeness  Likeness
}

// Scan tries sheets in workbook order and header rows 0..MaxHeaderRows-1
// within each sheet, returning the first candidate the predicate accepts.
func (s ScanStrategy) Scan(wb *Workbook) (*ScanResult, error) {
	logger := loggerOrDiscard(s.Logger)
	predicate := s.Predicate
	if predicate == nil {
		predicate = DefaultDataLikeness()
	}

	notFound := &NoDataSheetFoundError{Path: wb.Path}
	for _, sheet := range wb.Sheets {
		if s.Sheet != "" && sheet.Name != s.Sheet {
			continue
		}
		limit := min(s.MaxHeaderRows, len(sheet.Rows))
		for hdr := 0; hdr < limit; hdr++ {
			cand := BuildCandidate(sheet, hdr, s.Placeholder)
			like := predicate.Evaluate(cand)
			logger.Debug("scan attempt",
				"sheet", sheet.Name,
				"header_row", hdr,
				"rows", like.Rows,
				"date_ratio", fmt.Sprintf("%.2f", like.DateRatio),
				"numeric_columns", like.NumericColumns)
			if like.OK {
				return &ScanResult{Candidate: cand, Likeness: like}, nil
			}
		}
		notFound.Attempts = append(notFound.Attempts, SheetAttempt{Sheet: sheet.Name, RowsTried: limit})
	}
	return nil, notFound
}

// BuildCandidate reads sheet with row headerRow as column labels. Blank
// labels become "Unnamed: <i>", repeated labels get ".1", ".2" suffixes,
// blank data rows are skipped and placeholder-labelled columns dropped.
func BuildCandidate(sheet Sheet, headerRow int, placeholder *regexp.Regexp) *Candidate {
	width := 0
	for _, row := range sheet.Rows[headerRow:] {
		width = max(width, len(row))
	}

	labels := dedupeLabels(headerLabels(padRow(sheet.Rows[headerRow], width)))

	keep := make([]int, 0, width)
	for i, label := range labels {
		if placeholder != nil && placeholder.MatchString(label) {
			continue
		}
		keep = append(keep, i)
	}

	c := &Candidate{Sheet: sheet.Name, HeaderRow: headerRow, Columns: make([]string, len(keep))}
	for j, i := range keep {
		c.Columns[j] = labels[i]
	}
	for _, raw := range sheet.Rows[headerRow+1:] {
		row := padRow(raw, width)
		if blankRow(row) {
			continue
		}
		out := make([]Cell, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		c.Rows = append(c.Rows, out)
	}
	return c
}

// padRow pads row with empty cells up to width.
func padRow(row []Cell, width int) []Cell {
	if len(row) >= width {
		return row
	}
	out := make([]Cell, width)
	copy(out, row)
	return out
}

func blankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func headerLabels(row []Cell) []string {
	labels := make([]string, len(row))
	for i, c := range row {
		label := strings.TrimSpace(c.String())
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		labels[i] = label
	}
	return labels
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]int, len(labels))
	out := make([]string, len(labels))
	for i, label := range labels {
		n := seen[label]
		seen[label] = n + 1
		if n == 0 {
			out[i] = label
			continue
		}
		candidate := fmt.Sprintf("%s.%d", label, n)
		for seen[candidate] > 0 {
			n++
			candidate = fmt.Sprintf("%s.%d", label, n)
		}
		seen[candidate] = 1
		out[i] = candidate
	}
	return out
}
