package internal

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
)

// Descriptor is an ABS series description split on ";", e.g.
// "Number of movements ; Short-term Visitors arriving ; NSW ;".
type Descriptor struct {
	Metric   string
	Category string
	State    string
}

// ParseDescriptor splits s into at most four ";"-separated parts and keeps
// the first three. Missing parts are empty.
func ParseDescriptor(s string) Descriptor {
	parts := strings.SplitN(s, ";", 4)
	get := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		return strings.TrimSpace(parts[i])
	}
	return Descriptor{
		Metric:   get(0),
		Category: get(1),
		State:    strings.ReplaceAll(get(2), ";", ""),
	}
}

// VisaExtractStats counts the rows the extraction discarded.
type VisaExtractStats struct {
	Rows        int // rows in the input
	Matched     int // rows whose descriptor contains the marker
	BadDates    int
	BadValues   int // missing, non-numeric or negative
	Excluded    int
	MissingCols []string
}

// VisaExtractor pulls visitor arrival series out of a cleaned CSV.
type VisaExtractor struct {
	Config     VisaConfig
	Normalizer *Normalizer
	Exclude    []string
}

// Extract turns header->value rows into sorted visa records.
func (e *VisaExtractor) Extract(rows []map[string]string) ([]VisaRecord, VisaExtractStats) {
	st := VisaExtractStats{Rows: len(rows)}
	if len(rows) > 0 {
		for _, col := range []string{e.Config.DescriptorColumn, e.Config.DateColumn, e.Config.ValueColumn} {
			if _, ok := rows[0][col]; !ok {
				st.MissingCols = append(st.MissingCols, col)
			}
		}
	}

	var out []VisaRecord
	for _, row := range rows {
		desc := row[e.Config.DescriptorColumn]
		if !strings.Contains(desc, e.Config.Marker) {
			continue
		}
		st.Matched++

		d := ParseDescriptor(desc)
		raw := row[e.Config.DateColumn]
		date, ok := ParseDateString(raw)
		if !ok {
			// unformatted date cells reach the cleaned CSV as Excel serials
			date, ok = ParseDate(ParseCell(raw))
		}
		if !ok {
			st.BadDates++
			continue
		}
		arrivals, ok := ParseNumber(row[e.Config.ValueColumn])
		if !ok || arrivals < 0 {
			st.BadValues++
			continue
		}
		state := e.Normalizer.Normalize(d.State)
		if slices.Contains(e.Exclude, state) {
			st.Excluded++
			continue
		}
		out = append(out, VisaRecord{
			Date:     date.Format("2006-01-02"),
			State:    state,
			Category: d.Category,
			Arrivals: arrivals,
		})
	}

	slices.SortStableFunc(out, func(a, b VisaRecord) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.State, b.State),
			cmp.Compare(a.Category, b.Category))
	})
	return out, st
}

// Matching returns the rows whose descriptor contains the marker.
func (e *VisaExtractor) Matching(rows []map[string]string) []map[string]string {
	var out []map[string]string
	for _, row := range rows {
		if strings.Contains(row[e.Config.DescriptorColumn], e.Config.Marker) {
			out = append(out, row)
		}
	}
	return out
}

// ColumnProfile describes the numeric content of one column.
type ColumnProfile struct {
	Column  string
	NonNull int
	Min     float64
	Max     float64
}

// ProfileNumericColumns reports every column holding at least one numeric
// value, largest maximum first. It answers "which column has the counts"
// when the layout of a cleaned file is unknown.
func ProfileNumericColumns(rows []map[string]string) []ColumnProfile {
	values := map[string][]float64{}
	var order []string
	for _, row := range rows {
		for col, raw := range row {
			if _, seen := values[col]; !seen {
				values[col] = nil
				order = append(order, col)
			}
			if v, ok := ParseNumber(raw); ok {
				values[col] = append(values[col], v)
			}
		}
	}
	slices.Sort(order)

	var out []ColumnProfile
	for _, col := range order {
		vs := values[col]
		if len(vs) == 0 {
			continue
		}
		lo, _ := stats.Min(vs)
		hi, _ := stats.Max(vs)
		out = append(out, ColumnProfile{Column: col, NonNull: len(vs), Min: lo, Max: hi})
	}
	slices.SortStableFunc(out, func(a, b ColumnProfile) int {
		return cmp.Compare(b.Max, a.Max)
	})
	return out
}

// VisaResult describes one visa extraction run.
type VisaResult struct {
	Input   string
	Output  string
	Records []VisaRecord
	Stats   VisaExtractStats
	Profile []ColumnProfile
}

// VisaPipeline reads a cleaned CSV, extracts visitor arrivals by state
// and category and writes them out.
type VisaPipeline struct {
	Extractor *VisaExtractor
	Output    string
	Diagnose  bool
	Logger    *log.Logger
}

func (p *VisaPipeline) Run(path string) (*VisaResult, error) {
	logger := loggerOrDiscard(p.Logger)

	rows, err := ReadCSVMaps(path)
	if err != nil {
		return nil, err
	}
	records, st := p.Extractor.Extract(rows)
	if len(st.MissingCols) > 0 {
		return nil, fmt.Errorf("columns %v not found in %s (check the visa section of the config)", st.MissingCols, path)
	}
	if dropped := st.BadDates + st.BadValues; dropped > 0 {
		logger.Warn("dropped rows", "bad_dates", st.BadDates, "bad_values", st.BadValues)
	}
	logger.Info("extracted visitor series",
		"rows", st.Rows, "matched", st.Matched, "excluded", st.Excluded, "records", len(records))

	res := &VisaResult{Input: path, Output: p.Output, Records: records, Stats: st}
	if p.Diagnose {
		res.Profile = ProfileNumericColumns(p.Extractor.Matching(rows))
	}

	if err := WriteCSV(p.Output, records); err != nil {
		return nil, err
	}
	return res, nil
}
