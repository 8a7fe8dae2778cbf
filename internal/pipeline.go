package internal

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// StateResult describes one workbook converted to a by-state table.
type StateResult struct {
	Input        string
	Output       string
	Sheet        string
	HeaderRow    int
	Likeness     Likeness
	Melt         MeltStats
	Scheme       Scheme
	Unmapped     []string // labels the normalizer had no entry for
	Excluded     int
	Records      []LongRecord
	NonCanonical []string // state codes outside CanonicalStates that were written
}

// StatePipeline finds the data table in a workbook, reshapes it to
// (year_month, state, arrivals) and writes it.
type StatePipeline struct {
	Scanner    ScanStrategy
	Normalizer *Normalizer
	Exclude    []string
	Logger     *log.Logger
}

// Convert runs every stage except writing.
func (p *StatePipeline) Convert(wb *Workbook) (*StateResult, error) {
	logger := loggerOrDiscard(p.Logger)

	scanner := p.Scanner
	if scanner.Logger == nil {
		scanner.Logger = logger
	}
	found, err := scanner.Scan(wb)
	if err != nil {
		return nil, err
	}
	cand := found.Candidate
	logger.Info("found data table",
		"file", wb.Path,
		"sheet", cand.Sheet,
		"header_row", cand.HeaderRow,
		"rows", found.Likeness.Rows,
		"numeric_columns", found.Likeness.NumericColumns)

	measures, meltStats := Melt(cand)
	if len(meltStats.DroppedColumns) > 0 {
		logger.Warn("dropped non-numeric columns", "columns", strings.Join(meltStats.DroppedColumns, ", "))
	}
	if meltStats.DroppedRows > 0 || meltStats.DroppedValues > 0 {
		logger.Warn("dropped rows and values",
			"undated_rows", meltStats.DroppedRows,
			"missing_or_negative_values", meltStats.DroppedValues)
	}

	var labels []string
	for _, m := range measures {
		if !slices.Contains(labels, m.Label) {
			labels = append(labels, m.Label)
		}
	}
	res := &StateResult{
		Input:     wb.Path,
		Sheet:     cand.Sheet,
		HeaderRow: cand.HeaderRow,
		Likeness:  found.Likeness,
		Melt:      meltStats,
		Scheme:    p.Normalizer.Scheme,
		Unmapped:  p.Normalizer.Unmapped(labels),
	}
	if p.Normalizer.Scheme == SchemeNames && countSeriesIDs(res.Unmapped) > 0 {
		logger.Warn("column labels look like ABS series IDs but the names scheme is in use; consider --scheme series-id",
			"labels", strings.Join(res.Unmapped, ", "))
	} else if len(res.Unmapped) > 0 {
		logger.Warn("labels without a state mapping pass through unchanged",
			"scheme", p.Normalizer.Scheme,
			"labels", strings.Join(res.Unmapped, ", "))
	}

	long := p.Normalizer.NormalizeMeasures(measures)
	res.Records = FinalizeLong(long, p.Exclude)
	res.Excluded = len(long) - len(res.Records)

	for _, r := range res.Records {
		if !IsCanonicalState(r.State) && !slices.Contains(res.NonCanonical, r.State) {
			res.NonCanonical = append(res.NonCanonical, r.State)
		}
	}
	if len(res.NonCanonical) > 0 {
		logger.Warn("output contains non-canonical state codes", "codes", strings.Join(res.NonCanonical, ", "))
	}
	return res, nil
}

// Run reads the workbook at path, converts it and writes the result to output.
func (p *StatePipeline) Run(path, output string) (*StateResult, error) {
	wb, err := ReadWorkbook(path)
	if err != nil {
		return nil, err
	}
	res, err := p.Convert(wb)
	if err != nil {
		return nil, err
	}
	if err := WriteCSV(output, res.Records); err != nil {
		return nil, err
	}
	res.Output = output
	loggerOrDiscard(p.Logger).Info("wrote by-state table", "output", output, "records", len(res.Records))
	return res, nil
}

// StateOutputPath picks the output file for input. A single input goes to
// output as given; with several inputs each gets "<base>_by_state.csv"
// next to output.
func StateOutputPath(input, output string, multiple bool) string {
	if !multiple {
		return output
	}
	_, path := ParseFileArg(input)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(output), base+"_by_state.csv")
}

// StateOutputPaths resolves the output file of every input up front and
// fails if two inputs would write the same file.
func StateOutputPaths(inputs []string, output string) ([]string, error) {
	paths := make([]string, len(inputs))
	owners := make(map[string]string, len(inputs))
	for i, in := range inputs {
		p := StateOutputPath(in, output, len(inputs) > 1)
		key := filepath.Clean(p)
		if prev, ok := owners[key]; ok {
			return nil, fmt.Errorf("inputs %s and %s would both write %s", prev, in, p)
		}
		owners[key] = in
		paths[i] = p
	}
	return paths, nil
}

func countSeriesIDs(labels []string) int {
	n := 0
	for _, l := range labels {
		if LooksLikeSeriesID(l) {
			n++
		}
	}
	return n
}
