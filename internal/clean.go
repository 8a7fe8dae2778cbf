package internal

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
)

type NumericFill string

const (
	FillMean NumericFill = "mean"
	FillZero NumericFill = "zero"
	FillDrop NumericFill = "drop"
)

type TextFill string

const (
	FillLiteral  TextFill = "literal"
	FillTextDrop TextFill = "drop"
)

// DefaultFillLiteral replaces missing text under the literal policy.
const DefaultFillLiteral = "Unknown"

// FillPolicy says what to do with missing values, per column kind.
type FillPolicy struct {
	Numeric NumericFill
	Text    TextFill
	Literal string
}

func DefaultFillPolicy() FillPolicy {
	return FillPolicy{Numeric: FillMean, Text: FillLiteral, Literal: DefaultFillLiteral}
}

// ParseFillPolicy validates the policy names; empty values take the defaults.
func ParseFillPolicy(numeric, text, literal string) (FillPolicy, error) {
	p := DefaultFillPolicy()
	switch NumericFill(strings.ToLower(numeric)) {
	case "":
	case FillMean, FillZero, FillDrop:
		p.Numeric = NumericFill(strings.ToLower(numeric))
	default:
		return p, fmt.Errorf("invalid fill_numeric %q (available: mean, zero, drop)", numeric)
	}
	switch TextFill(strings.ToLower(text)) {
	case "":
	case FillLiteral, FillTextDrop:
		p.Text = TextFill(strings.ToLower(text))
	default:
		return p, fmt.Errorf("invalid fill_text %q (available: literal, drop)", text)
	}
	if literal != "" {
		p.Literal = literal
	}
	return p, nil
}

// CleanTable is a header plus string rows, all of the header's width.
type CleanTable struct {
	Columns []string
	Rows    [][]string
}

// CleanStats summarizes one cleaning run.
type CleanStats struct {
	Rows           int
	Duplicates     int
	DroppedRows    int
	FilledNumeric  int
	FilledText     int
	NumericColumns []string
}

var nonWord = regexp.MustCompile(`[^\w_]+`)

// StandardizeColumn lower-cases a column label, turns spaces into
// underscores and strips everything that is not a word character.
// "Unnamed: 0" becomes "unnamed_0".
func StandardizeColumn(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	return nonWord.ReplaceAllString(s, "")
}

// CleanSheet treats the first row of sheet as the header and applies the
// standard cleanup: column names standardized, duplicate rows dropped,
// missing values filled per policy and text trimmed.
func CleanSheet(sheet Sheet, policy FillPolicy) (*CleanTable, CleanStats, error) {
	var st CleanStats
	if len(sheet.Rows) == 0 {
		return nil, st, fmt.Errorf("sheet %q is empty", sheet.Name)
	}

	cand := BuildCandidate(sheet, 0, nil)
	table := &CleanTable{Columns: make([]string, len(cand.Columns))}
	for i, label := range cand.Columns {
		table.Columns[i] = StandardizeColumn(label)
	}

	rows := dropDuplicateRows(cand.Rows)
	st.Duplicates = len(cand.Rows) - len(rows)

	numeric := make([]bool, len(cand.Columns))
	means := make([]float64, len(cand.Columns))
	for i := range cand.Columns {
		col := make([]Cell, len(rows))
		var values []float64
		for r, row := range rows {
			col[r] = row[i]
			if row[i].IsNumber() {
				values = append(values, row[i].Num)
			}
		}
		// a column with no values at all counts as text
		numeric[i] = len(values) > 0 && IsNumericColumn(col)
		if numeric[i] {
			st.NumericColumns = append(st.NumericColumns, table.Columns[i])
			if mean, err := stats.Mean(values); err == nil {
				means[i] = mean
			}
		}
	}

	for _, row := range rows {
		out := make([]string, len(row))
		keep := true
		for i, c := range row {
			switch {
			case !c.IsEmpty():
				out[i] = strings.TrimSpace(c.String())
			case numeric[i]:
				switch policy.Numeric {
				case FillDrop:
					keep = false
				case FillZero:
					out[i] = "0"
					st.FilledNumeric++
				default:
					out[i] = strconv.FormatFloat(means[i], 'f', -1, 64)
					st.FilledNumeric++
				}
			default:
				if policy.Text == FillTextDrop {
					keep = false
				} else {
					out[i] = policy.Literal
					st.FilledText++
				}
			}
		}
		if !keep {
			st.DroppedRows++
			continue
		}
		table.Rows = append(table.Rows, out)
	}
	st.Rows = len(table.Rows)
	return table, st, nil
}

func dropDuplicateRows(rows [][]Cell) [][]Cell {
	seen := make(map[string]bool, len(rows))
	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, c := range row {
			parts[i] = strconv.Itoa(int(c.Kind)) + ":" + c.String()
		}
		key := strings.Join(parts, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

// CleanedPath returns where the cleaned copy of input goes inside outDir.
func CleanedPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+"_clean.csv")
}

// CleanResult describes one cleaned file.
type CleanResult struct {
	Input  string
	Output string
	Sheet  string
	Stats  CleanStats
}

// Cleaner converts workbooks into cleaned CSV copies.
type Cleaner struct {
	Policy FillPolicy
	OutDir string
	Logger *log.Logger
}

// CleanFile cleans the first sheet of the workbook at path.
func (c *Cleaner) CleanFile(path string) (*CleanResult, error) {
	wb, err := ReadWorkbook(path)
	if err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", wb.Path)
	}
	sheet := wb.Sheets[0]

	table, st, err := CleanSheet(sheet, c.Policy)
	if err != nil {
		return nil, err
	}

	out := CleanedPath(wb.Path, c.OutDir)
	if err := WriteTable(out, table.Columns, table.Rows); err != nil {
		return nil, err
	}

	logger := loggerOrDiscard(c.Logger)
	logger.Info("cleaned file",
		"input", wb.Path,
		"output", out,
		"rows", st.Rows,
		"duplicates", st.Duplicates,
		"dropped", st.DroppedRows,
		"filled_numeric", st.FilledNumeric,
		"filled_text", st.FilledText)

	return &CleanResult{Input: wb.Path, Output: out, Sheet: sheet.Name, Stats: st}, nil
}
