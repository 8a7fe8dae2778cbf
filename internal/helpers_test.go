package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// cells builds a row: strings go through ParseCell, ints and floats are
// numbers and nil is an empty cell.
func cells(vals ...any) []Cell {
	out := make([]Cell, len(vals))
	for i, v := range vals {
		switch v := v.(type) {
		case nil:
			out[i] = Empty()
		case string:
			out[i] = ParseCell(v)
		case int:
			out[i] = Number(float64(v))
		case float64:
			out[i] = Number(v)
		default:
			panic("unsupported cell value")
		}
	}
	return out
}

var stateHeader = []any{"Date", "NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT"}

// scenarioSheet is two dated rows of seven states plus one undated row.
func scenarioSheet(name string) Sheet {
	return Sheet{Name: name, Rows: [][]Cell{
		cells(stateHeader...),
		cells("2023-01-01", 10, 20, 5, 3, 2, 1, 0),
		cells("2023-02-01", 11, 19, 6, 4, 2, 1, 0),
		cells("bad-row", -5, -5, -5, -5, -5, -5, -5),
	}}
}

type fixtureSheet struct {
	Name string
	Rows [][]any
}

// writeXLSX saves sheets to a workbook in a temp dir and returns its path.
func writeXLSX(t *testing.T, name string, sheets ...fixtureSheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.Name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// absSheet lays out a by-state table the way ABS time series workbooks do:
// descriptor row, metadata rows ending in "Series ID", then dated
// observations for NSW, VIC, QLD, SA, WA, TAS, NT, ACT and the total.
func absSheet(name string, rows ...[]any) fixtureSheet {
	out := [][]any{
		{"", "Arrivals ;  New South Wales ;", "Arrivals ;  Victoria ;", "Arrivals ;  Queensland ;",
			"Arrivals ;  South Australia ;", "Arrivals ;  Western Australia ;", "Arrivals ;  Tasmania ;",
			"Arrivals ;  Northern Territory ;", "Arrivals ;  Australian Capital Territory ;", "Arrivals ;  Australia ;"},
		{"Unit", "Number", "Number", "Number", "Number", "Number", "Number", "Number", "Number", "Number"},
		{"Series Type", "Original", "Original", "Original", "Original", "Original", "Original", "Original", "Original", "Original"},
		{"Frequency", "Month", "Month", "Month", "Month", "Month", "Month", "Month", "Month", "Month"},
		{"Series ID", "A85247916X", "A85247923W", "A85247917A", "A85247924X", "A85247921T", "A85247918C", "A85247920R", "A85247919F", "A85247925A"},
	}
	out = append(out, rows...)
	return fixtureSheet{Name: name, Rows: out}
}
