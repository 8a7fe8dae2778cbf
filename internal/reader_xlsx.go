package internal

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads every sheet of an Excel workbook as formatted cell values.
// Dates come back as text in the cell's number format, numbers with any
// grouping the format applies; ParseCell undoes both.
func ReadXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		sheet := Sheet{Name: name, Rows: make([][]Cell, len(rows))}
		for i, row := range rows {
			cells := make([]Cell, len(row))
			for j, raw := range row {
				cells[j] = ParseCell(raw)
			}
			sheet.Rows[i] = cells
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
