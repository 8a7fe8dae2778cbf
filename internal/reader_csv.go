package internal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadDelimited reads a CSV file as a single-sheet workbook named after
// the file. Rows may have different lengths.
func ReadDelimited(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet := Sheet{Name: name, Rows: make([][]Cell, len(records))}
	for i, rec := range records {
		cells := make([]Cell, len(rec))
		for j, raw := range rec {
			cells[j] = ParseCell(raw)
		}
		sheet.Rows[i] = cells
	}
	return &Workbook{Path: path, Sheets: []Sheet{sheet}}, nil
}
