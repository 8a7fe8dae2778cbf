package internal

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FinalizeLong drops excluded state codes and sorts by (year_month, state).
func FinalizeLong(records []LongRecord, exclude []string) []LongRecord {
	out := make([]LongRecord, 0, len(records))
	for _, r := range records {
		if slices.Contains(exclude, r.State) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b LongRecord) int {
		return cmp.Or(cmp.Compare(a.YearMonth, b.YearMonth), cmp.Compare(a.State, b.State))
	})
	return out
}

// WriteCSV writes rows (a slice of csv-tagged structs) to path with a header
// row and a UTF-8 byte order mark, creating the parent directory if needed.
func WriteCSV(path string, rows any) error {
	return writeWithBOM(path, func(w io.Writer) error {
		return gocsv.Marshal(rows, w)
	})
}

// WriteTable writes a header and string rows to path, with the same byte
// order mark and CSV dialect as WriteCSV.
func WriteTable(path string, header []string, rows [][]string) error {
	return writeWithBOM(path, func(w io.Writer) error {
		cw := gocsv.DefaultCSVWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for i, row := range rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing record %d: %w", i, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeWithBOM(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	if err := write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads a CSV file written by WriteCSV (or any UTF-8 CSV, with or
// without a byte order mark) into out, a pointer to a slice of structs.
func ReadCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	if err := gocsv.Unmarshal(r, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ReadCSVMaps reads a CSV file into one header->value map per row.
func ReadCSVMaps(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}
