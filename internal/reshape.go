package internal

// MeltStats counts what the melt discarded.
type MeltStats struct {
	DroppedColumns []string // measure columns with non-numeric values
	DroppedRows    int      // rows whose date did not parse
	DroppedValues  int      // missing or negative measurements
}

// Melt turns the wide candidate (date column + one column per category)
// into one measure per row and category. Non-numeric measure columns,
// rows with an unparseable date and missing or negative values are
// skipped, not reported as errors.
func Melt(c *Candidate) ([]WideMeasure, MeltStats) {
	var stats MeltStats
	if len(c.Columns) == 0 {
		return nil, stats
	}

	var measureCols []int
	for i := 1; i < len(c.Columns); i++ {
		if IsNumericColumn(c.Column(i)) {
			measureCols = append(measureCols, i)
		} else {
			stats.DroppedColumns = append(stats.DroppedColumns, c.Columns[i])
		}
	}

	var out []WideMeasure
	for _, row := range c.Rows {
		date, ok := ParseDate(row[0])
		if !ok {
			stats.DroppedRows++
			continue
		}
		for _, i := range measureCols {
			cell := row[i]
			if !cell.IsNumber() || cell.Num < 0 {
				stats.DroppedValues++
				continue
			}
			out = append(out, WideMeasure{Date: date, Label: c.Columns[i], Value: cell.Num})
		}
	}
	return out, stats
}
