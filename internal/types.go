package internal

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is a single spreadsheet value. Text cells keep the trimmed string,
// number cells keep the parsed float.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

func Empty() Cell             { return Cell{Kind: CellEmpty} }
func Number(v float64) Cell   { return Cell{Kind: CellNumber, Num: v} }
func Text(s string) Cell      { return Cell{Kind: CellText, Text: s} }
func (c Cell) IsEmpty() bool  { return c.Kind == CellEmpty }
func (c Cell) IsNumber() bool { return c.Kind == CellNumber }

// String renders the cell the way it would appear as a column label.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// ParseCell classifies a formatted cell string. Blank strings are empty,
// anything ParseNumber accepts is a number, the rest is text.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty()
	}
	if v, ok := ParseNumber(s); ok {
		return Number(v)
	}
	return Text(s)
}

// ParseNumber accepts plain and grouped numbers ("12,345", "1 234.5") with
// an optional sign and exponent. A trailing percent sign divides by 100, so
// a cell excelize renders as "12.50%" reads back as the 0.125 it stores.
// Hex floats, NaN and Inf are not numbers in a spreadsheet and report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = numberGrouping.Replace(strings.TrimSuffix(s, "%"))
	if s == "" || strings.ContainsFunc(s, notDecimalRune) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return v, true
}

var numberGrouping = strings.NewReplacer(",", "", " ", "", "\u00a0", "")

func notDecimalRune(r rune) bool {
	return (r < '0' || r > '9') && !strings.ContainsRune(".eE+-", r)
}

// Sheet is one worksheet as an ordered grid of cells.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Workbook is an ordered collection of sheets read from one file.
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Candidate is a sheet reinterpreted with a chosen header row.
// Columns and every row of Rows have the same length.
type Candidate struct {
	Sheet     string
	HeaderRow int
	Columns   []string
	Rows      [][]Cell
}

// Column returns the values of column i.
func (c *Candidate) Column(i int) []Cell {
	out := make([]Cell, len(c.Rows))
	for r, row := range c.Rows {
		out[r] = row[i]
	}
	return out
}

// WideMeasure is one (date, label, value) triple produced by the melt.
type WideMeasure struct {
	Date  time.Time
	Label string
	Value float64
}

// LongRecord is a row of the tidy state table.
type LongRecord struct {
	YearMonth string  `csv:"year_month"`
	State     string  `csv:"state"`
	Arrivals  float64 `csv:"arrivals"`
}

// VisaRecord is a row of the tidy visa-category table.
type VisaRecord struct {
	Date     string  `csv:"date"`
	State    string  `csv:"state"`
	Category string  `csv:"category"`
	Arrivals float64 `csv:"arrivals"`
}
