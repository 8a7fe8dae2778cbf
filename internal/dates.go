package internal

import (
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Slash layouts are day-first since the
// source workbooks are Australian.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan-2006",
	"Jan-06",
	"Jan 2006",
	"January 2006",
	"January-2006",
	"2006-01",
	"2006/01",
	// excelize renders built-in number formats 14 and 22 month-first
	"1-2-06",
	"1/2/06 15:04",
}

// maxExcelSerial is 9999-12-31, the last date Excel can represent.
const maxExcelSerial = 2958465

// ParseDate coerces a cell to a date. Text is matched against the known
// layouts, numbers are read as Excel serial dates. Anything else reports
// false instead of failing.
func ParseDate(c Cell) (time.Time, bool) {
	switch c.Kind {
	case CellText:
		return ParseDateString(c.Text)
	case CellNumber:
		return excelSerialToTime(c.Num)
	default:
		return time.Time{}, false
	}
}

// ParseDateString tries every known layout against s.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// "Jan-2023" style labels sometimes come upper-cased
	if t, err := time.Parse("Jan-2006", titleMonth(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func excelSerialToTime(v float64) (time.Time, bool) {
	if v <= 0 || v > maxExcelSerial || math.IsNaN(v) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func titleMonth(s string) string {
	if len(s) < 3 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:3]) + s[3:]
}

// YearMonth truncates a date to its calendar month key.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}
