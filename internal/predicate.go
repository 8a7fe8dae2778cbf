package internal

// Likeness is what a Predicate measured on a candidate table.
type Likeness struct {
	Rows           int
	DateRatio      float64
	NumericColumns int
	OK             bool
}

// Predicate decides whether a candidate table looks like the data region.
type Predicate interface {
	Evaluate(c *Candidate) Likeness
}

// PredicateFunc is a function that implements Predicate
type PredicateFunc func(c *Candidate) Likeness

func (f PredicateFunc) Evaluate(c *Candidate) Likeness {
	return f(c)
}

// DataLikeness accepts a table whose first column is mostly dates and
// which has enough all-numeric measure columns.
type DataLikeness struct {
	MinDateRatio      float64 // date_ratio must be strictly greater
	MinNumericColumns int     // numeric_count must be at least this
}

const (
	DefaultMinDateRatio      = 0.6
	DefaultMinNumericColumns = 6
)

func DefaultDataLikeness() DataLikeness {
	return DataLikeness{
		MinDateRatio:      DefaultMinDateRatio,
		MinNumericColumns: DefaultMinNumericColumns,
	}
}

func (d DataLikeness) Evaluate(c *Candidate) Likeness {
	l := Likeness{Rows: len(c.Rows)}
	if len(c.Rows) == 0 || len(c.Columns) == 0 {
		return l
	}
	l.DateRatio = DateRatio(c.Column(0))
	for i := 1; i < len(c.Columns); i++ {
		if IsNumericColumn(c.Column(i)) {
			l.NumericColumns++
		}
	}
	l.OK = l.DateRatio > d.MinDateRatio && l.NumericColumns >= d.MinNumericColumns
	return l
}

// DateRatio is the share of non-empty cells that parse as dates.
// A column with no values has ratio 0.
func DateRatio(cells []Cell) float64 {
	present, parsed := 0, 0
	for _, c := range cells {
		if c.IsEmpty() {
			continue
		}
		present++
		if _, ok := ParseDate(c); ok {
			parsed++
		}
	}
	if present == 0 {
		return 0
	}
	return float64(parsed) / float64(present)
}

// IsNumericColumn reports whether every non-empty cell is a number.
// An entirely empty column counts as numeric.
func IsNumericColumn(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsEmpty() && !c.IsNumber() {
			return false
		}
	}
	return true
}
