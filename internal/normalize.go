package internal

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Scheme selects which lookup table turns category labels into state codes.
type Scheme string

const (
	SchemeNames    Scheme = "names"
	SchemeSeriesID Scheme = "series-id"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeNames, "":
		return SchemeNames, nil
	case SchemeSeriesID, "series", "seriesid":
		return SchemeSeriesID, nil
	}
	return "", fmt.Errorf("unknown normalization scheme %q (available: %s, %s)", s, SchemeNames, SchemeSeriesID)
}

// CanonicalStates is the closed set of per-state codes written to output.
var CanonicalStates = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"}

// DefaultExclusions are aggregate codes dropped from per-state output.
var DefaultExclusions = []string{"TOTAL", "OT"}

// DefaultStateNames maps full state names to codes. Codes map to themselves
// so that normalizing twice changes nothing.
var DefaultStateNames = map[string]string{
	"New South Wales":              "NSW",
	"NSW":                          "NSW",
	"Victoria":                     "VIC",
	"VIC":                          "VIC",
	"Queensland":                   "QLD",
	"QLD":                          "QLD",
	"South Australia":              "SA",
	"SA":                           "SA",
	"Western Australia":            "WA",
	"WA":                           "WA",
	"Tasmania":                     "TAS",
	"TAS":                          "TAS",
	"Northern Territory":           "NT",
	"NT":                           "NT",
	"Australian Capital Territory": "ACT",
	"ACT":                          "ACT",
	"Other Territories":            "OT",
	"OT":                           "OT",
	"Australia":                    "TOTAL",
	"TOTAL":                        "TOTAL",
}

// DefaultSeriesIDs maps ABS series identifiers of the short-term visitor
// arrivals by state of stay table to state codes.
var DefaultSeriesIDs = map[string]string{
	"A85247916X": "NSW",
	"A85247923W": "VIC",
	"A85247917A": "QLD",
	"A85247924X": "SA",
	"A85247921T": "WA",
	"A85247918C": "TAS",
	"A85247920R": "NT",
	"A85247919F": "ACT",
	"A85247922V": "OT",
	"A85247925A": "TOTAL",
}

// DefaultVisaStateNames maps the abbreviations used in series descriptors.
var DefaultVisaStateNames = map[string]string{
	"NSW":                             "NSW",
	"Vic":                             "VIC",
	"Qld":                             "QLD",
	"SA":                              "SA",
	"WA":                              "WA",
	"Tas":                             "TAS",
	"NT":                              "NT",
	"ACT":                             "ACT",
	"Other Territories":               "OT",
	"Total (State of residence/stay)": "TOTAL",
}

var seriesIDPattern = regexp.MustCompile(`^A\d{7,8}[A-Z]$`)

// LooksLikeSeriesID reports whether s has the shape of an ABS series identifier.
func LooksLikeSeriesID(s string) bool {
	return seriesIDPattern.MatchString(strings.TrimSpace(s))
}

// Normalizer maps raw category labels onto state codes using exactly one
// lookup table. Unknown labels pass through trimmed.
type Normalizer struct {
	Scheme Scheme
	Map    map[string]string
}

// NewNormalizer builds a normalizer for scheme, starting from the default
// table and applying overrides on top.
func NewNormalizer(scheme Scheme, overrides map[string]string) *Normalizer {
	var base map[string]string
	switch scheme {
	case SchemeSeriesID:
		base = DefaultSeriesIDs
	default:
		base = DefaultStateNames
	}
	m := maps.Clone(base)
	maps.Copy(m, overrides)
	return &Normalizer{Scheme: scheme, Map: m}
}

// NewVisaNormalizer builds the normalizer used for series descriptors.
func NewVisaNormalizer(overrides map[string]string) *Normalizer {
	m := maps.Clone(DefaultVisaStateNames)
	maps.Copy(m, overrides)
	return &Normalizer{Scheme: SchemeNames, Map: m}
}

func (n *Normalizer) Normalize(label string) string {
	label = strings.TrimSpace(label)
	if code, ok := n.Map[label]; ok {
		return code
	}
	return label
}

// Unmapped returns the labels the normalizer has no entry for, sorted.
func (n *Normalizer) Unmapped(labels []string) []string {
	var out []string
	for _, l := range labels {
		if _, ok := n.Map[strings.TrimSpace(l)]; !ok && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return out
}

// NormalizeMeasures converts melted measures into long records.
func (n *Normalizer) NormalizeMeasures(measures []WideMeasure) []LongRecord {
	out := make([]LongRecord, 0, len(measures))
	for _, m := range measures {
		out = append(out, LongRecord{
			YearMonth: YearMonth(m.Date),
			State:     n.Normalize(m.Label),
			Arrivals:  m.Value,
		})
	}
	return out
}

// IsCanonicalState reports whether code is one of CanonicalStates.
func IsCanonicalState(code string) bool {
	return slices.Contains(CanonicalStates, code)
}
