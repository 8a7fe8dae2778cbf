package internal

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// skipSystemLocale stops DetectNumberFormat from asking the OS once the
// environment has no answer. Tests set it to stay independent of the host.
var skipSystemLocale = false

// localeEnvVars are consulted in order, most specific first
var localeEnvVars = []string{"LC_NUMERIC", "LC_ALL", "LANG"}

// fallbackLocale is used when the system locale is unknown; the source
// statistics are Australian.
var fallbackLocale = language.MustParse("en-AU")

// NumberFormat renders counts with the digit grouping of a locale
type NumberFormat struct {
	Tag     language.Tag
	printer *message.Printer
}

// NumberFormatFor returns a NumberFormat for the given locale
func NumberFormatFor(tag language.Tag) NumberFormat {
	return NumberFormat{Tag: tag, printer: message.NewPrinter(tag)}
}

// DetectNumberFormat picks the locale used to group arrival counts: the
// locale variables first, then the OS preference, then en-AU.
func DetectNumberFormat() NumberFormat {
	locale := localeFromEnv()
	if locale == "" && !skipSystemLocale {
		locale = osLocale()
	}
	if tag := parseLocaleTag(locale); tag != language.Und {
		return NumberFormatFor(tag)
	}
	return NumberFormatFor(fallbackLocale)
}

// localeFromEnv returns the first locale variable that names a real locale.
// "C" and "POSIX" say nothing about grouping and are skipped.
func localeFromEnv() string {
	for _, name := range localeEnvVars {
		switch v := os.Getenv(name); v {
		case "", "C", "POSIX":
		default:
			return v
		}
	}
	return ""
}

// parseLocaleTag converts a POSIX locale string to a language tag.
// Examples: "sv_SE.UTF-8" -> sv-SE, "en_AU@euro" -> en-AU, "" -> und
func parseLocaleTag(locale string) language.Tag {
	base := locale
	// Remove encoding suffix (everything after .)
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	// Remove modifier suffix (everything after @)
	if idx := strings.Index(base, "@"); idx != -1 {
		base = base[:idx]
	}
	if base == "" {
		return language.Und
	}

	// Convert to BCP 47 format: "sv_SE" -> "sv-SE"
	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return language.Und
	}
	return tag
}

// Format formats a count, keeping up to two fraction digits
func (n NumberFormat) Format(v float64) string {
	if n.printer == nil {
		n = NumberFormatFor(fallbackLocale)
	}
	return n.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}
