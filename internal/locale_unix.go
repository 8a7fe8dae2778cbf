//go:build !windows && !darwin

package internal

// osLocale has nothing beyond the environment to consult on Linux and the
// BSDs, so arrival counts are grouped per LC_NUMERIC/LC_ALL/LANG or en-AU.
func osLocale() string {
	return ""
}
