//go:build darwin

package internal

import (
	"os/exec"
	"strings"
)

// osLocale reads the AppleLocale preference ("en_AU", "sv_SE"), which
// decides digit grouping of arrival counts when the terminal sets no
// locale variables.
func osLocale() string {
	out, err := exec.Command("defaults", "read", "-g", "AppleLocale").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
