package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger returns a logger writing to w at the named level
// (debug, info, warn, error).
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: false,
		Prefix:          "arrivals",
	}), nil
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
