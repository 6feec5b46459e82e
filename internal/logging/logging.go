package logging

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Init configures the process-wide logger.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "text", "json" or "logfmt" (defaults to "text")
func Init(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "fx-sentiment",
	})

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	log.SetDefault(logger)
}
