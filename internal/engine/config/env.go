package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// The getenv parameter abstracts os.Getenv for testability.
func applyEnvOverrides(cfg *Config, getenv func(string) string, log *slog.Logger) {
	if s := getenv("HUNKSTAGE_CONTEXT"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			log.Warn("invalid HUNKSTAGE_CONTEXT value, ignoring", "value", s, "error", err)
		} else {
			cfg.ContextLines = n
		}
	}

	if bin := getenv("HUNKSTAGE_GIT"); bin != "" {
		cfg.GitBinary = bin
	}

	if s := getenv("HUNKSTAGE_DEBOUNCE"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			log.Warn("invalid HUNKSTAGE_DEBOUNCE value, ignoring", "value", s, "error", err)
		} else {
			cfg.Watch.Debounce = d
		}
	}

	if noColor := getenv("HUNKSTAGE_NO_COLOR"); noColor != "" {
		// Any truthy value disables color.
		noColor = strings.ToLower(noColor)
		if noColor == "1" || noColor == "true" || noColor == "yes" {
			cfg.OutputColor = false
		}
	}
}
