package cli

import (
	"log/slog"
	"os"
	"strings"
)

const (
	envCargo  = "CARGO"
	envDryRun = "BOOTIMAGE_DRY_RUN"
	envLog    = "BOOTIMAGE_LOG"
)

// settings are the environment overrides honored by the dispatcher.
type settings struct {
	cargo    string
	dryRun   bool
	logLevel slog.Level
}

func settingsFromEnv() settings {
	return settings{
		cargo:    envOr(envCargo, "cargo"),
		dryRun:   truthy(os.Getenv(envDryRun)),
		logLevel: parseLogLevel(os.Getenv(envLog)),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
