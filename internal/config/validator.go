package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateCheck(cfg *Config) error {
	for i, ext := range cfg.Check.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("check.extensions[%d] must not be empty", i)
		}
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("check.extensions[%d] %q must not contain a path separator", i, ext)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	for _, pattern := range append(append([]string{}, cfg.Watch.ExcludeDirs...), cfg.Watch.ExcludeFiles...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("watch exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateLog(cfg *Config) error {
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", level)
}

// SlogLevel is the configured log level. Invalid levels were rejected by Load.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}
