package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"preview-studio/internal/domain"
)

// Environment overrides applied on top of persisted settings.
const (
	EnvAPIURL       = "PREVIEW_API_URL"
	EnvExportDir    = "PREVIEW_EXPORT_DIR"
	EnvPollInterval = "PREVIEW_POLL_INTERVAL"
	EnvMaxParallel  = "PREVIEW_MAX_PARALLEL"
)

// LoadDotEnv loads variables from the given .env files when they exist.
// Missing files are not an error; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays PREVIEW_* variables from lookup onto cfg.
func ApplyEnv(cfg domain.Settings, lookup func(string) (string, bool)) (domain.Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvExportDir); ok && strings.TrimSpace(v) != "" {
		cfg.ExportDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPollInterval); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", EnvPollInterval, err)
		}
		cfg.PollInterval = d
	}
	if v, ok := lookup(EnvMaxParallel); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", EnvMaxParallel, err)
		}
		cfg.MaxParallelRenders = n
	}

	return WithDefaults(cfg), nil
}
