package config

import (
	"os"
	"path/filepath"
	"time"

	"preview-studio/internal/domain"
)

const (
	DefaultAPIBaseURL         = "http://localhost:8000"
	DefaultPollInterval       = 2 * time.Second
	DefaultMaxParallelRenders = 4
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		APIBaseURL:         DefaultAPIBaseURL,
		ExportDir:          filepath.Join(homeDir, "Pictures", "App Store Previews"),
		ExportFormat:       domain.ExportFormatPNG,
		PollInterval:       DefaultPollInterval,
		MaxParallelRenders: DefaultMaxParallelRenders,
	}
}

// WithDefaults fills zero-valued fields from DefaultSettings.
func WithDefaults(cfg domain.Settings) domain.Settings {
	def := DefaultSettings()
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = def.APIBaseURL
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = def.ExportDir
	}
	switch cfg.ExportFormat {
	case domain.ExportFormatPNG, domain.ExportFormatJPG, domain.ExportFormatWEBP:
	default:
		cfg.ExportFormat = def.ExportFormat
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxParallelRenders <= 0 {
		cfg.MaxParallelRenders = def.MaxParallelRenders
	}
	return cfg
}
