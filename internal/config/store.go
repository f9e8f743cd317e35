package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"preview-studio/internal/domain"
)

// SettingsDir and SettingsFile locate the preview-studio settings under the
// user's home directory.
const (
	SettingsDir  = ".preview-studio"
	SettingsFile = "settings.json"
)

// Store loads and saves the backend URL, export and polling settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// SettingsPath returns ~/.preview-studio/settings.json for homeDir.
func SettingsPath(homeDir string) string {
	return filepath.Join(homeDir, SettingsDir, SettingsFile)
}

// JSONStore keeps preview-studio settings in one JSON file.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the settings file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields DefaultSettings, and
// fields absent from files written by older versions are filled in.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return WithDefaults(settings), nil
}

// Save writes settings to a temporary file next to the target and renames it
// into place, so a crash never leaves a truncated settings file.
func (s *JSONStore) Save(settings domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
