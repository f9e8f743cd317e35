package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"preview-studio/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("api url = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("poll interval = %s, want 2s", cfg.PollInterval)
	}
	if cfg.ExportDir == "" {
		t.Fatal("expected non-empty export dir")
	}
	if cfg.ExportFormat != domain.ExportFormatPNG {
		t.Fatalf("export format = %q, want png", cfg.ExportFormat)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("api url = %q, want default", got.APIBaseURL)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		APIBaseURL:         "https://render.example.com",
		ExportDir:          "/out",
		ExportFormat:       domain.ExportFormatWEBP,
		PollInterval:       500 * time.Millisecond,
		MaxParallelRenders: 8,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreSaveReplacesFile checks a second save overwrites the first and
// leaves no temporary file behind.
func TestJSONStoreSaveReplacesFile(t *testing.T) {
	home := t.TempDir()
	path := SettingsPath(home)
	if path != filepath.Join(home, ".preview-studio", "settings.json") {
		t.Fatalf("path = %q", path)
	}
	store := NewJSONStore(path)

	first := DefaultSettings()
	first.APIBaseURL = "http://first:8000"
	if err := store.Save(first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := first
	second.APIBaseURL = "http://second:8000"
	if err := store.Save(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.APIBaseURL != "http://second:8000" {
		t.Fatalf("api url = %q", got.APIBaseURL)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

// TestJSONStoreLoadFillsMissingFields checks older files gain new defaults.
func TestJSONStoreLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"apiBaseUrl":"http://backend:9000"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.APIBaseURL != "http://backend:9000" {
		t.Fatalf("api url = %q", got.APIBaseURL)
	}
	if got.MaxParallelRenders != DefaultMaxParallelRenders {
		t.Fatalf("max parallel = %d, want %d", got.MaxParallelRenders, DefaultMaxParallelRenders)
	}
	if got.PollInterval != DefaultPollInterval {
		t.Fatalf("poll interval = %s, want %s", got.PollInterval, DefaultPollInterval)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
