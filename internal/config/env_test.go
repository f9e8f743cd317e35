package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// TestApplyEnvOverridesSettings verifies PREVIEW_* variables win.
func TestApplyEnvOverridesSettings(t *testing.T) {
	cfg, err := ApplyEnv(DefaultSettings(), mapLookup(map[string]string{
		EnvAPIURL:       " http://render:8080 ",
		EnvExportDir:    "/tmp/exports",
		EnvPollInterval: "250ms",
		EnvMaxParallel:  "2",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.APIBaseURL != "http://render:8080" {
		t.Fatalf("api url = %q", cfg.APIBaseURL)
	}
	if cfg.ExportDir != "/tmp/exports" {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval = %s", cfg.PollInterval)
	}
	if cfg.MaxParallelRenders != 2 {
		t.Fatalf("max parallel = %d", cfg.MaxParallelRenders)
	}
}

// TestApplyEnvRejectsBadDuration checks parse errors are surfaced.
func TestApplyEnvRejectsBadDuration(t *testing.T) {
	_, err := ApplyEnv(DefaultSettings(), mapLookup(map[string]string{EnvPollInterval: "soon"}))
	if err == nil {
		t.Fatal("expected duration parse error")
	}
}

// TestLoadDotEnvMissingFileIsIgnored checks optional .env behavior.
func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
}

// TestLoadDotEnvSetsVariables checks values from a .env file reach the environment.
func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PREVIEW_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PREVIEW_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("PREVIEW_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("env = %q, want from-file", got)
	}
}
