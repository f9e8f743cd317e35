package diagnostics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
)

// Check ids, also accepted by the fixer.
const (
	CheckAPIURL       = "api_url"
	CheckBackend      = "backend"
	CheckExportDir    = "export_dir"
	CheckExportFormat = "export_format"
)

const healthTimeout = 5 * time.Second

// HealthFunc probes the backend rooted at baseURL.
type HealthFunc func(ctx context.Context, baseURL string) (api.HealthResponse, error)

// Checker validates the backend connection and the export location.
type Checker struct {
	health     HealthFunc
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(health HealthFunc) *Checker {
	return &Checker{
		health:     health,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings domain.Settings) domain.DiagnosticReport {
	urlItem := c.checkAPIURL(settings.APIBaseURL)
	items := []domain.DiagnosticItem{
		urlItem,
		c.checkBackend(ctx, settings.APIBaseURL, urlItem.Status == domain.DiagnosticStatusPass),
		c.checkExportDir(settings.ExportDir),
		c.checkExportFormat(settings.ExportFormat),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkAPIURL validates the configured backend base URL.
func (c *Checker) checkAPIURL(raw string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      CheckAPIURL,
		Name:    "Backend URL",
		Fixable: true,
	}

	if strings.TrimSpace(raw) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backend URL is empty."
		item.Hint = "Set the address of the preview backend, for example http://localhost:8000."
		return item
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Backend URL is not a valid http(s) address: %s", raw)
		item.Hint = "Use an absolute URL such as http://localhost:8000."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Using backend at %s", u.String())
	return item
}

// checkBackend calls the backend health endpoint.
func (c *Checker) checkBackend(ctx context.Context, baseURL string, urlValid bool) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   CheckBackend,
		Name: "Backend",
	}

	if !urlValid {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Skipped: backend URL is invalid."
		item.Hint = "Fix the backend URL first."
		return item
	}
	if c.health == nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No health probe configured."
		return item
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := c.health(ctx, baseURL)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Backend is not reachable: %v", err)
		item.Hint = "Start the backend (uvicorn app:app --port 8000) and retry diagnostics."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Backend is running."
	if resp.Message != "" {
		item.Message = resp.Message
	}
	if !resp.FalKeyConfigured {
		item.Hint = "FAL_KEY is not configured on the backend; AI backgrounds and captions may fail."
	}
	return item
}

// checkExportDir validates export directory existence and write access.
func (c *Checker) checkExportDir(exportDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      CheckExportDir,
		Name:    "Export directory",
		Fixable: true,
	}

	if strings.TrimSpace(exportDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Export directory is empty."
		item.Hint = "Set a directory where exported previews can be written."
		return item
	}

	if err := c.mkdirAll(exportDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create export directory: %s", exportDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(exportDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Export directory is not writable: %s", exportDir)
		item.Hint = "Choose a writable directory for exported previews."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", exportDir)
	return item
}

// checkExportFormat validates the configured export encoding.
func (c *Checker) checkExportFormat(format domain.ExportFormat) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      CheckExportFormat,
		Name:    "Export format",
		Fixable: true,
	}

	switch format {
	case domain.ExportFormatPNG, domain.ExportFormatJPG, domain.ExportFormatWEBP:
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Exporting as %s", format)
	default:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unsupported export format: %q", format)
		item.Hint = "Choose png, jpg or webp."
	}
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	health HealthFunc,
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		health:     health,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
