package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"preview-studio/internal/config"
	"preview-studio/internal/diagnostics"
	"preview-studio/internal/domain"
)

// FixDiagnostic applies the remediation for one failed diagnostic item and
// returns the refreshed report.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case diagnostics.CheckAPIURL:
		settings, settingsChanged = fixAPIURL(settings)
	case diagnostics.CheckExportDir:
		settings, settingsChanged, fixErr = fixExportDir(settings)
	case diagnostics.CheckExportFormat:
		settings, settingsChanged = fixExportFormat(settings)
	case diagnostics.CheckBackend:
		return a.GetDiagnostics(), fmt.Errorf("the backend must be started manually")
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			a.applySettings(settings)
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	a.applySettings(settings)
	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

func fixAPIURL(settings domain.Settings) (domain.Settings, bool) {
	if settings.APIBaseURL == config.DefaultAPIBaseURL {
		return settings, false
	}
	settings.APIBaseURL = config.DefaultAPIBaseURL
	return settings, true
}

func fixExportDir(settings domain.Settings) (domain.Settings, bool, error) {
	exportDir := strings.TrimSpace(settings.ExportDir)
	changed := false
	if exportDir == "" {
		exportDir = config.DefaultSettings().ExportDir
		settings.ExportDir = exportDir
		changed = true
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create export directory %s: %w", exportDir, err)
	}

	return settings, changed, nil
}

func fixExportFormat(settings domain.Settings) (domain.Settings, bool) {
	if settings.ExportFormat == domain.ExportFormatPNG {
		return settings, false
	}
	settings.ExportFormat = domain.ExportFormatPNG
	return settings, true
}
