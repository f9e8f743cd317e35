package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"preview-studio/internal/api"
	"preview-studio/internal/config"
	"preview-studio/internal/diagnostics"
	"preview-studio/internal/domain"
	"preview-studio/internal/editor"
	"preview-studio/internal/export"
	"preview-studio/internal/jobs"
	"preview-studio/internal/store"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventName is the runtime event every bus event is pushed under.
const EventName = "job:event"

var imageDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Images",
		Pattern:     "*.png;*.jpg;*.jpeg;*.webp",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, backend client, stores and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Diagnostics domain.DiagnosticReport

	assets     fs.FS
	httpClient *http.Client
	logger     *slog.Logger
	checker    *diagnostics.Checker
	state      *store.Store
	session    *editor.Session
	poller     *jobs.Poller
	events     *jobs.EventBus
	exporter   exportRunner
	readFile   func(string) ([]byte, error)
	lookupEnv  func(string) (string, bool)

	mu               sync.Mutex
	client           *api.Client
	runtimeCtx       context.Context
	templatePreviews map[int][]api.TemplatePreview
}

// exportRunner isolates the export pipeline behind an interface.
type exportRunner interface {
	Run(ctx context.Context, req export.Request) (export.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	settingsStore := config.NewJSONStore(config.SettingsPath(homeDir))
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyEnv(settings, nil)
	if err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	app := newApp(settingsStore, settings, nil, slog.Default())
	app.assets = assets
	app.Diagnostics = app.checker.Run(context.Background(), settings)
	return app, nil
}

// newApp assembles every component around one settings snapshot.
func newApp(settingsStore config.Store, settings domain.Settings, httpClient *http.Client, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Settings:         settings,
		Store:            settingsStore,
		httpClient:       httpClient,
		logger:           logger,
		events:           jobs.NewEventBus(1000),
		readFile:         os.ReadFile,
		lookupEnv:        os.LookupEnv,
		templatePreviews: map[int][]api.TemplatePreview{},
	}
	a.client = api.New(settings.APIBaseURL, httpClient, logger.With("component", "api"))

	b := backend{app: a}
	a.state = store.New(jobs.NewManager())
	a.session = editor.NewSession(b, b, settings.MaxParallelRenders, logger.With("component", "editor"))
	a.poller = jobs.NewPoller(b, a.state.Jobs(), a.events, settings.PollInterval, logger.With("component", "poller"))
	a.exporter = export.NewPipeline(b)
	a.checker = diagnostics.NewChecker(a.probeHealth)
	a.events.Subscribe(a.emit)
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Preview Studio",
		Width:       1280,
		Height:      860,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events and warms the
// template example cache in the background.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	go a.preloadTemplatePreviews(ctx)
}

// Shutdown stops polling and detaches the runtime context.
func (a *App) Shutdown(ctx context.Context) {
	a.poller.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads the persisted settings with the PREVIEW_* environment
// applied on top.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyEnv(settings, a.lookupEnv)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("apply environment: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
// A changed backend URL takes effect for the next request. Poll interval and
// render parallelism are read at startup.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.applySettings(normalized)
	a.refreshDiagnosticsFromSettings(normalized)
	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns all checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.applySettings(settings)
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// PickScreenshots opens a native dialog for selecting screenshots to upload.
func (a *App) PickScreenshots() ([]string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return nil, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select screenshots",
		Filters: imageDialogFilter,
	})
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned, nil
}

// PickBackgroundImage opens a native dialog for a custom background image.
func (a *App) PickBackgroundImage() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select background image",
		Filters: imageDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickExportDirectory opens a native directory picker for exported previews.
func (a *App) PickExportDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select export directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenExportFolder opens the given path (or configured export dir) in file manager.
func (a *App) OpenExportFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.ExportDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("export path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve export path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// applySettings records settings and points the client at their backend.
func (a *App) applySettings(settings domain.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.client == nil || a.client.BaseURL() != strings.TrimRight(settings.APIBaseURL, "/") {
		a.client = api.New(settings.APIBaseURL, a.httpClient, a.logger.With("component", "api"))
	}
}

// refreshDiagnosticsFromSettings runs checks without holding the lock.
func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	report := a.checker.Run(context.Background(), settings)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Diagnostics = report
	return report
}

// apiClient returns the client for the current settings.
func (a *App) apiClient() *api.Client {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client
}

// currentSettings returns the in-memory settings.
func (a *App) currentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

// probeHealth checks a backend that may differ from the active client.
func (a *App) probeHealth(ctx context.Context, baseURL string) (api.HealthResponse, error) {
	return api.New(baseURL, a.httpClient, a.logger.With("component", "api")).Health(ctx)
}

// publish stores an event; subscribers forward it to the view.
func (a *App) publish(event jobs.Event) {
	a.events.Publish(event)
}

// emit pushes a published event to the runtime when the window is up.
func (a *App) emit(event jobs.Event) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, EventName, event)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and fills defaults.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.APIBaseURL = strings.TrimSpace(settings.APIBaseURL)
	settings.ExportDir = strings.TrimSpace(settings.ExportDir)
	settings.ExportFormat = domain.ExportFormat(strings.ToLower(strings.TrimSpace(string(settings.ExportFormat))))
	return config.WithDefaults(settings)
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
