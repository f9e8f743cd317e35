// Package store holds the application-wide screenshot list, the global render
// settings of the simple generation flow and the current rendering job.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
	"preview-studio/internal/jobs"
)

// ErrNoScreenshots is returned when generation is requested with nothing uploaded.
var ErrNoScreenshots = errors.New("no screenshots uploaded")

const (
	DefaultDeviceFrame = "iphone-15-pro"
	DefaultScale       = 0.85
)

// DefaultGradient is the background used until the user picks another one.
var DefaultGradient = []string{"#667eea", "#764ba2"}

// DefaultRenderSettings returns the settings a fresh store starts with.
func DefaultRenderSettings() domain.RenderSettings {
	return domain.RenderSettings{
		DeviceFrame:    DefaultDeviceFrame,
		BackgroundType: domain.BackgroundGradient,
		BackgroundConfig: domain.BackgroundConfig{
			Colors: append([]string(nil), DefaultGradient...),
		},
		Positioning: domain.Positioning{
			Scale:  DefaultScale,
			Shadow: true,
		},
		OutputSize: domain.OutputSizeAppStore,
	}
}

// SettingsPatch updates the scalar parts of RenderSettings. Nil fields are kept.
type SettingsPatch struct {
	DeviceFrame *string            `json:"deviceFrame,omitempty"`
	OutputSize  *domain.OutputSize `json:"outputSize,omitempty"`
}

// State is a copy of the store contents for the view layer.
type State struct {
	Screenshots []domain.Screenshot   `json:"screenshots"`
	Settings    domain.RenderSettings `json:"settings"`
	Job         domain.Job            `json:"job"`
}

// Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	screenshots []domain.Screenshot
	settings    domain.RenderSettings
	jobs        *jobs.Manager
}

// New creates an empty store tracking jobs through manager.
func New(manager *jobs.Manager) *Store {
	if manager == nil {
		manager = jobs.NewManager()
	}
	return &Store{
		settings: DefaultRenderSettings(),
		jobs:     manager,
	}
}

// Jobs exposes the job manager shared with the poller.
func (s *Store) Jobs() *jobs.Manager {
	return s.jobs
}

// AddScreenshots appends uploaded screenshots. An id already present is replaced.
func (s *Store) AddScreenshots(shots ...domain.Screenshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, shot := range shots {
		if _, i, ok := lo.FindIndexOf(s.screenshots, func(existing domain.Screenshot) bool {
			return existing.ID == shot.ID
		}); ok {
			s.screenshots[i] = shot
			continue
		}
		s.screenshots = append(s.screenshots, shot)
	}
}

// RemoveScreenshot drops one screenshot and its local preview.
func (s *Store) RemoveScreenshot(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.screenshots)
	s.screenshots = lo.Reject(s.screenshots, func(shot domain.Screenshot, _ int) bool {
		return shot.ID == id
	})
	return len(s.screenshots) != before
}

// ClearScreenshots empties the screenshot list.
func (s *Store) ClearScreenshots() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenshots = nil
}

// Screenshots returns a copy of the screenshot list.
func (s *Store) Screenshots() []domain.Screenshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneScreenshots(s.screenshots)
}

// Screenshot looks up one screenshot by id.
func (s *Store) Screenshot(id string) (domain.Screenshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shot, ok := lo.Find(s.screenshots, func(shot domain.Screenshot) bool {
		return shot.ID == id
	})
	return shot, ok
}

// SetScreenshotText attaches or clears the caption overlay of a screenshot.
func (s *Store) SetScreenshotText(id string, overlay *domain.TextOverlay) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i, ok := lo.FindIndexOf(s.screenshots, func(shot domain.Screenshot) bool {
		return shot.ID == id
	})
	if !ok {
		return false
	}
	if overlay != nil {
		copied := *overlay
		overlay = &copied
	}
	s.screenshots[i].TextOverlay = overlay
	return true
}

// Settings returns the global render settings.
func (s *Store) Settings() domain.RenderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// UpdateSettings merges patch into the global settings.
func (s *Store) UpdateSettings(patch SettingsPatch) domain.RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.DeviceFrame != nil {
		s.settings.DeviceFrame = *patch.DeviceFrame
	}
	if patch.OutputSize != nil {
		s.settings.OutputSize = *patch.OutputSize
	}
	return cloneSettings(s.settings)
}

// UpdatePositioning merges patch into the global positioning.
func (s *Store) UpdatePositioning(patch domain.PositioningPatch) domain.RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Positioning = patch.Apply(s.settings.Positioning)
	return cloneSettings(s.settings)
}

// UpdateBackground switches the background variant and its payload.
func (s *Store) UpdateBackground(kind domain.BackgroundType, cfg domain.BackgroundConfig) domain.RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.BackgroundType = kind
	s.settings.BackgroundConfig = cloneBackground(cfg)
	return cloneSettings(s.settings)
}

// ApplyTemplate copies a template's frame, background and positioning into
// the global settings. The output size is kept.
func (s *Store) ApplyTemplate(tpl domain.TemplateSettings) domain.RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl.DeviceFrame != "" {
		s.settings.DeviceFrame = tpl.DeviceFrame
	}
	if tpl.BackgroundType != "" {
		s.settings.BackgroundType = tpl.BackgroundType
		s.settings.BackgroundConfig = cloneBackground(tpl.BackgroundConfig)
	}
	if tpl.Positioning.Scale > 0 {
		s.settings.Positioning = tpl.Positioning
	}
	return cloneSettings(s.settings)
}

// BuildGenerateRequest assembles the batch generation body from the current
// screenshots and settings.
func (s *Store) BuildGenerateRequest() (api.GenerateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.screenshots) == 0 {
		return api.GenerateRequest{}, ErrNoScreenshots
	}
	settings := cloneSettings(s.settings)
	return api.GenerateRequest{
		Screenshots: lo.Map(s.screenshots, func(shot domain.Screenshot, _ int) api.GenerateScreenshot {
			return api.GenerateScreenshot{ID: shot.ID, TextOverlay: shot.TextOverlay}
		}),
		DeviceFrame:      settings.DeviceFrame,
		BackgroundType:   settings.BackgroundType,
		BackgroundConfig: settings.BackgroundConfig,
		Positioning:      settings.Positioning,
		OutputSize:       settings.OutputSize,
	}, nil
}

// Job returns the current job.
func (s *Store) Job() domain.Job {
	return s.jobs.Current()
}

// MarkPreviewEdited swaps a generated preview for its edited re-render.
func (s *Store) MarkPreviewEdited(previewID, editedID, caption string) bool {
	for _, result := range s.jobs.Current().Results {
		if result.PreviewID != previewID {
			continue
		}
		result.PreviewID = editedID
		if caption != "" {
			result.Caption = caption
		}
		result.EditedAt = time.Now().UTC()
		return s.jobs.UpdateResult(previewID, result)
	}
	return false
}

// ClearJob forgets the current job.
func (s *Store) ClearJob() {
	s.jobs.Reset()
}

// Snapshot returns a copy of the whole store.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Screenshots: cloneScreenshots(s.screenshots),
		Settings:    cloneSettings(s.settings),
		Job:         s.jobs.Current(),
	}
}

func cloneScreenshots(in []domain.Screenshot) []domain.Screenshot {
	return lo.Map(in, func(shot domain.Screenshot, _ int) domain.Screenshot {
		if shot.TextOverlay != nil {
			overlay := *shot.TextOverlay
			shot.TextOverlay = &overlay
		}
		return shot
	})
}

func cloneSettings(in domain.RenderSettings) domain.RenderSettings {
	in.BackgroundConfig = cloneBackground(in.BackgroundConfig)
	return in
}

func cloneBackground(in domain.BackgroundConfig) domain.BackgroundConfig {
	if in.Colors != nil {
		in.Colors = append([]string(nil), in.Colors...)
	}
	return in
}
