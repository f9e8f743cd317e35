package bootstrap

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
	"preview-studio/internal/editor"
)

var templateCatalog = []domain.Template{
	catalogTemplate(11, 2, "Inspired by Weather App", "Blue sky gradient for weather apps",
		"#4A90E2", "#50C9E8", -2, "top", "Weather-focused top caption"),
	catalogTemplate(12, 3, "Inspired by Health App", "Bold red and black for health apps",
		"#DC143C", "#000000", 2, "top", "Health-focused top caption"),
	catalogTemplate(13, 4, "Inspired by Home App", "Clean white and yellow for home apps",
		"#FFFACD", "#FFFFFF", 0, "top", "Home automation top caption"),
	catalogTemplate(14, 5, "Inspired by Philz Coffee", "Warm brown tones for coffee apps",
		"#8B4513", "#D2691E", 0, "top", "Coffee-focused top caption"),
	catalogTemplate(15, 6, "Inspired by Roku TV", "Purple gradient for streaming apps",
		"#6A1B9A", "#9C27B0", 0, "top", "Streaming-focused top caption"),
	catalogTemplate(16, 7, "Inspired by News App", "Red and yellow for news apps",
		"#FF6B6B", "#FFE66D", 10, "bottom", "News-focused bottom caption"),
}

func catalogTemplate(id, backendID int, name, description, from, to string, rotation float64, textPosition, captionStyle string) domain.Template {
	return domain.Template{
		ID:                id,
		Name:              name,
		Description:       description,
		Thumbnail:         fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 100%%)", from, to),
		BackendTemplateID: &backendID,
		HasExamples:       true,
		Settings: domain.TemplateSettings{
			DeviceFrame:      editor.DefaultDevice,
			TextPosition:     textPosition,
			BackgroundType:   domain.BackgroundGradient,
			BackgroundConfig: domain.BackgroundConfig{Colors: []string{from, to}},
			Positioning:      domain.Positioning{Scale: 0.85, Rotation: rotation, Shadow: true},
			CaptionStyle:     captionStyle,
		},
	}
}

// GetTemplates returns the built-in templates.
func (a *App) GetTemplates() []domain.Template {
	return lo.Map(templateCatalog, func(tpl domain.Template, _ int) domain.Template {
		return cloneTemplate(tpl)
	})
}

// SelectTemplate applies a template's frame, background and positioning to
// the global render settings.
func (a *App) SelectTemplate(templateID int) (domain.RenderSettings, error) {
	tpl, ok := templateByID(templateID)
	if !ok {
		return domain.RenderSettings{}, fmt.Errorf("unknown template: %d", templateID)
	}
	return a.state.ApplyTemplate(tpl.Settings), nil
}

// TemplatePreviews returns the rendered examples of a template, fetching them
// from the backend on first use.
func (a *App) TemplatePreviews(templateID int) ([]api.TemplatePreview, error) {
	tpl, ok := templateByID(templateID)
	if !ok || tpl.BackendTemplateID == nil {
		return nil, fmt.Errorf("template %d has no examples", templateID)
	}
	return a.templatePreviewsFor(context.Background(), *tpl.BackendTemplateID)
}

// OpenTemplate loads a template's examples into the editor with the cursor
// at index.
func (a *App) OpenTemplate(templateID, index int) (editor.State, error) {
	tpl, ok := templateByID(templateID)
	if !ok || tpl.BackendTemplateID == nil {
		return editor.State{}, fmt.Errorf("template %d has no examples", templateID)
	}

	previews, err := a.templatePreviewsFor(context.Background(), *tpl.BackendTemplateID)
	if err != nil {
		return editor.State{}, err
	}

	shots := lo.Map(previews, func(p api.TemplatePreview, _ int) domain.EditorScreenshot {
		return domain.EditorScreenshot{
			ScreenshotPath: p.ScreenshotPath,
			PreviewID:      p.PreviewID,
			Caption:        p.Caption,
		}
	})
	a.session.Load(shots, cloneTemplate(tpl))
	if index > 0 {
		if _, err := a.session.Select(index); err != nil {
			return editor.State{}, err
		}
	}
	return a.session.Snapshot(), nil
}

func (a *App) templatePreviewsFor(ctx context.Context, backendID int) ([]api.TemplatePreview, error) {
	a.mu.Lock()
	cached, ok := a.templatePreviews[backendID]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	resp, err := a.apiClient().TemplatePreview(ctx, backendID)
	if err != nil {
		return nil, fmt.Errorf("generate template preview %d: %w", backendID, err)
	}

	a.mu.Lock()
	a.templatePreviews[backendID] = resp.Previews
	a.mu.Unlock()
	return resp.Previews, nil
}

// preloadTemplatePreviews fetches every template's examples one by one.
// Failures are logged and retried on first use.
func (a *App) preloadTemplatePreviews(ctx context.Context) {
	for _, tpl := range templateCatalog {
		if !tpl.HasExamples || tpl.BackendTemplateID == nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := a.templatePreviewsFor(ctx, *tpl.BackendTemplateID); err != nil {
			a.logger.Warn("template examples unavailable", "template", tpl.Name, "error", err)
		}
	}
}

func templateByID(id int) (domain.Template, bool) {
	return lo.Find(templateCatalog, func(tpl domain.Template) bool {
		return tpl.ID == id || (tpl.BackendTemplateID != nil && *tpl.BackendTemplateID == id)
	})
}

func templateByBackendID(id int) (domain.Template, bool) {
	tpl, ok := lo.Find(templateCatalog, func(tpl domain.Template) bool {
		return tpl.BackendTemplateID != nil && *tpl.BackendTemplateID == id
	})
	if !ok {
		return domain.Template{}, false
	}
	return cloneTemplate(tpl), true
}

func cloneTemplate(tpl domain.Template) domain.Template {
	if tpl.BackendTemplateID != nil {
		id := *tpl.BackendTemplateID
		tpl.BackendTemplateID = &id
	}
	tpl.Settings.BackgroundConfig.Colors = append([]string(nil), tpl.Settings.BackgroundConfig.Colors...)
	return tpl
}
