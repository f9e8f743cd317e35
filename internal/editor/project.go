package editor

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
)

// CustomTemplateName names the template synthesised for uploads and for
// projects that reference no catalog template.
const CustomTemplateName = "Custom Upload"

// ProjectSaver persists a project.
type ProjectSaver interface {
	SaveProject(ctx context.Context, req api.SaveProjectRequest) (api.ProjectResponse, error)
}

// CustomTemplate returns the template used for raw uploads.
func CustomTemplate() domain.Template {
	return domain.Template{
		Name: CustomTemplateName,
		Settings: domain.TemplateSettings{
			DeviceFrame:      DefaultDevice,
			TextPosition:     DefaultTextPosition,
			BackgroundType:   domain.BackgroundGradient,
			BackgroundConfig: domain.BackgroundConfig{Colors: append([]string(nil), DefaultGradient...)},
		},
	}
}

// SaveProject commits the draft and submits the session under name. On
// success the dirty set is cleared and later saves update the same project.
func (s *Session) SaveProject(ctx context.Context, name string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, ErrProjectNameRequired
	}

	req, epoch, err := s.prepareSave(name)
	if err != nil {
		return domain.Project{}, err
	}

	resp, err := s.saver.SaveProject(ctx, req)
	if err != nil {
		return domain.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		s.dirty = map[int]struct{}{}
		s.projectID = resp.Project.ID
		s.projectName = name
	}
	s.logger.Info("project saved", "project_id", resp.Project.ID, "name", name, "screenshots", len(req.Screenshots))
	return resp.Project, nil
}

func (s *Session) prepareSave(name string) (api.SaveProjectRequest, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.screenshots) == 0 {
		return api.SaveProjectRequest{}, 0, ErrEmptySession
	}
	s.commitDraft()

	active := s.effective(s.cursor)
	req := api.SaveProjectRequest{
		Name:       name,
		TemplateID: s.template.BackendTemplateID,
		Screenshots: lo.Map(s.screenshots, func(shot domain.EditorScreenshot, i int) domain.ProjectScreenshot {
			eff := s.effective(i)
			return domain.ProjectScreenshot{EditorScreenshot: shot, IndividualSettings: &eff}
		}),
		ScreenshotEdits: lo.MapEntries(s.overrides, func(i int, o domain.Override) (string, domain.Override) {
			return strconv.Itoa(i), cloneOverride(o)
		}),
		Settings: domain.ProjectSettings{
			Device:           active.Device,
			BackgroundType:   active.BackgroundType,
			BackgroundConfig: backgroundConfig(active),
			Positioning:      s.template.Settings.Positioning,
		},
	}
	if s.projectID != "" {
		req.ProjectID = ptr(s.projectID)
	}
	return req, s.epoch, nil
}

// LoadProject replaces the session with a saved project. tpl is the catalog
// template the project references, or nil to derive one from the project's
// settings block. Each override is rebuilt from the saved individual settings
// with the saved sparse edit on top.
func (s *Session) LoadProject(project domain.Project, tpl *domain.Template) {
	template := projectTemplate(project)
	if tpl != nil {
		template = *tpl
	}

	screenshots := lo.Map(project.Screenshots, func(shot domain.ProjectScreenshot, _ int) domain.EditorScreenshot {
		return shot.EditorScreenshot
	})

	overrides := map[int]domain.Override{}
	for i, shot := range project.Screenshots {
		edit, edited := project.ScreenshotEdits[strconv.Itoa(i)]
		if shot.IndividualSettings == nil && !edited {
			continue
		}
		var o domain.Override
		if shot.IndividualSettings != nil {
			o = overrideFromEffective(*shot.IndividualSettings)
		}
		overrides[i] = merge(o, edit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(screenshots, template)
	s.overrides = overrides
	s.projectID = project.ID
	s.projectName = project.Name
	s.logger.Debug("project loaded", "project_id", project.ID, "screenshots", len(screenshots))
}

// projectTemplate derives a template from a project's settings block.
func projectTemplate(project domain.Project) domain.Template {
	tpl := CustomTemplate()
	tpl.BackendTemplateID = project.TemplateID
	settings := project.Settings
	if settings.Device != "" {
		tpl.Settings.DeviceFrame = settings.Device
	}
	if settings.BackgroundType != "" {
		tpl.Settings.BackgroundType = settings.BackgroundType
	}
	if len(settings.BackgroundConfig.Colors) > 0 || settings.BackgroundConfig.Color != "" {
		tpl.Settings.BackgroundConfig = settings.BackgroundConfig
	}
	tpl.Settings.Positioning = settings.Positioning
	return tpl
}
