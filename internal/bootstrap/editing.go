package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
	"preview-studio/internal/editor"
	"preview-studio/internal/jobs"
)

// RegenerateSummary is the view-facing form of editor.RegenerateResult.
type RegenerateSummary struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Stale     int            `json:"stale"`
	Errors    map[int]string `json:"errors,omitempty"`
	State     editor.State   `json:"state"`
}

// EditorState returns a copy of the editing session.
func (a *App) EditorState() editor.State {
	return a.session.Snapshot()
}

// SelectScreenshot moves the editor cursor.
func (a *App) SelectScreenshot(index int) (domain.EffectiveSettings, error) {
	return a.session.Select(index)
}

// UpdateEditorSetting applies an edit to the selected screenshot, or its
// background and rotation to every screenshot when applyToAll is set.
func (a *App) UpdateEditorSetting(o domain.Override, applyToAll bool) (editor.State, error) {
	if err := a.session.UpdateSetting(o, applyToAll); err != nil {
		return editor.State{}, err
	}
	return a.session.Snapshot(), nil
}

// DraftEditorSetting records an uncommitted edit for the selected screenshot.
func (a *App) DraftEditorSetting(o domain.Override) error {
	return a.session.Draft(o)
}

// SetEditorCaption replaces the caption of one editor screenshot.
func (a *App) SetEditorCaption(index int, caption string) (editor.State, error) {
	if err := a.session.SetCaption(index, caption); err != nil {
		return editor.State{}, err
	}
	return a.session.Snapshot(), nil
}

// UploadBackground uploads a custom background image and selects it for the
// current screenshot, or for every screenshot when applyToAll is set.
func (a *App) UploadBackground(path string, applyToAll bool) (editor.State, error) {
	data, err := a.readFile(path)
	if err != nil {
		return editor.State{}, fmt.Errorf("read background %s: %w", filepath.Base(path), err)
	}

	resp, err := a.apiClient().UploadBackground(context.Background(), api.FileUpload{Name: path, Data: data})
	if err != nil {
		return editor.State{}, fmt.Errorf("upload background: %w", err)
	}

	if err := a.session.SetBackgroundImage(resp.FileID, applyToAll); err != nil {
		return editor.State{}, err
	}
	return a.session.Snapshot(), nil
}

// RegenerateDirty re-renders every edited screenshot.
func (a *App) RegenerateDirty() (RegenerateSummary, error) {
	return a.regenerate(editor.ScopeDirty)
}

// RegenerateAll re-renders every screenshot in the session.
func (a *App) RegenerateAll() (RegenerateSummary, error) {
	return a.regenerate(editor.ScopeAll)
}

func (a *App) regenerate(scope editor.Scope) (RegenerateSummary, error) {
	result, err := a.session.Regenerate(context.Background(), scope)
	if err != nil {
		return RegenerateSummary{}, err
	}

	summary := RegenerateSummary{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Stale:     result.Stale,
		State:     a.session.Snapshot(),
	}
	if len(result.Errors) > 0 {
		summary.Errors = make(map[int]string, len(result.Errors))
		for index, err := range result.Errors {
			index := index
			summary.Errors[index] = err.Error()
			a.publish(jobs.Event{Type: jobs.EventTypeError, Index: &index, Message: err.Error()})
		}
	}

	a.publish(jobs.Event{
		Type:      jobs.EventTypeResult,
		Message:   fmt.Sprintf("Regenerated %d of %d previews", result.Succeeded, result.Succeeded+result.Failed+result.Stale),
		Completed: result.Succeeded,
		Total:     result.Succeeded + result.Failed + result.Stale,
	})
	return summary, nil
}

// SaveProject persists the session under name.
func (a *App) SaveProject(name string) (domain.Project, error) {
	project, err := a.session.SaveProject(context.Background(), name)
	if err != nil {
		return domain.Project{}, err
	}
	a.logger.Info("project saved", "project_id", project.ID, "name", project.Name)
	return project, nil
}

// ListProjects returns saved projects, most recently updated first.
func (a *App) ListProjects() ([]domain.Project, error) {
	resp, err := a.apiClient().ListProjects(context.Background())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return resp.Projects, nil
}

// OpenProject loads a saved project into the editor. The catalog template it
// references is used when known.
func (a *App) OpenProject(projectID string) (editor.State, error) {
	resp, err := a.apiClient().Project(context.Background(), projectID)
	if err != nil {
		return editor.State{}, fmt.Errorf("open project %s: %w", projectID, err)
	}

	var tpl *domain.Template
	if resp.Project.TemplateID != nil {
		if found, ok := templateByBackendID(*resp.Project.TemplateID); ok {
			tpl = &found
		}
	}
	a.session.LoadProject(resp.Project, tpl)
	return a.session.Snapshot(), nil
}
