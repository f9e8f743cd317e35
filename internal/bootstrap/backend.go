package bootstrap

import (
	"context"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
)

// backend forwards component calls to whichever client matches the current
// settings, so a changed backend URL reaches the editor, poller and exporter.
type backend struct {
	app *App
}

// RenderPreview implements editor.Renderer.
func (b backend) RenderPreview(ctx context.Context, req api.RenderPreviewRequest) (api.RenderPreviewResponse, error) {
	return b.app.apiClient().RenderPreview(ctx, req)
}

// SaveProject implements editor.ProjectSaver.
func (b backend) SaveProject(ctx context.Context, req api.SaveProjectRequest) (api.ProjectResponse, error) {
	return b.app.apiClient().SaveProject(ctx, req)
}

// Download implements export.Downloader.
func (b backend) Download(ctx context.Context, previewID string) ([]byte, error) {
	return b.app.apiClient().Download(ctx, previewID)
}

// FetchStatus implements jobs.StatusFetcher.
func (b backend) FetchStatus(ctx context.Context, jobID string) (domain.JobReport, error) {
	resp, err := b.app.apiClient().Status(ctx, jobID)
	if err != nil {
		return domain.JobReport{}, err
	}
	return resp.Report(), nil
}
