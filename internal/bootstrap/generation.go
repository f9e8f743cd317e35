package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
	"preview-studio/internal/editor"
	"preview-studio/internal/imaging"
	"preview-studio/internal/jobs"
	"preview-studio/internal/store"
)

// Caption overlay applied when a generated preview is edited.
const (
	editFontSize = 80
	editColor    = "#FFFFFF"
)

// CaptionBatch reports the outcome of generating captions for every screenshot.
type CaptionBatch struct {
	Generated int               `json:"generated"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// UploadScreenshots uploads local files, records them in the store and opens
// them in the editor under the custom template.
func (a *App) UploadScreenshots(paths []string) ([]domain.Screenshot, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no screenshots selected")
	}

	files := make([]api.FileUpload, 0, len(paths))
	for _, path := range paths {
		data, err := a.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read screenshot %s: %w", filepath.Base(path), err)
		}
		files = append(files, api.FileUpload{Name: path, Data: data})
	}

	resp, err := a.apiClient().Upload(context.Background(), files)
	if err != nil {
		return nil, fmt.Errorf("upload screenshots: %w", err)
	}

	shots := make([]domain.Screenshot, 0, len(resp.Files))
	for i, file := range resp.Files {
		shot := domain.Screenshot{
			ID:       file.ID,
			Filename: file.Filename,
			Path:     file.Path,
			Size:     file.Size,
		}
		if i < len(files) {
			thumb, err := imaging.Thumbnail(files[i].Data, imaging.DefaultThumbnailSize)
			if err != nil {
				a.logger.Warn("thumbnail failed", "file", file.Filename, "error", err)
			}
			shot.LocalPreview = thumb
		}
		shots = append(shots, shot)
	}
	a.state.AddScreenshots(shots...)

	editorShots := lo.Map(shots, func(shot domain.Screenshot, i int) domain.EditorScreenshot {
		return domain.EditorScreenshot{
			ScreenshotPath: shot.Path,
			PreviewID:      shot.ID,
			Caption:        fmt.Sprintf("Screenshot %d", i+1),
			LocalPreview:   shot.LocalPreview,
		}
	})
	a.session.Load(editorShots, editor.CustomTemplate())
	a.session.SetProjectName("Project " + time.Now().Format("2006-01-02"))

	a.logger.Info("screenshots uploaded", "count", len(shots))
	return shots, nil
}

// RemoveScreenshot drops one uploaded screenshot from the store.
func (a *App) RemoveScreenshot(id string) bool {
	return a.state.RemoveScreenshot(id)
}

// ClearScreenshots drops every uploaded screenshot from the store.
func (a *App) ClearScreenshots() {
	a.state.ClearScreenshots()
}

// SetScreenshotCaption sets or clears (empty text) a screenshot's caption.
func (a *App) SetScreenshotCaption(id string, overlay domain.TextOverlay) error {
	var next *domain.TextOverlay
	if strings.TrimSpace(overlay.Text) != "" {
		next = &overlay
	}
	if !a.state.SetScreenshotText(id, next) {
		return fmt.Errorf("unknown screenshot: %s", id)
	}
	return nil
}

// GenerateCaption asks the backend for a caption and stores it on the screenshot.
func (a *App) GenerateCaption(screenshotID string) (domain.TextOverlay, error) {
	return a.generateCaption(context.Background(), screenshotID)
}

// GenerateCaptions captions every uploaded screenshot concurrently. A failure
// for one screenshot does not stop the others.
func (a *App) GenerateCaptions() (CaptionBatch, error) {
	shots := a.state.Screenshots()
	if len(shots) == 0 {
		return CaptionBatch{}, store.ErrNoScreenshots
	}

	var (
		mu    sync.Mutex
		batch = CaptionBatch{Failed: map[string]string{}}
	)
	var g errgroup.Group
	g.SetLimit(max(a.currentSettings().MaxParallelRenders, 1))
	for _, shot := range shots {
		shot := shot
		g.Go(func() error {
			_, err := a.generateCaption(context.Background(), shot.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failed[shot.ID] = err.Error()
				return nil
			}
			batch.Generated++
			return nil
		})
	}
	_ = g.Wait()

	if len(batch.Failed) == 0 {
		batch.Failed = nil
	}
	return batch, nil
}

func (a *App) generateCaption(ctx context.Context, screenshotID string) (domain.TextOverlay, error) {
	shot, ok := a.state.Screenshot(screenshotID)
	if !ok {
		return domain.TextOverlay{}, fmt.Errorf("unknown screenshot: %s", screenshotID)
	}

	resp, err := a.apiClient().Caption(ctx, screenshotID)
	if err != nil {
		a.logger.Warn("caption generation failed", "screenshot_id", screenshotID, "error", err)
		return domain.TextOverlay{}, fmt.Errorf("generate caption: %w", err)
	}

	overlay := resp.Overlay()
	a.state.SetScreenshotText(screenshotID, &overlay)

	for i, editing := range a.session.Screenshots() {
		if editing.ScreenshotPath == shot.Path {
			if err := a.session.SetCaption(i, overlay.Text); err != nil {
				a.logger.Debug("caption not applied to editor", "index", i, "error", err)
			}
			break
		}
	}
	return overlay, nil
}

// RenderSettings returns the global store for the simple generation flow.
func (a *App) RenderSettings() store.State {
	return a.state.Snapshot()
}

// UpdateRenderSettings changes device frame and/or output size.
func (a *App) UpdateRenderSettings(patch store.SettingsPatch) domain.RenderSettings {
	return a.state.UpdateSettings(patch)
}

// UpdatePositioning changes a subset of the global positioning fields.
func (a *App) UpdatePositioning(patch domain.PositioningPatch) domain.RenderSettings {
	return a.state.UpdatePositioning(patch)
}

// UpdateBackground replaces the global background.
func (a *App) UpdateBackground(kind domain.BackgroundType, cfg domain.BackgroundConfig) domain.RenderSettings {
	return a.state.UpdateBackground(kind, cfg)
}

// StartGeneration submits the uploaded screenshots as a batch job and starts
// polling it. A job already being polled is superseded.
func (a *App) StartGeneration() (domain.Job, error) {
	req, err := a.state.BuildGenerateRequest()
	if err != nil {
		return domain.Job{}, err
	}

	resp, err := a.apiClient().Generate(context.Background(), req)
	if err != nil {
		a.publish(jobs.Event{Type: jobs.EventTypeError, Message: err.Error()})
		return domain.Job{}, fmt.Errorf("start generation: %w", err)
	}

	if _, err := a.poller.Start(context.Background(), resp.JobID); err != nil {
		return domain.Job{}, err
	}
	a.logger.Info("generation started", "job_id", resp.JobID, "screenshots", len(req.Screenshots))
	return a.state.Job(), nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.state.Job()
}

// EditGeneratedPreview re-renders a generated preview with a new caption.
func (a *App) EditGeneratedPreview(previewID, caption, position string) (domain.Job, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return domain.Job{}, fmt.Errorf("caption is required")
	}
	if strings.TrimSpace(position) == "" {
		position = editor.DefaultTextPosition
	}

	resp, err := a.apiClient().EditPreview(context.Background(), previewID, api.TextOverlayPatch{
		Text:     caption,
		Position: position,
		FontSize: editFontSize,
		Color:    editColor,
	})
	if err != nil {
		return domain.Job{}, fmt.Errorf("edit preview: %w", err)
	}

	editedID := resp.PreviewID
	if editedID == "" {
		editedID = previewID
	}
	if !a.state.MarkPreviewEdited(previewID, editedID, caption) {
		a.logger.Debug("edited preview is not part of the current job", "preview_id", previewID)
	}

	job := a.state.Job()
	a.publish(jobs.Event{
		JobID:   job.ID,
		Type:    jobs.EventTypeResult,
		Status:  job.Status,
		Message: "Preview updated",
		Results: job.Results,
	})
	return job, nil
}

// CleanupJob stops polling, deletes the job's artifacts on the backend and
// forgets it locally.
func (a *App) CleanupJob() error {
	job := a.state.Job()
	if job.ID == "" {
		return jobs.ErrNoActiveJob
	}

	a.poller.Stop()
	if err := a.apiClient().CleanupJob(context.Background(), job.ID); err != nil {
		return fmt.Errorf("cleanup job %s: %w", job.ID, err)
	}
	a.state.ClearJob()
	a.publish(jobs.Event{JobID: job.ID, Type: jobs.EventTypeStatus, Status: domain.JobStatusNone, Message: "Job cleaned up"})
	return nil
}
