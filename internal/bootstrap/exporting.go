package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"preview-studio/internal/domain"
	"preview-studio/internal/editor"
	"preview-studio/internal/export"
	"preview-studio/internal/jobs"
)

// ExportPreviews saves generated previews into the export directory. With no
// ids every result of the current job is exported.
func (a *App) ExportPreviews(previewIDs []string) (export.Result, error) {
	job := a.state.Job()
	captions := lo.Associate(job.Results, func(p domain.Preview) (string, string) {
		return p.PreviewID, p.Caption
	})

	if len(previewIDs) == 0 {
		previewIDs = lo.FilterMap(job.Results, func(p domain.Preview, _ int) (string, bool) {
			return p.PreviewID, p.PreviewID != "" && p.Error == ""
		})
	}
	items := lo.Map(previewIDs, func(id string, _ int) export.Item {
		return export.Item{PreviewID: id, Name: captions[id]}
	})
	return a.runExport(job.ID, items)
}

// ExportEditorPreviews saves the editor's current previews.
func (a *App) ExportEditorPreviews() (export.Result, error) {
	shots := a.session.Screenshots()
	if len(shots) == 0 {
		return export.Result{}, editor.ErrEmptySession
	}
	items := lo.Map(shots, func(shot domain.EditorScreenshot, _ int) export.Item {
		return export.Item{PreviewID: shot.PreviewID, Name: shot.Caption}
	})
	return a.runExport("", items)
}

func (a *App) runExport(jobID string, items []export.Item) (export.Result, error) {
	settings := a.currentSettings()
	req := export.Request{
		Items:     items,
		OutputDir: settings.ExportDir,
		Format:    settings.ExportFormat,
		OnStage: func(stage string, index int) {
			a.publish(jobs.Event{
				JobID:     jobID,
				Type:      jobs.EventTypeExport,
				Message:   stage,
				Index:     &index,
				Completed: index,
				Total:     len(items),
			})
		},
	}

	result, err := a.exporter.Run(context.Background(), req)
	if err != nil {
		a.publish(jobs.Event{JobID: jobID, Type: jobs.EventTypeError, Message: err.Error()})

		var pipelineErr *export.PipelineError
		if errors.As(err, &pipelineErr) {
			a.logger.Warn("export failed", "stage", pipelineErr.Stage, "preview_id", pipelineErr.PreviewID, "error", err)
		}
		return result, fmt.Errorf("export previews: %w", err)
	}

	a.publish(jobs.Event{
		JobID:     jobID,
		Type:      jobs.EventTypeExport,
		Message:   fmt.Sprintf("Exported %d previews", len(result.Files)),
		Completed: len(result.Files),
		Total:     len(items),
		Path:      settings.ExportDir,
	})
	a.logger.Info("previews exported", "count", len(result.Files), "dir", settings.ExportDir)
	return result, nil
}
