package api

import "preview-studio/internal/domain"

// FileUpload is one file sent in a multipart upload.
type FileUpload struct {
	Name string
	Data []byte
}

// UploadedFile is the backend handle for a stored screenshot.
type UploadedFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Success bool           `json:"success"`
	Files   []UploadedFile `json:"files"`
	Count   int            `json:"count"`
}

// BackgroundUploadResponse is returned by POST /api/upload-background.
type BackgroundUploadResponse struct {
	Success  bool   `json:"success"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// GenerateScreenshot pairs a screenshot id with its optional caption overlay.
type GenerateScreenshot struct {
	ID          string              `json:"id"`
	TextOverlay *domain.TextOverlay `json:"textOverlay"`
}

// GenerateRequest starts a batch rendering job.
type GenerateRequest struct {
	Screenshots      []GenerateScreenshot    `json:"screenshots"`
	DeviceFrame      string                  `json:"device_frame"`
	BackgroundType   domain.BackgroundType   `json:"background_type"`
	BackgroundConfig domain.BackgroundConfig `json:"background_config"`
	Positioning      domain.Positioning      `json:"positioning"`
	OutputSize       domain.OutputSize       `json:"output_size"`
}

// GenerateResponse carries the id of the queued job.
type GenerateResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Message string `json:"message,omitempty"`
}

// StatusResponse is returned by GET /api/status/:jobId.
type StatusResponse struct {
	JobID                string           `json:"job_id"`
	Status               domain.JobStatus `json:"status"`
	Progress             float64          `json:"progress"`
	TotalScreenshots     int              `json:"total_screenshots"`
	CompletedScreenshots int              `json:"completed_screenshots"`
	Results              []domain.Preview `json:"results,omitempty"`
	Error                *string          `json:"error,omitempty"`
}

// Report converts the wire payload into a domain observation.
func (r StatusResponse) Report() domain.JobReport {
	report := domain.JobReport{
		Status:    r.Status,
		Completed: r.CompletedScreenshots,
		Total:     r.TotalScreenshots,
		Progress:  r.Progress,
		Results:   r.Results,
	}
	if r.Error != nil {
		report.Error = *r.Error
	}
	return report
}

// CaptionResponse is returned by POST /api/generate-caption/:screenshotId.
type CaptionResponse struct {
	Success  bool   `json:"success"`
	Caption  string `json:"caption"`
	Position string `json:"position"`
	FontSize int    `json:"font_size"`
	Color    string `json:"color"`
}

// Overlay converts the caption suggestion into a text overlay.
func (r CaptionResponse) Overlay() domain.TextOverlay {
	return domain.TextOverlay{
		Text:     r.Caption,
		Position: r.Position,
		FontSize: r.FontSize,
		Color:    r.Color,
	}
}

// TextOverlayPatch is the body of the caption-only preview edit.
type TextOverlayPatch struct {
	Text     string `json:"text"`
	Position string `json:"position"`
	FontSize int    `json:"font_size"`
	Color    string `json:"color"`
}

// EditPreviewResponse is returned by POST /api/edit-preview/:previewId.
type EditPreviewResponse struct {
	Success     bool   `json:"success"`
	PreviewID   string `json:"preview_id,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// RenderPreviewRequest is the full-form body of POST /api/edit-preview.
type RenderPreviewRequest struct {
	ScreenshotPath    string                  `json:"screenshot_path"`
	Caption           string                  `json:"caption"`
	TextPosition      string                  `json:"text_position"`
	TextColor         string                  `json:"text_color"`
	DeviceFrame       string                  `json:"device_frame"`
	BackgroundType    domain.BackgroundType   `json:"background_type"`
	BackgroundConfig  domain.BackgroundConfig `json:"background_config"`
	Positioning       domain.Positioning      `json:"positioning"`
	BackgroundImageID *string                 `json:"background_image_id"`
}

// RenderPreviewResponse carries the id of the freshly rendered preview.
type RenderPreviewResponse struct {
	Success   bool   `json:"success"`
	PreviewID string `json:"preview_id"`
}

// TemplatePreview is one example rendered for a template.
type TemplatePreview struct {
	PreviewID      string `json:"preview_id"`
	Caption        string `json:"caption"`
	DownloadURL    string `json:"download_url,omitempty"`
	ScreenshotPath string `json:"screenshot_path,omitempty"`
}

// TemplatePreviewResponse is returned by POST /api/generate-template-preview.
type TemplatePreviewResponse struct {
	Success    bool              `json:"success"`
	TemplateID int               `json:"template_id"`
	Previews   []TemplatePreview `json:"previews"`
}

// TemplateInfoResponse is returned by GET /api/templates/:id.
type TemplateInfoResponse struct {
	TemplateID int      `json:"template_id"`
	Captions   []string `json:"captions"`
	Settings   struct {
		DeviceFrame      string                  `json:"device_frame"`
		BackgroundType   domain.BackgroundType   `json:"background_type"`
		BackgroundConfig domain.BackgroundConfig `json:"background_config"`
		Positioning      domain.Positioning      `json:"positioning"`
	} `json:"settings"`
}

// ProjectsResponse is returned by GET /api/projects.
type ProjectsResponse struct {
	Success  bool             `json:"success"`
	Projects []domain.Project `json:"projects"`
}

// ProjectResponse is returned by GET /api/project/:id and POST /api/save-project.
type ProjectResponse struct {
	Success bool           `json:"success"`
	Project domain.Project `json:"project"`
	Error   string         `json:"error,omitempty"`
}

// SaveProjectRequest is the body of POST /api/save-project.
type SaveProjectRequest struct {
	ProjectID       *string                    `json:"project_id"`
	Name            string                     `json:"name"`
	TemplateID      *int                       `json:"template_id"`
	Screenshots     []domain.ProjectScreenshot `json:"screenshots"`
	ScreenshotEdits map[string]domain.Override `json:"screenshot_edits"`
	Settings        domain.ProjectSettings     `json:"settings"`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	Message          string `json:"message"`
	Status           string `json:"status"`
	FalKeyConfigured bool   `json:"fal_key_configured"`
}
