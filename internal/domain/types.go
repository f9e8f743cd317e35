package domain

import "time"

// JobStatus tracks the backend lifecycle of one batch rendering job.
type JobStatus string

const (
	JobStatusNone       JobStatus = "none"
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether polling should stop for this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ExportFormat selects the file encoding used when saving previews locally.
type ExportFormat string

const (
	ExportFormatPNG  ExportFormat = "png"
	ExportFormatJPG  ExportFormat = "jpg"
	ExportFormatWEBP ExportFormat = "webp"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	APIBaseURL         string        `json:"apiBaseUrl"`
	ExportDir          string        `json:"exportDir"`
	ExportFormat       ExportFormat  `json:"exportFormat"`
	PollInterval       time.Duration `json:"pollInterval"`
	MaxParallelRenders int           `json:"maxParallelRenders"`
}

// Preview is one rendered output image identified by the backend.
type Preview struct {
	PreviewID    string    `json:"preview_id"`
	ScreenshotID string    `json:"screenshot_id,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Error        string    `json:"error,omitempty"`
	EditedAt     time.Time `json:"editedAt,omitempty"`
}

// Job stores the current job identity, lifecycle status and results.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Progress  float64   `json:"progress"`
	Results   []Preview `json:"results,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// JobReport is one status observation returned by the backend.
type JobReport struct {
	Status    JobStatus
	Completed int
	Total     int
	Progress  float64
	Results   []Preview
	Error     string
}
