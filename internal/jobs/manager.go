package jobs

import (
	"errors"
	"fmt"
	"sync"

	"preview-studio/internal/domain"
)

// ErrNoActiveJob is returned when a report arrives while no job is tracked.
var ErrNoActiveJob = errors.New("no active job")

// ErrStaleJob is returned for reports about a job that was superseded.
var ErrStaleJob = errors.New("job superseded")

// Manager tracks the single current rendering job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager with no job.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{
			Status: domain.JobStatusNone,
		},
	}
}

// Start tracks jobID as the current job in queued state. A previous job, in
// any state, is superseded.
func (m *Manager) Start(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("start job: empty id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = domain.Job{
		ID:     jobID,
		Status: domain.JobStatusQueued,
	}
	return nil
}

// Observe applies one backend report to the current job and returns the
// resulting snapshot. Reports for other job ids are rejected with ErrStaleJob.
func (m *Manager) Observe(jobID string, report domain.JobReport) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" {
		return m.current, ErrNoActiveJob
	}
	if m.current.ID != jobID {
		return m.current, ErrStaleJob
	}
	if report.Status != m.current.Status && !isValidTransition(m.current.Status, report.Status) {
		return m.current, fmt.Errorf("invalid transition: %s -> %s", m.current.Status, report.Status)
	}

	m.current.Status = report.Status
	m.current.Completed = report.Completed
	m.current.Total = report.Total
	m.current.Progress = report.Progress
	switch report.Status {
	case domain.JobStatusCompleted:
		m.current.Results = append([]domain.Preview(nil), report.Results...)
	case domain.JobStatusFailed:
		m.current.Error = report.Error
		if m.current.Error == "" {
			m.current.Error = "generation failed"
		}
	}
	return snapshot(m.current), nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.current)
}

// UpdateResult replaces one stored result, matched by preview id.
func (m *Manager) UpdateResult(previewID string, updated domain.Preview) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, result := range m.current.Results {
		if result.PreviewID == previewID {
			m.current.Results[i] = updated
			return true
		}
	}
	return false
}

// Reset forgets the current job.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{Status: domain.JobStatusNone}
}

// IsActive reports whether the current job still needs polling.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.ID != "" && !m.current.Status.Terminal()
}

func snapshot(job domain.Job) domain.Job {
	job.Results = append([]domain.Preview(nil), job.Results...)
	return job
}

// isValidTransition enforces the forward-only job state machine.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusNone:
		return to == domain.JobStatusQueued || to == domain.JobStatusProcessing
	case domain.JobStatusQueued:
		return to == domain.JobStatusProcessing || to == domain.JobStatusCompleted || to == domain.JobStatusFailed
	case domain.JobStatusProcessing:
		return to == domain.JobStatusCompleted || to == domain.JobStatusFailed
	default:
		return false
	}
}
