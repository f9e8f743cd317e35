package jobs

import (
	"errors"
	"testing"

	"preview-studio/internal/domain"
)

// TestManagerLifecycle verifies normal progression to completed state.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if m.IsActive() {
		t.Fatal("new manager should have no active job")
	}
	if m.Current().Status != domain.JobStatusNone {
		t.Fatalf("status = %s, want none", m.Current().Status)
	}

	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !m.IsActive() {
		t.Fatal("expected active after start")
	}

	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusProcessing, Completed: 1, Total: 2, Progress: 50}); err != nil {
		t.Fatalf("observe processing: %v", err)
	}
	job, err := m.Observe("job-1", domain.JobReport{
		Status:    domain.JobStatusCompleted,
		Completed: 2,
		Total:     2,
		Progress:  100,
		Results:   []domain.Preview{{PreviewID: "p1"}, {PreviewID: "p2"}},
	})
	if err != nil {
		t.Fatalf("observe completed: %v", err)
	}
	if job.Status != domain.JobStatusCompleted || len(job.Results) != 2 {
		t.Fatalf("unexpected job %+v", job)
	}
	if m.IsActive() {
		t.Fatal("completed job should not be active")
	}
}

// TestManagerRejectsBackwardTransition checks the forward-only constraint.
func TestManagerRejectsBackwardTransition(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusProcessing}); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusQueued}); err == nil {
		t.Fatal("expected invalid transition error")
	}
	if m.Current().Status != domain.JobStatusProcessing {
		t.Fatalf("status = %s, want processing", m.Current().Status)
	}

	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusFailed, Error: "fal down"}); err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusCompleted}); err == nil {
		t.Fatal("terminal state must not move")
	}
}

// TestManagerStartSupersedes verifies reports for an old job are dropped.
func TestManagerStartSupersedes(t *testing.T) {
	m := NewManager()
	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start("job-2"); err != nil {
		t.Fatalf("start second: %v", err)
	}

	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusCompleted}); !errors.Is(err, ErrStaleJob) {
		t.Fatalf("err = %v, want %v", err, ErrStaleJob)
	}
	current := m.Current()
	if current.ID != "job-2" || current.Status != domain.JobStatusQueued {
		t.Fatalf("unexpected current job %+v", current)
	}
}

// TestManagerFailedDefaultsMessage checks a failure always carries text.
func TestManagerFailedDefaultsMessage(t *testing.T) {
	m := NewManager()
	m.Start("job-1")
	job, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusFailed})
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if job.Error == "" {
		t.Fatal("expected default error message")
	}
}

// TestManagerObserveWithoutJob returns ErrNoActiveJob.
func TestManagerObserveWithoutJob(t *testing.T) {
	m := NewManager()
	if _, err := m.Observe("job-1", domain.JobReport{Status: domain.JobStatusQueued}); !errors.Is(err, ErrNoActiveJob) {
		t.Fatalf("err = %v, want %v", err, ErrNoActiveJob)
	}
	m.Start("job-1")
	m.Reset()
	if m.Current().ID != "" {
		t.Fatal("reset should forget the job")
	}
}

// TestManagerUpdateResult replaces an edited preview in place.
func TestManagerUpdateResult(t *testing.T) {
	m := NewManager()
	m.Start("job-1")
	m.Observe("job-1", domain.JobReport{Status: domain.JobStatusCompleted, Results: []domain.Preview{{PreviewID: "p1"}}})

	if !m.UpdateResult("p1", domain.Preview{PreviewID: "edited_p1"}) {
		t.Fatal("expected result to be replaced")
	}
	if m.UpdateResult("missing", domain.Preview{}) {
		t.Fatal("unknown preview must not match")
	}
	if got := m.Current().Results[0].PreviewID; got != "edited_p1" {
		t.Fatalf("preview id = %s", got)
	}
}
