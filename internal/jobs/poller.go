package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"preview-studio/internal/domain"
)

// DefaultPollInterval is the fixed delay between two status fetches.
const DefaultPollInterval = 2 * time.Second

// StatusFetcher reads the backend status of one job.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, jobID string) (domain.JobReport, error)
}

// StatusFetcherFunc adapts a function to StatusFetcher.
type StatusFetcherFunc func(ctx context.Context, jobID string) (domain.JobReport, error)

// FetchStatus calls f.
func (f StatusFetcherFunc) FetchStatus(ctx context.Context, jobID string) (domain.JobReport, error) {
	return f(ctx, jobID)
}

// Poll is the handle of one running polling loop.
type Poll struct {
	JobID  string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the loop. The in-flight fetch, if any, is aborted.
func (p *Poll) Cancel() {
	p.cancel()
}

// Done is closed once the loop has exited.
func (p *Poll) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the loop exits.
func (p *Poll) Wait() {
	<-p.done
}

// Poller drives the current job of a Manager to a terminal state.
type Poller struct {
	fetcher  StatusFetcher
	manager  *Manager
	bus      *EventBus
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	active *Poll
}

// NewPoller creates a poller. interval <= 0 uses DefaultPollInterval.
func NewPoller(fetcher StatusFetcher, manager *Manager, bus *EventBus, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		manager:  manager,
		bus:      bus,
		interval: interval,
		logger:   logger,
	}
}

// Start makes jobID the current job and begins polling it. Any previous
// loop is cancelled first.
func (p *Poller) Start(ctx context.Context, jobID string) (*Poll, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		p.active.Cancel()
		p.active = nil
	}
	if err := p.manager.Start(jobID); err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	poll := &Poll{
		JobID:  jobID,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.active = poll
	p.publish(Event{JobID: jobID, Type: EventTypeStatus, Status: domain.JobStatusQueued})

	go p.run(loopCtx, poll)
	return poll, nil
}

// Stop cancels the active loop, if any, and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	poll := p.active
	p.active = nil
	p.mu.Unlock()

	if poll != nil {
		poll.Cancel()
		poll.Wait()
	}
}

// Active returns the handle of the running loop, or nil.
func (p *Poller) Active() *Poll {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Poller) run(ctx context.Context, poll *Poll) {
	defer close(poll.done)
	defer poll.cancel()
	defer p.release(poll)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("polling cancelled", "job_id", poll.JobID)
			return
		case <-timer.C:
		}

		if stop := p.tick(ctx, poll.JobID); stop {
			return
		}
		timer.Reset(p.interval)
	}
}

// tick performs one fetch and reports whether the loop should stop.
func (p *Poller) tick(ctx context.Context, jobID string) bool {
	report, err := p.fetcher.FetchStatus(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.Warn("job status fetch failed", "job_id", jobID, "error", err)
		p.publish(Event{JobID: jobID, Type: EventTypeError, Message: err.Error()})
		return false
	}

	job, err := p.manager.Observe(jobID, report)
	switch {
	case errors.Is(err, ErrStaleJob), errors.Is(err, ErrNoActiveJob):
		p.logger.Debug("dropping report for superseded job", "job_id", jobID)
		return true
	case err != nil:
		p.logger.Warn("ignoring job report", "job_id", jobID, "status", report.Status, "error", err)
		return false
	}

	switch job.Status {
	case domain.JobStatusCompleted:
		p.publish(Event{JobID: jobID, Type: EventTypeResult, Status: job.Status, Completed: job.Completed, Total: job.Total, Progress: job.Progress, Results: job.Results})
		p.logger.Info("job completed", "job_id", jobID, "previews", len(job.Results))
		return true
	case domain.JobStatusFailed:
		p.publish(Event{JobID: jobID, Type: EventTypeError, Status: job.Status, Message: job.Error})
		p.logger.Warn("job failed", "job_id", jobID, "error", job.Error)
		return true
	default:
		p.publish(Event{JobID: jobID, Type: EventTypeProgress, Status: job.Status, Completed: job.Completed, Total: job.Total, Progress: job.Progress})
		return false
	}
}

func (p *Poller) release(poll *Poll) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == poll {
		p.active = nil
	}
}

func (p *Poller) publish(event Event) {
	if p.bus != nil {
		p.bus.Publish(event)
	}
}
