package editor

import (
	"context"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"preview-studio/internal/api"
	"preview-studio/internal/domain"
)

// Renderer renders one screenshot with a complete settings set.
type Renderer interface {
	RenderPreview(ctx context.Context, req api.RenderPreviewRequest) (api.RenderPreviewResponse, error)
}

// Scope selects which screenshots Regenerate renders.
type Scope string

const (
	ScopeDirty Scope = "dirty"
	ScopeAll   Scope = "all"
)

// RegenerateResult tallies one regeneration batch. Stale counts responses
// discarded because the screenshot was edited or the session reloaded while
// the request was in flight.
type RegenerateResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Stale     int           `json:"stale"`
	Errors    map[int]error `json:"-"`
}

type renderJob struct {
	index      int
	generation uint64
	req        api.RenderPreviewRequest
}

type renderOutcome struct {
	previewID string
	caption   string
	err       error
}

// Regenerate renders every screenshot in scope with at most maxParallel
// requests in flight. Failures are independent: a failed index stays dirty
// while the others are updated.
func (s *Session) Regenerate(ctx context.Context, scope Scope) (RegenerateResult, error) {
	jobs, epoch, err := s.prepareRender(scope)
	if err != nil {
		return RegenerateResult{}, err
	}
	s.logger.Info("regenerating previews", "scope", scope, "count", len(jobs))

	outcomes := make([]renderOutcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			resp, err := s.renderer.RenderPreview(ctx, job.req)
			if err != nil {
				outcomes[i] = renderOutcome{err: err}
				return nil
			}
			outcomes[i] = renderOutcome{previewID: resp.PreviewID, caption: job.req.Caption}
			return nil
		})
	}
	_ = g.Wait()

	result := s.applyRender(jobs, outcomes, epoch)
	s.logger.Info("regeneration finished", "succeeded", result.Succeeded, "failed", result.Failed, "stale", result.Stale)
	return result, nil
}

// prepareRender commits the draft, builds one request per index in scope and
// bumps each index's generation.
func (s *Session) prepareRender(scope Scope) ([]renderJob, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.screenshots) == 0 {
		return nil, 0, ErrEmptySession
	}

	s.commitDraft()

	var indices []int
	if scope == ScopeAll {
		indices = lo.Range(len(s.screenshots))
	} else {
		indices = s.dirtyIndices()
		if len(indices) == 0 {
			return nil, 0, ErrNothingToRegenerate
		}
	}

	jobs := make([]renderJob, 0, len(indices))
	for _, i := range indices {
		s.generations[i]++
		jobs = append(jobs, renderJob{
			index:      i,
			generation: s.generations[i],
			req:        renderRequest(s.screenshots[i], s.effective(i), s.template.Settings),
		})
	}
	return jobs, s.epoch, nil
}

// applyRender merges outcomes whose generation is still current.
func (s *Session) applyRender(jobs []renderJob, outcomes []renderOutcome, epoch uint64) RegenerateResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := RegenerateResult{Errors: map[int]error{}}
	for i, job := range jobs {
		outcome := outcomes[i]
		if epoch != s.epoch || s.generations[job.index] != job.generation {
			result.Stale++
			continue
		}
		if outcome.err != nil {
			result.Failed++
			result.Errors[job.index] = outcome.err
			s.logger.Warn("preview render failed", "index", job.index, "error", outcome.err)
			continue
		}

		shot := &s.screenshots[job.index]
		shot.PreviewID = outcome.previewID
		shot.Caption = outcome.caption
		shot.LocalPreview = ""
		delete(s.dirty, job.index)
		result.Succeeded++
	}
	return result
}

// Screenshots returns a copy of the session's screenshot list.
func (s *Session) Screenshots() []domain.EditorScreenshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.screenshots)
}
