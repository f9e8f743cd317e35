// Package editor tracks one editing session: screenshots bound to a template,
// sparse per-screenshot overrides and the set of screenshots whose preview no
// longer matches their settings.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"preview-studio/internal/domain"
)

var (
	ErrEmptySession        = errors.New("editor has no screenshots")
	ErrIndexOutOfRange     = errors.New("screenshot index out of range")
	ErrNothingToRegenerate = errors.New("no edited screenshots to regenerate")
	ErrProjectNameRequired = errors.New("project name is required")
)

const defaultMaxParallel = 4

// State is a read-only copy of the session for the view layer.
type State struct {
	Template    domain.Template           `json:"template"`
	Screenshots []domain.EditorScreenshot `json:"screenshots"`
	Cursor      int                       `json:"cursor"`
	Active      *domain.EffectiveSettings `json:"active,omitempty"`
	Overrides   map[int]domain.Override   `json:"overrides"`
	Dirty       []int                     `json:"dirty"`
	ProjectID   string                    `json:"projectId,omitempty"`
	ProjectName string                    `json:"projectName"`
}

// Session is safe for concurrent use. Network calls never run under its lock.
type Session struct {
	renderer    Renderer
	saver       ProjectSaver
	maxParallel int
	logger      *slog.Logger

	mu          sync.Mutex
	template    domain.Template
	screenshots []domain.EditorScreenshot
	cursor      int
	overrides   map[int]domain.Override
	dirty       map[int]struct{}
	draft       *domain.Override
	generations []uint64
	epoch       uint64
	projectID   string
	projectName string
}

// NewSession creates an empty session. maxParallel <= 0 uses 4.
func NewSession(r Renderer, saver ProjectSaver, maxParallel int, logger *slog.Logger) *Session {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		renderer:    r,
		saver:       saver,
		maxParallel: maxParallel,
		logger:      logger,
		overrides:   map[int]domain.Override{},
		dirty:       map[int]struct{}{},
	}
}

// Load replaces the whole session. An empty screenshot list is accepted and
// yields an inert editor.
func (s *Session) Load(screenshots []domain.EditorScreenshot, tpl domain.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(screenshots, tpl)
	s.logger.Debug("editor session loaded", "template", tpl.Name, "screenshots", len(screenshots))
}

func (s *Session) reset(screenshots []domain.EditorScreenshot, tpl domain.Template) {
	s.template = tpl
	s.screenshots = slices.Clone(screenshots)
	s.cursor = 0
	s.overrides = map[int]domain.Override{}
	s.dirty = map[int]struct{}{}
	s.draft = nil
	s.generations = make([]uint64, len(screenshots))
	s.epoch++
	s.projectID = ""
	s.projectName = ""
}

// SetProjectName names the project the next save creates or updates.
func (s *Session) SetProjectName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectName = name
}

// Select moves the cursor and returns the effective settings at index.
// An uncommitted draft for the previous cursor is dropped.
func (s *Session) Select(index int) (domain.EffectiveSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return domain.EffectiveSettings{}, err
	}
	s.cursor = index
	s.draft = nil
	return s.effective(index), nil
}

// Cursor returns the selected index.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// UpdateSetting records an edit. With applyToAll only the background type,
// gradient colors, solid color and rotation are merged into every override
// and every index becomes dirty. Otherwise o replaces the cursor's override
// as a whole and only the cursor becomes dirty.
func (s *Session) UpdateSetting(o domain.Override, applyToAll bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.screenshots) == 0 {
		return ErrEmptySession
	}
	s.draft = nil

	if applyToAll {
		shared := broadcastFields(o)
		for i := range s.screenshots {
			s.overrides[i] = merge(s.overrides[i], shared)
			s.markDirty(i)
		}
		return nil
	}

	s.overrides[s.cursor] = cloneOverride(o)
	s.markDirty(s.cursor)
	return nil
}

// Draft holds an edit for the cursor without committing it. The draft is
// committed by Regenerate and SaveProject and dropped by Select.
func (s *Session) Draft(o domain.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.screenshots) == 0 {
		return ErrEmptySession
	}
	draft := cloneOverride(o)
	s.draft = &draft
	return nil
}

// SetCaption stores a caption for index on top of its override.
func (s *Session) SetCaption(index int, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.overrides[index] = merge(s.overrides[index], domain.Override{Text: ptr(caption)})
	s.markDirty(index)
	return nil
}

// SetBackgroundImage switches the cursor, or every screenshot, to an uploaded
// background image. Other override fields are kept.
func (s *Session) SetBackgroundImage(fileID string, applyToAll bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.screenshots) == 0 {
		return ErrEmptySession
	}
	s.draft = nil

	image := domain.Override{
		BackgroundType:    ptr(domain.BackgroundImage),
		BackgroundImageID: ptr(fileID),
	}
	indices := []int{s.cursor}
	if applyToAll {
		indices = lo.Range(len(s.screenshots))
	}
	for _, i := range indices {
		s.overrides[i] = merge(s.overrides[i], image)
		s.markDirty(i)
	}
	return nil
}

// Override returns the stored override of index.
func (s *Session) Override(index int) (domain.Override, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.overrides[index]
	return cloneOverride(o), ok
}

// Effective returns the resolved settings of index.
func (s *Session) Effective(index int) (domain.EffectiveSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return domain.EffectiveSettings{}, err
	}
	return s.effective(index), nil
}

// Dirty returns the dirty indices in ascending order.
func (s *Session) Dirty() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyIndices()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Template:    s.template,
		Screenshots: slices.Clone(s.screenshots),
		Cursor:      s.cursor,
		Overrides: lo.MapValues(s.overrides, func(o domain.Override, _ int) domain.Override {
			return cloneOverride(o)
		}),
		Dirty:       s.dirtyIndices(),
		ProjectID:   s.projectID,
		ProjectName: s.projectName,
	}
	if len(s.screenshots) > 0 {
		active := s.effective(s.cursor)
		if s.draft != nil {
			active = resolve(*s.draft, s.template.Settings, s.screenshots[s.cursor].Caption)
		}
		state.Active = &active
	}
	return state
}

func (s *Session) effective(index int) domain.EffectiveSettings {
	return resolve(s.overrides[index], s.template.Settings, s.screenshots[index].Caption)
}

// commitDraft writes the pending cursor edit into the override map and marks
// the cursor dirty.
func (s *Session) commitDraft() {
	if s.draft == nil {
		return
	}
	s.overrides[s.cursor] = *s.draft
	s.draft = nil
	s.markDirty(s.cursor)
}

// markDirty flags index and invalidates renders already in flight for it.
func (s *Session) markDirty(index int) {
	s.dirty[index] = struct{}{}
	s.generations[index]++
}

func (s *Session) dirtyIndices() []int {
	out := lo.Keys(s.dirty)
	slices.Sort(out)
	return out
}

func (s *Session) checkIndex(index int) error {
	if len(s.screenshots) == 0 {
		return ErrEmptySession
	}
	if index < 0 || index >= len(s.screenshots) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.screenshots))
	}
	return nil
}
