package editor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"preview-studio/internal/domain"
)

func effectiveAll(t *testing.T, s *Session) []domain.EffectiveSettings {
	t.Helper()
	n := len(s.Screenshots())
	out := make([]domain.EffectiveSettings, n)
	for i := range out {
		eff, err := s.Effective(i)
		if err != nil {
			t.Fatalf("effective(%d): %v", i, err)
		}
		out[i] = eff
	}
	return out
}

// TestSaveProjectRoundTrip reloads a saved project with identical settings.
func TestSaveProjectRoundTrip(t *testing.T) {
	s, _, saver := newTestSession(t, 3)
	s.UpdateSetting(domain.Override{BackgroundType: ptr(domain.BackgroundSolid), SolidColor: ptr("#101010"), Rotation: ptr(7.0)}, true)
	s.Select(1)
	s.UpdateSetting(domain.Override{Device: ptr("pixel-8"), Text: ptr("Custom"), TextColor: ptr("black")}, false)
	s.Select(2)
	s.Draft(domain.Override{Text: ptr("Draft text"), TextPosition: ptr("bottom")})

	project, err := s.SaveProject(context.Background(), "  Launch  ")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	before := effectiveAll(t, s)
	if before[2].Text != "Draft text" {
		t.Fatalf("draft not committed: %+v", before[2])
	}
	if len(s.Dirty()) != 0 {
		t.Fatalf("dirty = %v, want empty", s.Dirty())
	}
	if project.ID != "proj-1" || project.Name != "Launch" {
		t.Fatalf("project = %+v", project)
	}

	req := saver.reqs[0]
	if req.ProjectID != nil || *req.TemplateID != 2 || len(req.ScreenshotEdits) != 3 {
		t.Fatalf("request = %+v", req)
	}
	if req.Settings.Device != "iphone-15-pro" || req.Settings.BackgroundType != domain.BackgroundGradient ||
		req.Settings.BackgroundConfig.Colors[0] != "#4A90E2" || req.Settings.Positioning.Rotation != -2 {
		t.Fatalf("settings block = %+v", req.Settings)
	}

	tpl := weatherTemplate()
	for name, template := range map[string]*domain.Template{"catalog": &tpl, "derived": nil} {
		reloaded := NewSession(&fakeRenderer{}, &fakeSaver{}, 0, nil)
		reloaded.LoadProject(project, template)
		if got := effectiveAll(t, reloaded); !reflect.DeepEqual(got, before) {
			t.Fatalf("%s: effective settings differ:\n got %+v\nwant %+v", name, got, before)
		}
		state := reloaded.Snapshot()
		if state.Cursor != 0 || len(state.Dirty) != 0 || state.ProjectID != "proj-1" || state.ProjectName != "Launch" {
			t.Fatalf("%s: state = %+v", name, state)
		}
	}
}

// TestSaveProjectUpdatesSameProject sends the recorded id on the next save.
func TestSaveProjectUpdatesSameProject(t *testing.T) {
	s, _, saver := newTestSession(t, 1)
	if _, err := s.SaveProject(context.Background(), "One"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := s.SaveProject(context.Background(), "One"); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if id := saver.reqs[1].ProjectID; id == nil || *id != "proj-1" {
		t.Fatalf("project id = %v", id)
	}
}

// TestSaveProjectValidation checks the name guard and failure handling.
func TestSaveProjectValidation(t *testing.T) {
	s, _, saver := newTestSession(t, 2)
	if _, err := s.SaveProject(context.Background(), "   "); !errors.Is(err, ErrProjectNameRequired) {
		t.Fatalf("err = %v, want %v", err, ErrProjectNameRequired)
	}

	s.UpdateSetting(domain.Override{Text: ptr("x")}, false)
	saver.err = errors.New("backend down")
	if _, err := s.SaveProject(context.Background(), "Launch"); err == nil {
		t.Fatal("expected save error")
	}
	if dirty := s.Dirty(); !reflect.DeepEqual(dirty, []int{0}) {
		t.Fatalf("dirty = %v, want [0]", dirty)
	}
	if s.Snapshot().ProjectID != "" {
		t.Fatal("failed save must not record a project")
	}
}

// TestLoadProjectDerivesTemplate synthesises a template from project settings.
func TestLoadProjectDerivesTemplate(t *testing.T) {
	project := domain.Project{
		ID:   "p-9",
		Name: "Old",
		Screenshots: []domain.ProjectScreenshot{
			{EditorScreenshot: domain.EditorScreenshot{ScreenshotPath: "uploads/a.png", PreviewID: "a", Caption: "First"}},
		},
		Settings: domain.ProjectSettings{
			Device:           "pixel-8",
			BackgroundType:   domain.BackgroundSolid,
			BackgroundConfig: domain.BackgroundConfig{Color: "#222222"},
			Positioning:      domain.Positioning{Scale: 0.7, Rotation: 3},
		},
	}

	s := NewSession(&fakeRenderer{}, &fakeSaver{}, 0, nil)
	s.LoadProject(project, nil)

	state := s.Snapshot()
	if state.Template.Name != CustomTemplateName || state.Template.Settings.DeviceFrame != "pixel-8" {
		t.Fatalf("template = %+v", state.Template)
	}
	eff, _ := s.Effective(0)
	if eff.SolidColor != "#222222" || eff.Rotation != 3 || eff.Text != "First" || eff.TextPosition != "top" {
		t.Fatalf("effective = %+v", eff)
	}
	if _, ok := s.Override(0); ok {
		t.Fatal("no override expected without saved settings")
	}
}
