package store

import (
	"errors"
	"testing"

	"preview-studio/internal/domain"
)

// TestNewStoreDefaults checks the initial render settings.
func TestNewStoreDefaults(t *testing.T) {
	s := New(nil)
	settings := s.Settings()
	if settings.DeviceFrame != "iphone-15-pro" || settings.OutputSize != domain.OutputSizeAppStore {
		t.Fatalf("unexpected defaults %+v", settings)
	}
	if settings.BackgroundType != domain.BackgroundGradient || len(settings.BackgroundConfig.Colors) != 2 {
		t.Fatalf("unexpected background %+v", settings.BackgroundConfig)
	}
	if settings.Positioning.Scale != 0.85 || !settings.Positioning.Shadow {
		t.Fatalf("unexpected positioning %+v", settings.Positioning)
	}
	if s.Job().Status != domain.JobStatusNone {
		t.Fatalf("job status = %s, want none", s.Job().Status)
	}
}

// TestScreenshotLifecycle covers add, replace, text, remove and clear.
func TestScreenshotLifecycle(t *testing.T) {
	s := New(nil)
	s.AddScreenshots(
		domain.Screenshot{ID: "a", Filename: "a.png"},
		domain.Screenshot{ID: "b", Filename: "b.png"},
	)
	s.AddScreenshots(domain.Screenshot{ID: "a", Filename: "a2.png"})
	shots := s.Screenshots()
	if len(shots) != 2 || shots[0].Filename != "a2.png" {
		t.Fatalf("unexpected screenshots %+v", shots)
	}

	overlay := &domain.TextOverlay{Text: "Hello", Position: "top", FontSize: 80, Color: "#FFFFFF"}
	if !s.SetScreenshotText("b", overlay) {
		t.Fatal("expected text to be set")
	}
	overlay.Text = "mutated"
	got, _ := s.Screenshot("b")
	if got.TextOverlay == nil || got.TextOverlay.Text != "Hello" {
		t.Fatalf("overlay = %+v", got.TextOverlay)
	}
	if s.SetScreenshotText("missing", overlay) {
		t.Fatal("unknown id must not match")
	}

	if !s.RemoveScreenshot("a") || s.RemoveScreenshot("a") {
		t.Fatal("remove should succeed once")
	}
	s.ClearScreenshots()
	if len(s.Screenshots()) != 0 {
		t.Fatal("expected empty list after clear")
	}
}

// TestSettingsUpdates merges patches and templates.
func TestSettingsUpdates(t *testing.T) {
	s := New(nil)
	frame := "pixel-8"
	s.UpdateSettings(SettingsPatch{DeviceFrame: &frame})

	scale := 0.6
	s.UpdatePositioning(domain.PositioningPatch{Scale: &scale})
	settings := s.UpdateBackground(domain.BackgroundSolid, domain.BackgroundConfig{Color: "#000000"})
	if settings.DeviceFrame != "pixel-8" || settings.Positioning.Scale != 0.6 || !settings.Positioning.Shadow {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if settings.BackgroundType != domain.BackgroundSolid || settings.BackgroundConfig.Color != "#000000" {
		t.Fatalf("unexpected background %+v", settings)
	}

	settings = s.ApplyTemplate(domain.TemplateSettings{
		DeviceFrame:      "iphone-15-pro",
		BackgroundType:   domain.BackgroundGradient,
		BackgroundConfig: domain.BackgroundConfig{Colors: []string{"#4A90E2", "#50C9E8"}},
		Positioning:      domain.Positioning{Scale: 0.85, Rotation: -2, Shadow: true},
	})
	if settings.Positioning.Rotation != -2 || settings.BackgroundConfig.Colors[0] != "#4A90E2" {
		t.Fatalf("template not applied: %+v", settings)
	}
	if settings.OutputSize != domain.OutputSizeAppStore {
		t.Fatalf("output size = %s, want kept", settings.OutputSize)
	}
}

// TestBuildGenerateRequest maps screenshots and settings.
func TestBuildGenerateRequest(t *testing.T) {
	s := New(nil)
	if _, err := s.BuildGenerateRequest(); !errors.Is(err, ErrNoScreenshots) {
		t.Fatalf("err = %v, want %v", err, ErrNoScreenshots)
	}

	s.AddScreenshots(domain.Screenshot{ID: "a"}, domain.Screenshot{ID: "b"})
	s.SetScreenshotText("b", &domain.TextOverlay{Text: "Caption"})
	req, err := s.BuildGenerateRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(req.Screenshots) != 2 || req.Screenshots[0].TextOverlay != nil || req.Screenshots[1].TextOverlay.Text != "Caption" {
		t.Fatalf("unexpected screenshots %+v", req.Screenshots)
	}
	if req.DeviceFrame != "iphone-15-pro" || req.OutputSize != domain.OutputSizeAppStore {
		t.Fatalf("unexpected request %+v", req)
	}
}

// TestMarkPreviewEdited swaps the preview id of a finished job result.
func TestMarkPreviewEdited(t *testing.T) {
	s := New(nil)
	s.Jobs().Start("job-1")
	s.Jobs().Observe("job-1", domain.JobReport{
		Status:  domain.JobStatusCompleted,
		Results: []domain.Preview{{PreviewID: "p1", Caption: "old"}},
	})

	if !s.MarkPreviewEdited("p1", "edited_p1", "new") {
		t.Fatal("expected edit to apply")
	}
	result := s.Job().Results[0]
	if result.PreviewID != "edited_p1" || result.Caption != "new" || result.EditedAt.IsZero() {
		t.Fatalf("unexpected result %+v", result)
	}

	s.ClearJob()
	if s.Snapshot().Job.ID != "" {
		t.Fatal("expected job to be cleared")
	}
}
