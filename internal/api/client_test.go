package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"preview-studio/internal/domain"
)

// newTestClient starts a backend stub and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), nil)
}

// TestUploadSendsMultipartFiles verifies the files field and response mapping.
func TestUploadSendsMultipartFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Fatal("expected request id header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("files = %d, want 2", len(files))
		}
		if files[0].Filename != "home.png" {
			t.Fatalf("filename = %q, want home.png", files[0].Filename)
		}
		w.Write([]byte(`{"success":true,"count":2,"files":[
			{"id":"a","filename":"home.png","path":"uploads/a.png","size":3},
			{"id":"b","filename":"feed.png","path":"uploads/b.png","size":4}]}`))
	})

	resp, err := client.Upload(context.Background(), []FileUpload{
		{Name: "/tmp/shots/home.png", Data: []byte("png")},
		{Name: "feed.png", Data: []byte("png2")},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(resp.Files) != 2 || resp.Files[1].ID != "b" || resp.Files[0].Path != "uploads/a.png" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

// TestUploadRejectsEmptyBatch checks no request is made for zero files.
func TestUploadRejectsEmptyBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	if _, err := client.Upload(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty upload")
	}
}

// TestGenerateEncodesRequest verifies the snake_case wire body.
func TestGenerateEncodesRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["device_frame"] != "iphone-15-pro" {
			t.Fatalf("device_frame = %v", body["device_frame"])
		}
		if body["output_size"] != "app-store" {
			t.Fatalf("output_size = %v", body["output_size"])
		}
		positioning := body["positioning"].(map[string]any)
		if positioning["x_offset"] != float64(0) || positioning["shadow"] != true {
			t.Fatalf("positioning = %v", positioning)
		}
		w.Write([]byte(`{"success":true,"job_id":"job-1"}`))
	})

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Screenshots:      []GenerateScreenshot{{ID: "a"}},
		DeviceFrame:      "iphone-15-pro",
		BackgroundType:   domain.BackgroundGradient,
		BackgroundConfig: domain.BackgroundConfig{Colors: []string{"#667eea", "#764ba2"}},
		Positioning:      domain.Positioning{Scale: 0.85, Shadow: true},
		OutputSize:       domain.OutputSizeAppStore,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.JobID != "job-1" {
		t.Fatalf("job id = %q", resp.JobID)
	}
}

// TestStatusReport maps the wire payload into a job report.
func TestStatusReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status/job-1" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"job_id":"job-1","status":"failed","progress":50,"total_screenshots":2,
			"completed_screenshots":1,"results":[],"error":"fal quota"}`))
	})

	resp, err := client.Status(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	report := resp.Report()
	if report.Status != domain.JobStatusFailed || report.Error != "fal quota" || report.Completed != 1 || report.Total != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
}

// TestHTTPErrorCarriesDetail checks non-2xx responses become *HTTPError.
func TestHTTPErrorCarriesDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Job not found"}`))
	})

	_, err := client.Status(context.Background(), "missing")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if !httpErr.NotFound() || httpErr.Detail != "Job not found" {
		t.Fatalf("unexpected http error %+v", httpErr)
	}
}

// TestApplicationFailureBecomesAPIError checks success=false handling.
func TestApplicationFailureBecomesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"disk full"}`))
	})

	_, err := client.SaveProject(context.Background(), SaveProjectRequest{Name: "Launch"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "disk full" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

// TestDecodeErrorIsReturned checks malformed payloads surface parse errors.
func TestDecodeErrorIsReturned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	if _, err := client.ListProjects(context.Background()); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("error = %v, want decode error", err)
	}
}

// TestRenderPreviewRequiresPreviewID checks the full-form edit endpoint.
func TestRenderPreviewRequiresPreviewID(t *testing.T) {
	var got RenderPreviewRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/edit-preview" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), `"background_image_id":null`) {
			t.Fatalf("expected explicit null background image id, body=%s", data)
		}
		json.Unmarshal(data, &got)
		w.Write([]byte(`{"success":true,"preview_id":"edited_1"}`))
	})

	resp, err := client.RenderPreview(context.Background(), RenderPreviewRequest{
		ScreenshotPath: "uploads/a.png",
		Caption:        "Track it ALL!",
		TextPosition:   "top",
		TextColor:      "white",
		DeviceFrame:    "iphone-15-pro",
		BackgroundType: domain.BackgroundSolid,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if resp.PreviewID != "edited_1" || got.Caption != "Track it ALL!" {
		t.Fatalf("resp=%+v got=%+v", resp, got)
	}
}

// TestDownloadURLIsPureFormatting verifies no request is needed.
func TestDownloadURLIsPureFormatting(t *testing.T) {
	client := New("http://localhost:8000/", nil, nil)
	if got := client.DownloadURL("p-1"); got != "http://localhost:8000/api/download/p-1" {
		t.Fatalf("url = %s", got)
	}
}

// TestDownloadReturnsBytes checks binary preview fetches.
func TestDownloadReturnsBytes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/download/p-1" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	data, err := client.Download(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if len(data) != 4 {
		t.Fatalf("len = %d, want 4", len(data))
	}
}

// TestCaptionAndTemplatePreview cover the remaining POST endpoints.
func TestCaptionAndTemplatePreview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate-caption/a":
			w.Write([]byte(`{"success":true,"caption":"Plan trips FASTER!","position":"top","font_size":80,"color":"#FFFFFF"}`))
		case "/api/generate-template-preview":
			var body map[string]int
			json.NewDecoder(r.Body).Decode(&body)
			if body["template_id"] != 2 {
				t.Fatalf("template_id = %d", body["template_id"])
			}
			w.Write([]byte(`{"success":true,"template_id":2,"previews":[{"preview_id":"t1","caption":"Sunny","screenshot_path":"templates/w/1.png"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	caption, err := client.Caption(context.Background(), "a")
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if overlay := caption.Overlay(); overlay.Text != "Plan trips FASTER!" || overlay.FontSize != 80 {
		t.Fatalf("overlay = %+v", overlay)
	}

	tpl, err := client.TemplatePreview(context.Background(), 2)
	if err != nil {
		t.Fatalf("template preview: %v", err)
	}
	if len(tpl.Previews) != 1 || tpl.Previews[0].ScreenshotPath != "templates/w/1.png" {
		t.Fatalf("previews = %+v", tpl.Previews)
	}
}
