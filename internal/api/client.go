// Package api maps each capability of the preview backend to one request.
// Calls are never retried; every failure is returned to the caller as is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the preview backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health calls GET /.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/", nil, &out)
	return out, err
}

// Upload stores screenshots on the backend (multipart field "files").
func (c *Client) Upload(ctx context.Context, files []FileUpload) (UploadResponse, error) {
	var out UploadResponse
	if len(files) == 0 {
		return out, fmt.Errorf("upload: no files")
	}
	err := c.doMultipart(ctx, "/api/upload", "files", files, &out)
	return out, err
}

// UploadBackground stores one custom background image (multipart field "file").
func (c *Client) UploadBackground(ctx context.Context, file FileUpload) (BackgroundUploadResponse, error) {
	var out BackgroundUploadResponse
	if err := c.doMultipart(ctx, "/api/upload-background", "file", []FileUpload{file}, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "upload background"}
	}
	return out, nil
}

// Generate starts a batch rendering job.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var out GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return out, err
	}
	if out.JobID == "" {
		return out, &APIError{Op: "generate", Message: "response has no job id"}
	}
	return out, nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/status/"+url.PathEscape(jobID), nil, &out)
	return out, err
}

// DownloadURL formats the download location of a preview. No request is made.
func (c *Client) DownloadURL(previewID string) string {
	return c.baseURL + "/api/download/" + url.PathEscape(previewID)
}

// Download fetches the rendered image bytes of a preview.
func (c *Client) Download(ctx context.Context, previewID string) ([]byte, error) {
	path := "/api/download/" + url.PathEscape(previewID)
	resp, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// CleanupJob tears down a job and its artifacts on the backend.
func (c *Client) CleanupJob(ctx context.Context, jobID string) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/cleanup/"+url.PathEscape(jobID), nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return &APIError{Op: "cleanup job"}
	}
	return nil
}

// Caption asks the backend for an AI-generated caption of one screenshot.
func (c *Client) Caption(ctx context.Context, screenshotID string) (CaptionResponse, error) {
	var out CaptionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate-caption/"+url.PathEscape(screenshotID), nil, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "generate caption"}
	}
	return out, nil
}

// EditPreview re-renders a generated preview with a new caption overlay.
func (c *Client) EditPreview(ctx context.Context, previewID string, overlay TextOverlayPatch) (EditPreviewResponse, error) {
	var out EditPreviewResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/edit-preview/"+url.PathEscape(previewID), overlay, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "edit preview"}
	}
	return out, nil
}

// RenderPreview renders one screenshot with a complete settings set.
func (c *Client) RenderPreview(ctx context.Context, req RenderPreviewRequest) (RenderPreviewResponse, error) {
	var out RenderPreviewResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/edit-preview", req, &out); err != nil {
		return out, err
	}
	if !out.Success || out.PreviewID == "" {
		return out, &APIError{Op: "render preview", Message: "generation failed"}
	}
	return out, nil
}

// TemplatePreview renders the example screenshots of a backend template.
func (c *Client) TemplatePreview(ctx context.Context, templateID int) (TemplatePreviewResponse, error) {
	var out TemplatePreviewResponse
	body := map[string]int{"template_id": templateID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate-template-preview", body, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "generate template preview"}
	}
	return out, nil
}

// TemplateInfo fetches the caption and settings presets of a backend template.
func (c *Client) TemplateInfo(ctx context.Context, templateID int) (TemplateInfoResponse, error) {
	var out TemplateInfoResponse
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/templates/%d", templateID), nil, &out)
	return out, err
}

// ListProjects returns saved projects, most recently updated first.
func (c *Client) ListProjects(ctx context.Context) (ProjectsResponse, error) {
	var out ProjectsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "list projects"}
	}
	return out, nil
}

// Project fetches one saved project.
func (c *Client) Project(ctx context.Context, projectID string) (ProjectResponse, error) {
	var out ProjectResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/project/"+url.PathEscape(projectID), nil, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "get project", Message: out.Error}
	}
	return out, nil
}

// SaveProject creates or updates a project.
func (c *Client) SaveProject(ctx context.Context, req SaveProjectRequest) (ProjectResponse, error) {
	var out ProjectResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/save-project", req, &out); err != nil {
		return out, err
	}
	if !out.Success {
		return out, &APIError{Op: "save project", Message: out.Error}
	}
	return out, nil
}

// doJSON sends an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(method, path, resp.Body, out)
}

// doMultipart uploads files under one form field and decodes the JSON answer.
func (c *Client) doMultipart(ctx context.Context, path, field string, files []FileUpload, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := form.CreateFormFile(field, filepath.Base(f.Name))
		if err != nil {
			return fmt.Errorf("build multipart %s: %w", path, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("build multipart %s: %w", path, err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build multipart %s: %w", path, err)
	}

	resp, err := c.send(ctx, http.MethodPost, path, &buf, form.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(http.MethodPost, path, resp.Body, out)
}

// send performs the request and converts non-2xx answers into *HTTPError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		httpErr := &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		}
		c.logger.Warn("backend returned error", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
		return nil, httpErr
	}

	c.logger.Debug("backend request", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
	return resp, nil
}

// decode parses a JSON body into out when out is non-nil.
func decode(method, path string, r io.Reader, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, r)
		return nil
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readDetail extracts a FastAPI-style {"detail": "..."} message if present.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			return d
		case nil:
		default:
			encoded, _ := json.Marshal(d)
			return string(encoded)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
