// Package export saves rendered previews from the backend into a local folder.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"preview-studio/internal/domain"
	"preview-studio/internal/imaging"
)

// Stages reported through Request.OnStage.
const (
	StageDownloading = "downloading"
	StageConverting  = "converting"
	StageWriting     = "writing"
)

// Downloader fetches the image bytes of one rendered preview.
type Downloader interface {
	Download(ctx context.Context, previewID string) ([]byte, error)
}

// Item is one preview to export. Name is used for the file name when set.
type Item struct {
	PreviewID string `json:"previewId"`
	Name      string `json:"name,omitempty"`
}

// Request describes one export run.
type Request struct {
	Items     []Item
	OutputDir string
	Format    domain.ExportFormat
	OnStage   func(stage string, index int)
}

// File is one exported image.
type File struct {
	PreviewID string `json:"previewId"`
	Path      string `json:"path"`
	Size      int    `json:"size"`
}

// Result lists the files written by Run.
type Result struct {
	Files []File `json:"files"`
}

// PipelineError is a stage-aware error naming the preview that failed.
type PipelineError struct {
	Stage     string `json:"stage"`
	Message   string `json:"message"`
	PreviewID string `json:"previewId,omitempty"`
	Err       error  `json:"-"`
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.PreviewID == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s (preview=%s)", e.Stage, e.Message, e.PreviewID)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Pipeline downloads, converts and writes previews one after another.
type Pipeline struct {
	downloader Downloader
	convert    func(data []byte, format domain.ExportFormat) ([]byte, error)
	mkdirAll   func(path string, perm os.FileMode) error
	writeFile  func(name string, data []byte, perm os.FileMode) error
	rename     func(oldpath, newpath string) error
	remove     func(name string) error
}

// NewPipeline constructs the production pipeline with OS dependencies.
func NewPipeline(downloader Downloader) *Pipeline {
	return &Pipeline{
		downloader: downloader,
		convert:    imaging.Convert,
		mkdirAll:   os.MkdirAll,
		writeFile:  os.WriteFile,
		rename:     os.Rename,
		remove:     os.Remove,
	}
}

// Run exports every item. It stops at the first failure; files written
// before the failure are kept and listed in the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Items) == 0 {
		return Result{}, &PipelineError{Stage: StageDownloading, Message: "nothing to export"}
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return Result{}, &PipelineError{Stage: StageWriting, Message: "output directory is required"}
	}
	format := req.Format
	if format == "" {
		format = domain.ExportFormatPNG
	}
	if err := p.mkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, &PipelineError{
			Stage:   StageWriting,
			Message: fmt.Sprintf("cannot create output directory: %s", req.OutputDir),
			Err:     err,
		}
	}

	var result Result
	for i, item := range req.Items {
		if err := ctx.Err(); err != nil {
			return result, &PipelineError{Stage: StageDownloading, Message: "export cancelled", Err: err}
		}

		emitStage(req.OnStage, StageDownloading, i)
		data, err := p.downloader.Download(ctx, item.PreviewID)
		if err != nil {
			return result, &PipelineError{
				Stage:     StageDownloading,
				Message:   "failed to download preview",
				PreviewID: item.PreviewID,
				Err:       err,
			}
		}

		emitStage(req.OnStage, StageConverting, i)
		encoded, err := p.convert(data, format)
		if err != nil {
			return result, &PipelineError{
				Stage:     StageConverting,
				Message:   fmt.Sprintf("failed to convert preview to %s", format),
				PreviewID: item.PreviewID,
				Err:       err,
			}
		}

		emitStage(req.OnStage, StageWriting, i)
		path := filepath.Join(req.OutputDir, fileName(item, i, format))
		if err := p.write(path, encoded); err != nil {
			return result, &PipelineError{
				Stage:     StageWriting,
				Message:   fmt.Sprintf("failed to write %s", path),
				PreviewID: item.PreviewID,
				Err:       err,
			}
		}
		result.Files = append(result.Files, File{PreviewID: item.PreviewID, Path: path, Size: len(encoded)})
	}
	return result, nil
}

// write stores data next to path first so a partial file never has the
// final name.
func (p *Pipeline) write(path string, data []byte) error {
	partial := path + ".part"
	if err := p.writeFile(partial, data, 0o644); err != nil {
		_ = p.remove(partial)
		return err
	}
	if err := p.rename(partial, path); err != nil {
		_ = p.remove(partial)
		return err
	}
	return nil
}

// emitStage forwards stage updates when callback is configured.
func emitStage(cb func(stage string, index int), stage string, index int) {
	if cb != nil {
		cb(stage, index)
	}
}

// fileName builds "NN-name.ext" from the item name, or "NN-preview.ext".
func fileName(item Item, index int, format domain.ExportFormat) string {
	base := filepath.Base(strings.TrimSpace(item.Name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = sanitize(base)
	if base == "" {
		base = "preview"
	}
	return fmt.Sprintf("%02d-%s%s", index+1, base, imaging.Extension(format))
}

// sanitize keeps letters, digits, dash and underscore; spaces become dashes.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	downloader Downloader,
	convert func(data []byte, format domain.ExportFormat) ([]byte, error),
	writeFile func(name string, data []byte, perm os.FileMode) error,
) *Pipeline {
	p := NewPipeline(downloader)
	if convert != nil {
		p.convert = convert
	}
	if writeFile != nil {
		p.writeFile = writeFile
	}
	return p
}
