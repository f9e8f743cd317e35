// Package imaging decodes, scales and re-encodes preview images locally.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"preview-studio/internal/domain"
)

const (
	jpegQuality = 90
	webpQuality = 85
)

// Convert re-encodes data into format. PNG input requested as PNG is
// returned unchanged.
func Convert(data []byte, format domain.ExportFormat) ([]byte, error) {
	if format == domain.ExportFormatPNG && isPNG(data) {
		return data, nil
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	switch format {
	case domain.ExportFormatPNG:
		err = png.Encode(&out, img)
	case domain.ExportFormatJPG:
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality})
	case domain.ExportFormatWEBP:
		var opts *encoder.Options
		opts, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
		if err == nil {
			err = webp.Encode(&out, img, opts)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return out.Bytes(), nil
}

// Decode reads PNG, JPEG or WebP data.
func Decode(data []byte) (image.Image, error) {
	if isWEBP(data) {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("decode webp: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Extension returns the file extension, with dot, for format.
func Extension(format domain.ExportFormat) string {
	switch format {
	case domain.ExportFormatJPG:
		return ".jpg"
	case domain.ExportFormatWEBP:
		return ".webp"
	default:
		return ".png"
	}
}

func isWEBP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

func isPNG(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	return bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
}
