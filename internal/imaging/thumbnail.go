package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/nfnt/resize"
)

// DefaultThumbnailSize bounds both sides of an upload thumbnail.
const DefaultThumbnailSize = 300

// Thumbnail scales data to fit in a size x size box, keeping the aspect ratio,
// and returns it as a PNG data URL. Images already small enough are not
// enlarged.
func Thumbnail(data []byte, size uint) (string, error) {
	if size == 0 {
		size = DefaultThumbnailSize
	}
	img, err := Decode(data)
	if err != nil {
		return "", err
	}

	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
