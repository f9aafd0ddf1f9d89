// Package preview renders small thumbnails of image files as data URLs.
package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/dropzone/dropzone/internal/upload"
)

// DefaultWidth is the thumbnail width in pixels.
const DefaultWidth = 160

const dataURLPrefix = "data:image/png;base64,"

// Thumbnailer implements upload.Previewer.
type Thumbnailer struct {
	Width int
}

var _ upload.Previewer = Thumbnailer{}

// Preview scales the image at f.Path to the configured width, keeping the
// aspect ratio, and returns it as a PNG data URL. Images narrower than the
// width are not enlarged.
func (t Thumbnailer) Preview(ctx context.Context, f upload.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := imaging.Open(f.Path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	width := t.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
