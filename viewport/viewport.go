// Package viewport produces page previews: a rendered page scaled to the zoom width with the
// pending rotation applied as a display-only overlay. Nothing here changes the document.
package viewport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PageRenderer is the render capability a viewport delegates to
type PageRenderer interface {
	RenderPage(pdfBytes []byte, pageIndex int) (image.Image, error)
}

// PageViewport renders previews through an external renderer
type PageViewport struct {
	renderer PageRenderer
}

// New creates a viewport over renderer
func New(renderer PageRenderer) *PageViewport {
	return &PageViewport{renderer: renderer}
}

// Render draws page pageIndex of raw at zoomWidth pixels wide and turns it clockwise by
// rotation degrees. The width is clamped to the zoom range first.
func (v *PageViewport) Render(ctx context.Context, raw []byte, pageIndex, zoomWidth, rotation int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := v.renderer.RenderPage(raw, pageIndex)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex, err)
	}

	width := ClampZoom(zoomWidth)
	if img.Bounds().Dx() != width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	return Overlay(img, rotation), nil
}

// RenderPNG is Render encoded as PNG
func (v *PageViewport) RenderPNG(ctx context.Context, raw []byte, pageIndex, zoomWidth, rotation int) ([]byte, error) {
	img, err := v.Render(ctx, raw, pageIndex, zoomWidth, rotation)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("unable to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// Overlay turns img clockwise by rotation degrees, like CSS rotate(). imaging rotates
// counter-clockwise, hence the swapped quarter turns.
func Overlay(img image.Image, rotation int) image.Image {
	switch ((rotation % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
