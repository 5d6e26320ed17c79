package pdfrenderer

import (
	"fmt"
	"image"
)

// Renderer rasterizes single pages of an in-memory PDF
type Renderer interface {
	// RenderPage draws the zero-based page pageIndex, honouring the page's own /Rotate
	RenderPage(pdfBytes []byte, pageIndex int) (image.Image, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// Kind names a rendering backend in configuration
const (
	KindPDFium = "pdfium"
	KindFitz   = "fitz"
)

// DefaultDPI keeps previews light; the viewport scales the result to the zoom width anyway
const DefaultDPI = 72

// NewRenderer creates the renderer named by kind, PDFium (pure Go, no CGo) unless "fitz" is asked for
func NewRenderer(kind string, dpi int) (Renderer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch kind {
	case KindFitz:
		return NewFitzRenderer(dpi)
	case KindPDFium, "":
		return NewPDFiumRenderer(dpi)
	default:
		return nil, fmt.Errorf("unknown renderer %q", kind)
	}
}
