package pdfrenderer

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
	dpi float64
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer(dpi int) (*FitzRenderer, error) {
	return &FitzRenderer{dpi: float64(dpi)}, nil
}

// RenderPage opens the document from memory and renders one page
func (r *FitzRenderer) RenderPage(pdfBytes []byte, pageIndex int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", pageIndex, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageIndex, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex, err)
	}
	return img, nil
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
