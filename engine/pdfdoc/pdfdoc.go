// Package pdfdoc is the parse / set-rotation / serialize capability used by the session and
// the exporter. Any engine that can address pages, overwrite /Rotate and rebuild the file can
// stand behind these interfaces.
package pdfdoc

import (
	"context"
	"io"
)

// Parser opens raw PDF bytes as an addressable page collection
type Parser interface {
	Parse(ctx context.Context, raw []byte) (Document, error)
	// PageCount parses raw only far enough to count its pages
	PageCount(ctx context.Context, raw []byte) (int, error)
}

// Document is a parsed PDF object graph
type Document interface {
	PageCount() int
	// Page returns the zero-based page i
	Page(i int) (Page, error)
	// Serialize rebuilds the whole file, cross-reference data included, into w
	Serialize(w io.Writer) error
}

// Page is one page of a parsed Document
type Page interface {
	// Rotation is the effective /Rotate, inherited from the page tree if the page has none
	Rotation() (int, error)
	// SetRotation overwrites the page's own /Rotate with an absolute value
	SetRotation(deg int) error
}

// ValidRotation reports whether deg is one of 0, 90, 180, 270
func ValidRotation(deg int) bool {
	return deg >= 0 && deg < 360 && deg%90 == 0
}
