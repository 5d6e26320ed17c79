package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drummonds/rotatepdf/engine/pdfdoc"
	"github.com/drummonds/rotatepdf/session"
)

// Verifier re-opens a written document independently of the library that wrote it
type Verifier interface {
	Verify(raw []byte, pageCount int) error
}

// ExportResult is a finished download
type ExportResult struct {
	Name         string
	Bytes        []byte
	PageCount    int
	RotatedPages int
}

// Saver hands a finished export to its destination
type Saver interface {
	Save(ctx context.Context, result *ExportResult) error
}

// Exporter applies a rotation vector to a source document and rewrites it
type Exporter struct {
	Parser   pdfdoc.Parser
	Verifier Verifier
}

// NewExporter wires an exporter; verifier may be nil
func NewExporter(parser pdfdoc.Parser, verifier Verifier) *Exporter {
	return &Exporter{Parser: parser, Verifier: verifier}
}

// Export parses raw afresh, sets the rotation of every page with a non-zero entry in
// rotations to exactly that value, and serializes the whole document into a new buffer.
// Pages with a zero entry keep whatever rotation the source gave them. Every failure
// wraps session.ErrSerialization and no bytes are returned with it.
func (e *Exporter) Export(ctx context.Context, raw []byte, rotations []int, displayName string) (*ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrSerialization, err)
	}

	doc, err := e.Parser.Parse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrSerialization, err)
	}
	if doc.PageCount() != len(rotations) {
		return nil, fmt.Errorf("%w: %d rotations for %d pages", session.ErrSerialization, len(rotations), doc.PageCount())
	}

	rotated := 0
	for i, deg := range rotations {
		if deg == 0 {
			continue
		}
		page, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", session.ErrSerialization, err)
		}
		if err := page.SetRotation(deg); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", session.ErrSerialization, i, err)
		}
		rotated++
	}

	var buf bytes.Buffer
	if err := doc.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrSerialization, err)
	}
	if e.Verifier != nil {
		if err := e.Verifier.Verify(buf.Bytes(), doc.PageCount()); err != nil {
			return nil, fmt.Errorf("%w: %w", session.ErrSerialization, err)
		}
	}

	Logger.Debug("Exported document", "name", displayName, "pages", doc.PageCount(), "rotated", rotated, "bytes", buf.Len())
	return &ExportResult{
		Name:         session.OutputName(displayName),
		Bytes:        buf.Bytes(),
		PageCount:    doc.PageCount(),
		RotatedPages: rotated,
	}, nil
}

// ExportSession exports the document currently held by s
func (e *Exporter) ExportSession(ctx context.Context, s *session.Session) (*ExportResult, error) {
	doc, rotations, err := s.Current()
	if err != nil {
		return nil, err
	}
	return e.Export(ctx, doc.RawBytes, rotations, doc.DisplayName)
}

// FileSaver writes exports into a directory
type FileSaver struct {
	Dir string
}

// Path is where result will be written
func (f FileSaver) Path(result *ExportResult) string {
	return filepath.Join(f.Dir, result.Name)
}

// Save writes result to Path, creating Dir if needed
func (f FileSaver) Save(ctx context.Context, result *ExportResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Dir != "" {
		if err := os.MkdirAll(f.Dir, 0755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(f.Path(result), result.Bytes, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", result.Name, err)
	}
	return nil
}
