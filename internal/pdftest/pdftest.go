// Package pdftest writes small, valid PDF files for tests so no binary fixtures are needed.
package pdftest

import (
	"bytes"
	"fmt"
)

// Builder describes a document with one text line per page.
type Builder struct {
	pageRotate []int // -1 leaves /Rotate off the page
	rootRotate int   // -1 leaves /Rotate off the page tree root
}

// Pages starts a document with n pages and no /Rotate entries
func Pages(n int) *Builder {
	b := &Builder{pageRotate: make([]int, n), rootRotate: -1}
	for i := range b.pageRotate {
		b.pageRotate[i] = -1
	}
	return b
}

// Rotate sets an explicit /Rotate on page i
func (b *Builder) Rotate(i, deg int) *Builder {
	b.pageRotate[i] = deg
	return b
}

// Inherit puts /Rotate on the page tree root so every page without its own entry inherits it
func (b *Builder) Inherit(deg int) *Builder {
	b.rootRotate = deg
	return b
}

// Bytes serializes the document with a classic cross-reference table
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	var offsets []int

	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	n := len(b.pageRotate)
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}

	rootRotate := ""
	if b.rootRotate >= 0 {
		rootRotate = fmt.Sprintf(" /Rotate %d", b.rootRotate)
	}

	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d%s >>", kids, n, rootRotate))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i := 0; i < n; i++ {
		rotate := ""
		if b.pageRotate[i] >= 0 {
			rotate = fmt.Sprintf(" /Rotate %d", b.pageRotate[i])
		}
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 300] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>", 5+2*i, rotate))

		content := fmt.Sprintf("BT /F1 24 Tf 40 150 Td (Page %d) Tj ET", i+1)
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}
