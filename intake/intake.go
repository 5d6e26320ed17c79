// Package intake reads user supplied files into memory.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/drummonds/rotatepdf/session"
)

// Intake reads an uploaded file into a byte buffer, enforcing an optional size ceiling.
type Intake struct {
	// MaxBytes is the largest accepted file, zero means unlimited
	MaxBytes int64
}

// New creates an Intake that refuses files larger than maxBytes (0 disables the limit)
func New(maxBytes int64) *Intake {
	return &Intake{MaxBytes: maxBytes}
}

// ErrTooLarge is wrapped into the ErrIO returned for files over the limit
var ErrTooLarge = errors.New("file exceeds upload limit")

// Accept reads r to the end. Either the whole file is returned or an error wrapping
// session.ErrIO; a partially read buffer is never handed out.
func (in *Intake) Accept(ctx context.Context, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrIO, err)
	}

	src := io.Reader(&contextReader{ctx: ctx, r: r})
	if in.MaxBytes > 0 {
		// one extra byte tells us the limit was crossed
		src = io.LimitReader(src, in.MaxBytes+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrIO, err)
	}
	if in.MaxBytes > 0 && int64(buf.Len()) > in.MaxBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", session.ErrIO, ErrTooLarge, in.MaxBytes)
	}
	return buf.Bytes(), nil
}

// HasPDFExtension mirrors the file picker filter; the content itself is not checked.
func HasPDFExtension(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
