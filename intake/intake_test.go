package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/drummonds/rotatepdf/session"
)

// brokenReader returns some bytes and then fails
type brokenReader struct {
	sent bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "%PDF-1.4"), nil
	}
	return 0, errors.New("connection reset")
}

func TestAcceptReadsWholeFile(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100_000)
	got, err := New(0).Accept(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Expected %d bytes, got %d", len(data), len(got))
	}
}

func TestAcceptReadFailure(t *testing.T) {
	got, err := New(0).Accept(context.Background(), &brokenReader{})
	if !errors.Is(err, session.ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected no partial buffer, got %d bytes", len(got))
	}
}

func TestAcceptSizeLimit(t *testing.T) {
	in := New(10)

	if _, err := in.Accept(context.Background(), strings.NewReader("0123456789")); err != nil {
		t.Errorf("File at the limit should be accepted: %v", err)
	}

	got, err := in.Accept(context.Background(), strings.NewReader("0123456789A"))
	if !errors.Is(err, session.ErrIO) || !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrIO wrapping ErrTooLarge, got %v", err)
	}
	if got != nil {
		t.Error("Expected no buffer for oversized file")
	}
}

func TestAcceptCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0).Accept(ctx, strings.NewReader("data"))
	if !errors.Is(err, session.ErrIO) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected ErrIO wrapping context.Canceled, got %v", err)
	}
}

func TestHasPDFExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.pdf", true},
		{"A.PDF", true},
		{"archive.pdf.zip", false},
		{"notes.txt", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		if got := HasPDFExtension(tt.name); got != tt.want {
			t.Errorf("HasPDFExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Intake satisfies the session's intake capability
var _ session.Intake = (*Intake)(nil)

var _ io.Reader = (*contextReader)(nil)
