package session

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// readAllIntake reads the whole reader, like the real intake without a size limit
type readAllIntake struct{}

func (readAllIntake) Accept(ctx context.Context, r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// countParser treats the body as "pages:N" and fails on anything else
type countParser struct{}

func (countParser) PageCount(ctx context.Context, raw []byte) (int, error) {
	rest, ok := strings.CutPrefix(string(raw), "pages:")
	if !ok {
		return 0, errors.New("not a pdf")
	}
	return strconv.Atoi(rest)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func newTestSession() *Session {
	return New(readAllIntake{}, countParser{})
}

func mustLoad(t *testing.T, s *Session, name, body string) {
	t.Helper()
	if err := s.Load(context.Background(), name, strings.NewReader(body)); err != nil {
		t.Fatalf("Failed to load %s: %v", name, err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewSessionIsEmpty(t *testing.T) {
	s := newTestSession()
	if s.State() != Empty {
		t.Errorf("Expected Empty, got %s", s.State())
	}
	if s.PageCount() != 0 {
		t.Errorf("Expected 0 pages, got %d", s.PageCount())
	}
	if len(s.RotationVector()) != 0 {
		t.Errorf("Expected empty rotation vector, got %v", s.RotationVector())
	}
}

func TestLoadInitializesRotationVector(t *testing.T) {
	for _, pages := range []int{0, 2, 3, 5} {
		s := newTestSession()
		mustLoad(t, s, "doc.pdf", "pages:"+strconv.Itoa(pages))

		if s.State() != Ready {
			t.Fatalf("Expected Ready, got %s", s.State())
		}
		vec := s.RotationVector()
		if len(vec) != s.PageCount() || len(vec) != pages {
			t.Errorf("Expected %d rotations, got %d (pageCount %d)", pages, len(vec), s.PageCount())
		}
		for i, v := range vec {
			if v != 0 {
				t.Errorf("Page %d: expected 0, got %d", i, v)
			}
		}
	}
}

func TestRotateAccumulates(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "doc.pdf", "pages:3")

	for k := 1; k <= 9; k++ {
		if err := s.Rotate(1); err != nil {
			t.Fatalf("Rotate failed: %v", err)
		}
		want := (90 * k) % 360
		if got := s.RotationVector()[1]; got != want {
			t.Errorf("After %d rotations expected %d, got %d", k, want, got)
		}
	}

	vec := s.RotationVector()
	if vec[0] != 0 || vec[2] != 0 {
		t.Errorf("Untouched pages changed: %v", vec)
	}
}

func TestRotateInvalidIndex(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "doc.pdf", "pages:2")

	for _, idx := range []int{-1, 2, 100} {
		err := s.Rotate(idx)
		if !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("Rotate(%d): expected ErrInvalidIndex, got %v", idx, err)
		}
	}
	if !equalInts(s.RotationVector(), []int{0, 0}) {
		t.Errorf("Rotation vector changed by invalid calls: %v", s.RotationVector())
	}
}

func TestRotateRequiresReady(t *testing.T) {
	s := newTestSession()
	if err := s.Rotate(0); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady on Empty session, got %v", err)
	}
	if err := s.RotateAll(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady from RotateAll on Empty session, got %v", err)
	}
	if _, _, err := s.Current(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady from Current on Empty session, got %v", err)
	}
}

func TestRotateAllKeepsOffsets(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "doc.pdf", "pages:4")

	// page i gets i clicks: [0, 90, 180, 270]
	for i := 0; i < 4; i++ {
		for k := 0; k < i; k++ {
			if err := s.Rotate(i); err != nil {
				t.Fatalf("Rotate failed: %v", err)
			}
		}
	}
	if !equalInts(s.RotationVector(), []int{0, 90, 180, 270}) {
		t.Fatalf("Unexpected setup vector: %v", s.RotationVector())
	}

	if err := s.RotateAll(); err != nil {
		t.Fatalf("RotateAll failed: %v", err)
	}
	if got := s.RotationVector(); !equalInts(got, []int{90, 180, 270, 0}) {
		t.Errorf("Expected [90 180 270 0], got %v", got)
	}
}

func TestRemoveThenLoadResets(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "three.pdf", "pages:3")
	if err := s.Rotate(0); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	s.Remove()
	if s.State() != Empty {
		t.Errorf("Expected Empty after Remove, got %s", s.State())
	}
	if s.DisplayName() != "" {
		t.Errorf("Expected no display name after Remove, got %q", s.DisplayName())
	}

	mustLoad(t, s, "five.pdf", "pages:5")
	if got := s.RotationVector(); !equalInts(got, []int{0, 0, 0, 0, 0}) {
		t.Errorf("Expected [0 0 0 0 0], got %v", got)
	}
	if s.DisplayName() != "five" {
		t.Errorf("Expected display name five, got %q", s.DisplayName())
	}
}

func TestLoadOverReadyDiscardsOldState(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "a.pdf", "pages:2")
	s.Rotate(1)

	mustLoad(t, s, "b.pdf", "pages:3")
	if got := s.RotationVector(); !equalInts(got, []int{0, 0, 0}) {
		t.Errorf("Expected fresh vector, got %v", got)
	}
}

func TestLoadParseErrorLeavesEmpty(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "good.pdf", "pages:2")

	err := s.Load(context.Background(), "bad.pdf", strings.NewReader("garbage"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Expected ErrParse, got %v", err)
	}
	if s.State() != Empty {
		t.Errorf("Expected Empty, got %s", s.State())
	}
	if len(s.RotationVector()) != 0 {
		t.Errorf("Expected empty rotation vector, got %v", s.RotationVector())
	}
	if s.PageCount() != 0 {
		t.Errorf("Expected 0 pages, got %d", s.PageCount())
	}
}

func TestLoadReadErrorLeavesEmpty(t *testing.T) {
	s := newTestSession()
	err := s.Load(context.Background(), "broken.pdf", failingReader{})
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
	if s.State() != Empty {
		t.Errorf("Expected Empty, got %s", s.State())
	}
}

type panickingParser struct{}

func (panickingParser) PageCount(ctx context.Context, raw []byte) (int, error) {
	var pages []int
	return pages[len(raw)], nil
}

func TestLoadParserPanicLeavesEmpty(t *testing.T) {
	s := New(readAllIntake{}, panickingParser{})
	err := s.Load(context.Background(), "crash.pdf", strings.NewReader("%PDF-1.4"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Expected ErrParse, got %v", err)
	}
	if s.State() != Empty {
		t.Errorf("Expected Empty, got %s", s.State())
	}
}

// gatedParser blocks each PageCount call until its gate is released
type gatedParser struct {
	started chan string
	gates   map[string]chan struct{}
}

func (g *gatedParser) PageCount(ctx context.Context, raw []byte) (int, error) {
	g.started <- string(raw)
	<-g.gates[string(raw)]
	return countParser{}.PageCount(ctx, raw)
}

func TestStaleLoadIsDropped(t *testing.T) {
	parser := &gatedParser{
		started: make(chan string, 2),
		gates: map[string]chan struct{}{
			"pages:3": make(chan struct{}),
			"pages:5": make(chan struct{}),
		},
	}
	s := New(readAllIntake{}, parser)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- s.Load(context.Background(), "old.pdf", strings.NewReader("pages:3"))
	}()
	<-parser.started
	if s.State() != Loading {
		t.Errorf("Expected Loading while parse is in flight, got %s", s.State())
	}
	if err := s.Rotate(0); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady during load, got %v", err)
	}

	secondErr := make(chan error, 1)
	go func() {
		secondErr <- s.Load(context.Background(), "new.pdf", strings.NewReader("pages:5"))
	}()
	<-parser.started

	// newer load resolves first, then the stale one
	close(parser.gates["pages:5"])
	if err := <-secondErr; err != nil {
		t.Fatalf("Newer load failed: %v", err)
	}
	close(parser.gates["pages:3"])
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected stale load to be superseded, got %v", err)
	}

	if s.PageCount() != 5 || s.DisplayName() != "new" {
		t.Errorf("Expected the newer document to win, got %d pages named %q", s.PageCount(), s.DisplayName())
	}
}

func TestRemoveDuringLoadSupersedes(t *testing.T) {
	parser := &gatedParser{
		started: make(chan string, 1),
		gates:   map[string]chan struct{}{"pages:2": make(chan struct{})},
	}
	s := New(readAllIntake{}, parser)

	done := make(chan error, 1)
	go func() {
		done <- s.Load(context.Background(), "doc.pdf", strings.NewReader("pages:2"))
	}()
	<-parser.started
	s.Remove()
	close(parser.gates["pages:2"])

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if s.State() != Empty {
		t.Errorf("Expected Empty, got %s", s.State())
	}
}

func TestConcurrentRotate(t *testing.T) {
	s := newTestSession()
	mustLoad(t, s, "doc.pdf", "pages:2")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Rotate(0)
		}()
	}
	wg.Wait()

	// 40 quarter turns is ten full turns
	if got := s.RotationVector()[0]; got != 0 {
		t.Errorf("Expected 0 after 40 rotations, got %d", got)
	}
}

func TestSnapshotAndCurrent(t *testing.T) {
	s := newTestSession()
	snap := s.Snapshot()
	if snap.State != Empty || snap.Rotations == nil || len(snap.Rotations) != 0 {
		t.Errorf("Unexpected empty snapshot: %+v", snap)
	}

	mustLoad(t, s, "scan.v2.pdf", "pages:2")
	s.Rotate(1)

	snap = s.Snapshot()
	if snap.State != Ready || snap.PageCount != 2 || snap.DisplayName != "scan.v2" {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}

	doc, rotations, err := s.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if string(doc.RawBytes) != "pages:2" || !equalInts(rotations, []int{0, 90}) {
		t.Errorf("Unexpected current: %q %v", doc.RawBytes, rotations)
	}

	// the returned vector is a copy
	rotations[0] = 270
	if s.RotationVector()[0] != 0 {
		t.Error("Mutating the returned rotations changed the session")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Empty, "empty"},
		{Loading, "loading"},
		{Ready, "ready"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
		text, _ := tt.state.MarshalText()
		if string(text) != tt.want {
			t.Errorf("Expected marshalled %s, got %s", tt.want, text)
		}
		var back State
		if err := back.UnmarshalText(text); err != nil || back != tt.state {
			t.Errorf("Expected %s to parse back, got %v (%v)", text, back, err)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("exploded")); err == nil {
		t.Error("Expected unknown state name to fail")
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		fileName string
		display  string
	}{
		{"report.pdf", "report"},
		{"scan.v2.PDF", "scan.v2"},
		{"noext", "noext"},
		{".pdf", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.fileName); got != tt.display {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.fileName, got, tt.display)
		}
	}
	if got := OutputName("report"); got != "report(rotated).pdf" {
		t.Errorf("Unexpected output name %q", got)
	}
}
