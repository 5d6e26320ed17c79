// Package session holds the per-document rotation state: the loaded PDF bytes, the page count
// and one cumulative rotation per page.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// State is the lifecycle position of a Session.
type State int

const (
	Empty State = iota
	Loading
	Ready
)

// String returns the lower case state name used in the API
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText lets State serialize as its name in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Empty, Loading, Ready} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// RotationStep is the increment applied by one click.
const RotationStep = 90

// Document is an immutable loaded PDF. It is replaced, never edited.
type Document struct {
	RawBytes    []byte
	PageCount   int
	DisplayName string
}

// Intake reads an uploaded file fully into memory.
type Intake interface {
	Accept(ctx context.Context, r io.Reader) ([]byte, error)
}

// PageCounter is the parse capability needed to bring a session to Ready.
type PageCounter interface {
	PageCount(ctx context.Context, raw []byte) (int, error)
}

// Session is the Empty -> Loading -> Ready state machine for one document.
// All methods are safe for concurrent use.
type Session struct {
	intake Intake
	parser PageCounter

	mu         sync.Mutex
	state      State
	doc        *Document
	rotations  []int
	generation uint64
}

// Snapshot is a point-in-time copy of the session for display.
type Snapshot struct {
	State       State  `json:"state"`
	PageCount   int    `json:"pageCount"`
	Rotations   []int  `json:"rotations"`
	DisplayName string `json:"displayName"`
}

// New creates an Empty session
func New(intake Intake, parser PageCounter) *Session {
	return &Session{intake: intake, parser: parser}
}

// Load reads r, parses it and moves the session to Ready. Any previous document and rotation
// state is discarded as soon as Load starts. On a read or parse failure the session is Empty
// again and the error wraps ErrIO or ErrParse. If another Load or a Remove happened while this
// one was in flight, its result is dropped and ErrSuperseded is returned.
func (s *Session) Load(ctx context.Context, fileName string, r io.Reader) error {
	gen := s.beginLoad()

	raw, err := s.intake.Accept(ctx, r)
	if err != nil {
		if !s.onParseError(gen) {
			return ErrSuperseded
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	pageCount, err := s.countPages(ctx, raw)
	if err != nil {
		if !s.onParseError(gen) {
			return ErrSuperseded
		}
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	doc := &Document{
		RawBytes:    raw,
		PageCount:   pageCount,
		DisplayName: DisplayName(fileName),
	}
	if !s.onParsed(gen, doc) {
		return ErrSuperseded
	}
	return nil
}

// countPages runs the parser; a panicking parser counts as a parse failure so the
// session still leaves Loading
func (s *Session) countPages(ctx context.Context, raw []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parser panicked: %v", r)
		}
	}()
	return s.parser.PageCount(ctx, raw)
}

func (s *Session) beginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = Loading
	s.doc = nil
	s.rotations = nil
	return s.generation
}

// onParsed completes the load started under gen. It reports false if gen is stale.
func (s *Session) onParsed(gen uint64, doc *Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != Loading {
		return false
	}
	s.state = Ready
	s.doc = doc
	s.rotations = make([]int, doc.PageCount)
	return true
}

// onParseError abandons the load started under gen. It reports false if gen is stale.
func (s *Session) onParseError(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.state = Empty
	s.doc = nil
	s.rotations = nil
	return true
}

// Rotate adds one clockwise quarter turn to page pageIndex.
func (s *Session) Rotate(pageIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return ErrNotReady
	}
	if pageIndex < 0 || pageIndex >= len(s.rotations) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, pageIndex, len(s.rotations))
	}
	s.rotations[pageIndex] = normalize(s.rotations[pageIndex] + RotationStep)
	return nil
}

// RotateAll adds one quarter turn to every page. Pages keep their relative offsets.
func (s *Session) RotateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return ErrNotReady
	}
	for i := range s.rotations {
		s.rotations[i] = normalize(s.rotations[i] + RotationStep)
	}
	return nil
}

// Remove drops the document from any state. An in-flight Load will be superseded.
func (s *Session) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = Empty
	s.doc = nil
	s.rotations = nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PageCount is zero unless the session is Ready
func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0
	}
	return s.doc.PageCount
}

// RotationVector returns a copy of the per-page rotations. It is empty unless Ready.
func (s *Session) RotationVector() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.rotations...)
}

// DisplayName is the loaded file name without its extension
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.DisplayName
}

// Current returns the loaded document together with a copy of its rotations,
// read under one lock so the two always belong together.
func (s *Session) Current() (Document, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready || s.doc == nil {
		return Document{}, nil, ErrNotReady
	}
	return *s.doc, append([]int{}, s.rotations...), nil
}

// Snapshot returns a consistent copy of the session for display
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:     s.state,
		Rotations: append([]int{}, s.rotations...),
	}
	if s.doc != nil {
		snap.PageCount = s.doc.PageCount
		snap.DisplayName = s.doc.DisplayName
	}
	return snap
}

func normalize(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
