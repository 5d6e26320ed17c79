package session

import "errors"

// Error taxonomy shared by intake, session and export. Callers match with errors.Is.
var (
	// ErrIO is returned when reading the uploaded file fails.
	ErrIO = errors.New("file read failed")
	// ErrParse is returned when the loaded bytes are not a usable PDF
	// (corrupt, encrypted, or not a PDF despite the extension).
	ErrParse = errors.New("document could not be parsed")
	// ErrInvalidIndex is returned by Rotate for a page index outside [0, PageCount).
	ErrInvalidIndex = errors.New("page index out of range")
	// ErrSerialization is returned when export cannot parse or rebuild the document.
	ErrSerialization = errors.New("document could not be rebuilt")
	// ErrNotReady is returned by operations that need a loaded document.
	ErrNotReady = errors.New("no document loaded")
	// ErrSuperseded is returned by a Load whose result arrived after a newer Load or a Remove.
	ErrSuperseded = errors.New("load superseded")
)
