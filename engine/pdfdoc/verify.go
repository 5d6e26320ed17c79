package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// maxTreeDepth bounds the Parent walk so a cyclic page tree cannot hang the reader
const maxTreeDepth = 64

// ReaderVerifier re-opens serialized output with ledongthuc/pdf, a reader independent of the
// writer, so a rebuilt file is only accepted if a second implementation can read it.
type ReaderVerifier struct{}

// Verify checks that raw opens and has pageCount pages
func (ReaderVerifier) Verify(raw []byte, pageCount int) error {
	got, err := CountPages(raw)
	if err != nil {
		return err
	}
	if got != pageCount {
		return fmt.Errorf("rebuilt document has %d pages, expected %d", got, pageCount)
	}
	return nil
}

// CountPages returns the number of pages in raw
func CountPages(raw []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unable to read PDF document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("unable to read PDF document: %w", err)
	}
	return reader.NumPage(), nil
}

// EffectiveRotations returns the /Rotate every page is displayed with, resolving values
// inherited from the page tree. Missing entries count as 0.
func EffectiveRotations(raw []byte) (rotations []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unable to read PDF document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF document: %w", err)
	}

	numPages := reader.NumPage()
	rotations = make([]int, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			return nil, fmt.Errorf("unable to find page %d", pageNum)
		}
		rotations[pageNum-1] = inheritedRotate(page.V)
	}
	return rotations, nil
}

func inheritedRotate(node pdf.Value) int {
	for depth := 0; depth < maxTreeDepth && !node.IsNull(); depth++ {
		if rotate := node.Key("Rotate"); rotate.Kind() == pdf.Integer {
			return normalize(int(rotate.Int64()))
		}
		node = node.Key("Parent")
	}
	return 0
}
