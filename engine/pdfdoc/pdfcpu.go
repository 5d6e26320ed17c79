package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// keep pdfcpu from creating a config dir under the user's home
	api.DisableConfigDir()
}

// PDFCPU implements Parser on top of pdfcpu
type PDFCPU struct{}

// NewPDFCPU creates a pdfcpu backed parser
func NewPDFCPU() *PDFCPU {
	return &PDFCPU{}
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Parse reads, validates and optimizes raw into a pdfcpu context. pdfcpu panics on some
// truncated files; those come back as errors.
func (p *PDFCPU) Parse(ctx context.Context, raw []byte) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("unable to read PDF document: %v", r)
		}
	}()

	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF document: %w", err)
	}
	return &cpuDocument{ctx: pdfContext}, nil
}

// PageCount parses raw and returns its number of pages
func (p *PDFCPU) PageCount(ctx context.Context, raw []byte) (int, error) {
	doc, err := p.Parse(ctx, raw)
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

type cpuDocument struct {
	ctx *model.Context
}

func (d *cpuDocument) PageCount() int {
	return d.ctx.PageCount
}

func (d *cpuDocument) Page(i int) (Page, error) {
	if i < 0 || i >= d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", i, d.ctx.PageCount)
	}
	// pdfcpu numbers pages from 1
	return &cpuPage{doc: d, pageNr: i + 1}, nil
}

func (d *cpuDocument) Serialize(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unable to write PDF document: %v", r)
		}
	}()
	if err := api.WriteContext(d.ctx, w); err != nil {
		return fmt.Errorf("unable to write PDF document: %w", err)
	}
	return nil
}

type cpuPage struct {
	doc    *cpuDocument
	pageNr int
}

func (p *cpuPage) Rotation() (deg int, err error) {
	defer p.recoverInto(&err)
	_, _, inherited, err := p.doc.ctx.PageDict(p.pageNr, false)
	if err != nil {
		return 0, fmt.Errorf("unable to resolve page %d: %w", p.pageNr, err)
	}
	if inherited == nil {
		return 0, nil
	}
	return normalize(inherited.Rotate), nil
}

func (p *cpuPage) SetRotation(deg int) (err error) {
	defer p.recoverInto(&err)
	if !ValidRotation(deg) {
		return fmt.Errorf("rotation %d is not a multiple of 90 in [0, 360)", deg)
	}
	pageDict, _, _, err := p.doc.ctx.PageDict(p.pageNr, false)
	if err != nil {
		return fmt.Errorf("unable to resolve page %d: %w", p.pageNr, err)
	}
	if pageDict == nil {
		return fmt.Errorf("page %d has no dictionary", p.pageNr)
	}
	pageDict.Update("Rotate", types.Integer(deg))
	return nil
}

// recoverInto turns a pdfcpu panic on a broken page tree into an error
func (p *cpuPage) recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("unable to resolve page %d: %v", p.pageNr, r)
	}
}

func normalize(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
