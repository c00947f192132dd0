package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	pdfreader "github.com/ledongthuc/pdf"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

const ContentType = "application/pdf"

var (
	// ErrRasterizerUnavailable is returned when no HTML-to-PDF engine can run.
	ErrRasterizerUnavailable = errors.New("pdf rasterizer unavailable")
	// ErrInvalidPDF is returned when the rasterizer output does not parse.
	ErrInvalidPDF = errors.New("rasterizer produced an invalid pdf")
)

// PageSetup describes the printed page. Lengths are inches.
type PageSetup struct {
	WidthIn         float64
	HeightIn        float64
	MarginIn        float64
	Landscape       bool
	PrintBackground bool
}

// Letter is US letter portrait with 0.5in margins.
var Letter = PageSetup{
	WidthIn:         8.5,
	HeightIn:        11,
	MarginIn:        0.5,
	PrintBackground: true,
}

// Rasterizer converts a standalone HTML page to PDF bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, setup PageSetup) ([]byte, error)
}

// File is a finished export ready to be sent to the client.
type File struct {
	Name        string
	ContentType string
	Bytes       []byte
}

// Exporter renders documents through the preview layout and rasterizes them.
type Exporter struct {
	rasterizer Rasterizer
	setup      PageSetup
}

// NewExporter returns an exporter printing on letter pages.
func NewExporter(r Rasterizer) *Exporter {
	return &Exporter{rasterizer: r, setup: Letter}
}

// ExportPDF renders doc in template t and returns the PDF file. The page
// is the same tree the preview shows.
func (e *Exporter) ExportPDF(ctx context.Context, doc model.ResumeDocument, t model.Template) (File, error) {
	if e == nil || e.rasterizer == nil {
		return File{}, ErrRasterizerUnavailable
	}
	tree, err := layout.Render(doc, t)
	if err != nil {
		return File{}, err
	}
	page, err := layout.RenderPage(tree)
	if err != nil {
		return File{}, err
	}
	data, err := e.rasterizer.Rasterize(ctx, page, e.setup)
	if err != nil {
		return File{}, err
	}
	if _, err := Verify(data); err != nil {
		return File{}, err
	}
	return File{
		Name:        model.ExportFileName(doc.PersonalInformation, t, model.FormatPDF),
		ContentType: ContentType,
		Bytes:       data,
	}, nil
}

// Verify parses data and returns its page count.
func Verify(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty output", ErrInvalidPDF)
	}
	reader, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	pages := reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	return pages, nil
}
