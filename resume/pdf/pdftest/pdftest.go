// Package pdftest provides a rasterizer double that returns small but
// well-formed PDF documents.
package pdftest

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"resume-builder/resume/pdf"
)

// Rasterizer records the pages it is asked to print.
type Rasterizer struct {
	mu    sync.Mutex
	Pages []string
	Setup []pdf.PageSetup
	// Err, when set, is returned instead of a document.
	Err error
	// Block, when set, holds each call until it is closed or ctx ends.
	Block chan struct{}
}

// Rasterize returns a one-page PDF regardless of the input.
func (r *Rasterizer) Rasterize(ctx context.Context, html string, setup pdf.PageSetup) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.Pages = append(r.Pages, html)
	r.Setup = append(r.Setup, setup)
	block := r.Block
	r.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return Document("Resume"), nil
}

// Calls returns how many pages were printed.
func (r *Rasterizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Pages)
}

// Document builds a one-page letter PDF showing text, with a valid xref.
func Document(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
