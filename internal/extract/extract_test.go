package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"resume-builder/resume/model"
	"resume-builder/resume/pdf/pdftest"
	"resume-builder/resume/render"
)

func TestTextReadsRenderedDocx(t *testing.T) {
	doc := model.Empty()
	doc.PersonalInformation.Name = "Ada Lovelace"
	doc.Summary = "First programmer."
	data, err := render.RenderDocx(doc, model.TemplateClassic)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	text, err := Text(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(text, "Ada Lovelace") || !strings.Contains(text, "First programmer.") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = Text(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{name: "declared pdf", mime: "application/pdf; charset=binary", want: MimePDF},
		{name: "sniffed pdf", mime: "", data: pdftest.Document("x"), want: MimePDF},
		{name: "octet stream pdf", mime: "application/octet-stream", data: pdftest.Document("x"), want: MimePDF},
		{name: "docx by extension", mime: "application/zip", fileName: "cv.DOCX", want: MimeDOCX},
		{name: "text", mime: "text/plain", want: "text/plain"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.mime, tt.fileName, tt.data); got != tt.want {
				t.Fatalf("DetectType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, nil, MimePDF, "x.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
