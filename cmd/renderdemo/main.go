package main

// Render a resume in every template:
//   go run ./cmd/renderdemo -out ./out [-in resume.json] [-chrome /path/to/chrome]

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-builder/internal/extract"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/normalize"
	"resume-builder/resume/pdf"
	"resume-builder/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "output directory")
	inPath := flag.String("in", "", "resume JSON to render (defaults to a built-in sample)")
	chromePath := flag.String("chrome", "", "Chrome binary for PDF output")
	flag.Parse()

	doc := sampleResume()
	if *inPath != "" {
		raw, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input failed: %v\n", err)
			os.Exit(1)
		}
		doc = normalize.NormalizeJSON(raw)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeModel(filepath.Join(*outDir, "resume.json"), doc); err != nil {
		fmt.Fprintf(os.Stderr, "write model failed: %v\n", err)
		os.Exit(1)
	}

	chrome := pdf.NewChromeRasterizer(*chromePath, 60*time.Second)
	exporter := pdf.NewExporter(chrome)
	withPDF := chrome.Available()
	if !withPDF {
		fmt.Println("chrome not found; skipping PDF output")
	}

	ctx := context.Background()
	for _, t := range model.Templates {
		if err := renderTemplate(ctx, *outDir, doc, t, exporter, withPDF); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", t, err)
			os.Exit(1)
		}
		fmt.Printf("OK: %s\n", t)
	}
}

func renderTemplate(ctx context.Context, dir string, doc model.ResumeDocument, t model.Template, exporter *pdf.Exporter, withPDF bool) error {
	tree, err := layout.Render(doc, t)
	if err != nil {
		return err
	}
	page, err := layout.RenderPage(tree)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, t.String()+".html"), []byte(page), 0o644); err != nil {
		return err
	}

	docxBytes, err := render.RenderDocx(doc, t)
	if err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	docxName := model.ExportFileName(doc.PersonalInformation, t, model.FormatDOCX)
	if err := os.WriteFile(filepath.Join(dir, docxName), docxBytes, 0o644); err != nil {
		return err
	}
	if err := checkText(ctx, docxBytes, extract.MimeDOCX, doc.PersonalInformation.Name); err != nil {
		return fmt.Errorf("docx: %w", err)
	}

	if !withPDF {
		return nil
	}
	file, err := exporter.ExportPDF(ctx, doc, t)
	if err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	pdfName := strings.TrimSuffix(docxName, ".docx") + ".pdf"
	if err := os.WriteFile(filepath.Join(dir, pdfName), file.Bytes, 0o644); err != nil {
		return err
	}
	if _, err := pdf.Verify(file.Bytes); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return checkText(ctx, file.Bytes, extract.MimePDF, doc.PersonalInformation.Name)
}

func checkText(ctx context.Context, data []byte, mimeType, want string) error {
	text, err := extract.Text(ctx, data, mimeType, "")
	if err != nil {
		return err
	}
	if want != "" && !strings.Contains(text, want) {
		return fmt.Errorf("expected %q in extracted text", want)
	}
	return nil
}

func writeModel(path string, doc model.ResumeDocument) error {
	payload, err := json.MarshalIndent(doc.WithDefaults(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func sampleResume() model.ResumeDocument {
	doc := model.Empty()
	doc.PersonalInformation = model.PersonalInformation{
		Name:       "Jordan Lee",
		Profession: "Senior Backend Engineer",
		Email:      "jordan.lee@example.com",
		Phone:      "+1-555-0102",
		Address:    "Austin, TX",
		LinkedIn:   "https://www.linkedin.com/in/jordanlee",
		Website:    "https://github.com/jordanlee",
	}
	doc.Summary = "Backend engineer with 8+ years of experience building resilient APIs and data services."
	doc.ProfessionalExperience = []model.Experience{
		{
			Organization: "Acme Logistics",
			Role:         "Senior Backend Engineer",
			Location:     "Austin, TX",
			StartDate:    "2021-04",
			EndDate:      "Present",
			Responsibilities: []string{
				"Designed a routing service that reduced shipment latency by 18%.",
				"Implemented distributed tracing to cut incident triage time by 35%.",
			},
		},
		{
			Organization: "Blue Harbor Systems",
			Role:         "Backend Engineer",
			Location:     "Seattle, WA",
			StartDate:    "2018-01",
			EndDate:      "2021-03",
			Responsibilities: []string{
				"Built event-driven ingestion pipelines for compliance data feeds.",
			},
		},
	}
	doc.Education = []model.Education{{Institution: "University of Texas", Degree: "BSc", Field: "Computer Science", EndDate: "2017"}}
	doc.Skills = []string{"Go", "PostgreSQL", "Redis", "Kubernetes"}
	doc.Certifications = []model.Certification{{Name: "CKA", Issuer: "CNCF", Year: "2022"}}
	doc.Projects = []model.Project{{Name: "Routewise", Description: "Open source route planner", Technologies: "Go, gRPC"}}
	doc.Awards = []model.Award{{Title: "Engineering Excellence", Organization: "Acme Logistics", Year: "2023"}}
	return doc
}
