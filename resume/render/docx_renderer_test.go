package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nguyenthenguyen/docx"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

func sampleResume() model.ResumeDocument {
	doc := model.Empty()
	doc.PersonalInformation = model.PersonalInformation{
		Name:       "Ada Lovelace",
		Profession: "Engineer",
		Email:      "ada@example.com",
		Phone:      "555-555-5555",
		Address:    "London, UK",
	}
	doc.Summary = "Writes the first programs."
	doc.ProfessionalExperience = []model.Experience{{
		Organization:     "Analytical Engines",
		Role:             "Programmer",
		StartDate:        "1842",
		EndDate:          "1843",
		Responsibilities: []string{"Did the thing.", "Did another thing."},
	}}
	doc.Education = []model.Education{{Institution: "Home", Degree: "Tutoring", Field: "Mathematics"}}
	doc.Skills = []string{"Go", "Gin", "PostgreSQL"}
	doc.Certifications = []model.Certification{{Name: "Notes", Issuer: "Royal Society", Year: "1843"}}
	doc.Projects = []model.Project{{Name: "Bernoulli", Description: "Computes numbers", Technologies: "Punch cards"}}
	doc.Awards = []model.Award{{Title: "First Programmer", Year: "1843"}}
	return doc
}

func TestRenderDocxEveryTemplate(t *testing.T) {
	for _, tmpl := range model.Templates {
		tmpl := tmpl
		t.Run(tmpl.String(), func(t *testing.T) {
			docxBytes, err := RenderDocx(sampleResume(), tmpl)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			documentXML, err := readDocumentXML(docxBytes)
			if err != nil {
				t.Fatalf("read document.xml failed: %v", err)
			}
			if err := validateDocumentXMLStructure(documentXML); err != nil {
				t.Fatalf("invalid structure: %v", err)
			}
			for _, want := range []string{
				"Ada Lovelace", "Engineer", "ada@example.com", "Writes the first programs.",
				"Programmer", "Analytical Engines", "Did the thing.", "Did another thing.",
				"Tutoring in Mathematics", "Go", "PostgreSQL", "Notes", "Royal Society",
				"Bernoulli", "Punch cards", "First Programmer",
			} {
				assertContains(t, documentXML, want)
			}
			assertContains(t, documentXML, `<w:numId w:val="1">`)

			reader, err := docx.ReadDocxFromMemory(bytes.NewReader(docxBytes), int64(len(docxBytes)))
			if err != nil {
				t.Fatalf("docx read-back failed: %v", err)
			}
			defer reader.Close()
			if !strings.Contains(reader.Editable().GetContent(), "Ada Lovelace") {
				t.Fatalf("expected name in read-back content")
			}
		})
	}
}

func TestRenderDocxPackageParts(t *testing.T) {
	docxBytes, err := RenderDocx(sampleResume(), model.TemplateClassic)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range reader.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml",
		"word/numbering.xml", "word/_rels/document.xml.rels", "docProps/core.xml", "docProps/app.xml",
	} {
		if !names[want] {
			t.Fatalf("expected part %s, got %v", want, names)
		}
	}
}

func TestRenderDocxClassicHeadingStyle(t *testing.T) {
	docxBytes, err := RenderDocx(sampleResume(), model.TemplateClassic)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML, err := readDocumentXML(docxBytes)
	if err != nil {
		t.Fatalf("read document.xml failed: %v", err)
	}
	assertHeadingStyled(t, documentXML, "PROFESSIONAL SUMMARY", 32, "2C3E50")
	assertHeadingStyled(t, documentXML, "SKILLS", 32, "2C3E50")
	assertContains(t, documentXML, `<w:bottom w:val="single" w:sz="12" w:space="1" w:color="2C3E50">`)
	assertContains(t, documentXML, `<w:pgSz w:w="12240" w:h="15840">`)
	assertContains(t, documentXML, `<w:tab w:val="right" w:pos="10800">`)
}

func TestRenderDocxModernUsesSidebarTable(t *testing.T) {
	docxBytes, err := RenderDocx(sampleResume(), model.TemplateModern)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML, err := readDocumentXML(docxBytes)
	if err != nil {
		t.Fatalf("read document.xml failed: %v", err)
	}
	assertContains(t, documentXML, "<w:tbl>")
	assertContains(t, documentXML, `<w:tcW w:w="1750" w:type="pct">`)
	assertContains(t, documentXML, `w:fill="2C3E50"`)
	assertContains(t, documentXML, ">CONTACT</w:t>")
	assertContains(t, documentXML, ">EXPERIENCE</w:t>")
	assertNotContains(t, documentXML, "PROFESSIONAL EXPERIENCE")

	sidebarEnd := strings.Index(documentXML, "</w:tc>")
	if sidebarEnd == -1 || !strings.Contains(documentXML[:sidebarEnd], "PostgreSQL") {
		t.Fatalf("expected skills inside the sidebar cell")
	}
}

func TestRenderDocxCreativeHeaderBand(t *testing.T) {
	docxBytes, err := RenderDocx(sampleResume(), model.TemplateCreative)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML, err := readDocumentXML(docxBytes)
	if err != nil {
		t.Fatalf("read document.xml failed: %v", err)
	}
	assertContains(t, documentXML, `<w:shd w:val="solid" w:color="667EEA" w:fill="667EEA">`)
	assertContains(t, documentXML, `<w:shd w:val="solid" w:color="764BA2" w:fill="764BA2">`)
	assertContains(t, documentXML, `<w:left w:val="single" w:sz="24" w:space="4" w:color="667EEA">`)
}

func TestRenderDocxMinimalComposition(t *testing.T) {
	docxBytes, err := RenderDocx(sampleResume(), model.TemplateMinimal)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML, err := readDocumentXML(docxBytes)
	if err != nil {
		t.Fatalf("read document.xml failed: %v", err)
	}
	assertContains(t, documentXML, "Go | Gin | PostgreSQL")
	assertContains(t, documentXML, " at Analytical Engines")
	assertContains(t, documentXML, ">Professional Summary</w:t>")
	assertNotContains(t, documentXML, "<w:pBdr>")
}

func TestRenderDocxEscapesText(t *testing.T) {
	doc := sampleResume()
	doc.PersonalInformation.Name = "A & B <x>"
	docxBytes, err := RenderDocx(doc, model.TemplateClassic)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	documentXML, err := readDocumentXML(docxBytes)
	if err != nil {
		t.Fatalf("read document.xml failed: %v", err)
	}
	assertContains(t, documentXML, "A &amp; B &lt;x&gt;")
}

func TestRenderDocxOmitsEmptySections(t *testing.T) {
	for _, tmpl := range model.Templates {
		docxBytes, err := RenderDocx(model.Empty(), tmpl)
		if err != nil {
			t.Fatalf("render %s failed: %v", tmpl, err)
		}
		documentXML, err := readDocumentXML(docxBytes)
		if err != nil {
			t.Fatalf("read document.xml failed: %v", err)
		}
		for _, title := range []string{"SUMMARY", "Summary", "SKILLS", "Skills", "CONTACT"} {
			assertNotContains(t, documentXML, title)
		}
	}
}

func TestRenderDocxExperienceWithoutResponsibilities(t *testing.T) {
	doc := sampleResume()
	doc.ProfessionalExperience[0].Responsibilities = nil
	for _, tmpl := range model.Templates {
		tmpl := tmpl
		t.Run(tmpl.String(), func(t *testing.T) {
			docxBytes, err := RenderDocx(doc, tmpl)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			documentXML, err := readDocumentXML(docxBytes)
			if err != nil {
				t.Fatalf("read document.xml failed: %v", err)
			}
			if err := validateDocumentXMLStructure(documentXML); err != nil {
				t.Fatalf("invalid structure: %v", err)
			}
			assertContains(t, documentXML, "Programmer")
			assertContains(t, documentXML, "Analytical Engines")
			assertContains(t, documentXML, layout.JobMeta(tmpl, doc.ProfessionalExperience[0]))
			assertNotContains(t, documentXML, "<w:numPr>")
			assertNotContains(t, documentXML, "Did the thing.")
		})
	}
}

func TestRenderDocxRejectsUnknownTemplate(t *testing.T) {
	_, err := RenderDocx(sampleResume(), model.Template("fancy"))
	if !errors.Is(err, ErrNoDocxGenerator) {
		t.Fatalf("expected ErrNoDocxGenerator, got %v", err)
	}
	if HasGenerator(model.Template("fancy")) {
		t.Fatalf("expected no generator for unknown template")
	}
}

func TestUnitConversions(t *testing.T) {
	if got := PxToHalfPoints(16); got != 32 {
		t.Fatalf("PxToHalfPoints(16) = %d, want 32", got)
	}
	if got := PxToBorderEighths(4); got != 24 {
		t.Fatalf("PxToBorderEighths(4) = %d, want 24", got)
	}
	if ContentWidth != 10800 {
		t.Fatalf("ContentWidth = %d, want 10800", ContentWidth)
	}
}

func TestValidateDocumentXMLStructureRejectsNestedParagraphs(t *testing.T) {
	xmlText := `<w:document xmlns:w="` + wmlNamespace + `"><w:body><w:p><w:p></w:p></w:p></w:body></w:document>`
	if err := validateDocumentXMLStructure(xmlText); err == nil {
		t.Fatalf("expected nested paragraph error")
	}
	xmlText = `<w:document xmlns:w="` + wmlNamespace + `"><w:body><w:p><w:r><w:t>x</w:t><w:rPr></w:rPr></w:r></w:p></w:body></w:document>`
	if err := validateDocumentXMLStructure(xmlText); err == nil {
		t.Fatalf("expected rPr-after-text error")
	}
}

func readDocumentXML(docxBytes []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return "", err
	}
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == "word/document.xml" {
			rc, err := file.Open()
			if err != nil {
				return "", err
			}
			defer rc.Close()

			content, err := io.ReadAll(rc)
			if err != nil {
				return "", err
			}
			return string(content), nil
		}
	}
	return "", io.EOF
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected to contain %q", needle)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected to not contain %q", needle)
	}
}

func assertHeadingStyled(t *testing.T, xmlText, heading string, size int, color string) {
	t.Helper()
	tag := `<w:t xml:space="preserve">` + heading + "</w:t>"
	idx := strings.Index(xmlText, tag)
	if idx == -1 {
		t.Fatalf("expected heading %q", heading)
	}
	windowStart := idx - 300
	if windowStart < 0 {
		windowStart = 0
	}
	window := xmlText[windowStart:idx]

	if !strings.Contains(window, "<w:b>") {
		t.Fatalf("expected %q heading to be bold", heading)
	}
	if !strings.Contains(window, `w:sz w:val="`+itoa(size)+`"`) {
		t.Fatalf("expected %q heading size %d", heading, size)
	}
	if !strings.Contains(window, `w:color w:val="`+color+`"`) {
		t.Fatalf("expected %q heading color %s", heading, color)
	}
}

func itoa(value int) string {
	if value == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for value > 0 {
		i--
		buf[i] = byte('0' + (value % 10))
		value /= 10
	}
	return string(buf[i:])
}
