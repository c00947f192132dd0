package layout

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"resume-builder/resume/model"
)

func sampleDocument() model.ResumeDocument {
	doc := model.Empty()
	doc.PersonalInformation = model.PersonalInformation{
		Name:       "Jane Doe",
		Profession: "Software Engineer",
		Email:      "jane@x.com",
		Phone:      "+1 555-123-4567",
		Address:    "12 Main St, Springfield",
		LinkedIn:   "https://linkedin.com/in/jane",
	}
	doc.Summary = "Builds reliable systems."
	doc.ProfessionalExperience = []model.Experience{{
		Organization:     "Acme",
		Role:             "Engineer",
		StartDate:        "2020",
		EndDate:          "Present",
		Location:         "Remote",
		Responsibilities: []string{"Built the API", "Ran the on-call rotation"},
	}}
	doc.Education = []model.Education{{Institution: "State University", Degree: "BSc", Field: "CS", EndDate: "2019", GPA: "3.8"}}
	doc.Projects = []model.Project{{Name: "Resumer", Description: "Resume tool", Technologies: "Go, Chrome", Link: "https://example.com"}}
	doc.Certifications = []model.Certification{{Name: "CKA", Issuer: "CNCF", Year: "2022"}}
	doc.Awards = []model.Award{{Title: "Hackathon Winner", Organization: "Acme", Year: "2021"}}
	doc.Skills = []string{"Go", "SQL", ""}
	return doc
}

func TestRenderEmitsEveryPresentSection(t *testing.T) {
	doc := sampleDocument()
	for _, tmpl := range model.Templates {
		tmpl := tmpl
		t.Run(tmpl.String(), func(t *testing.T) {
			tree, err := Render(doc, tmpl)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			got := tree.Sections()
			want := doc.PresentSections()
			if tmpl == model.TemplateModern {
				sorted := func(in []model.Section) []string {
					out := make([]string, 0, len(in))
					for _, s := range in {
						out = append(out, string(s))
					}
					sort.Strings(out)
					return out
				}
				if !reflect.DeepEqual(sorted(got), sorted(want)) {
					t.Fatalf("sections = %v, want %v", got, want)
				}
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("sections = %v, want %v", got, want)
			}
		})
	}
}

func TestRenderKeepsEveryValue(t *testing.T) {
	doc := sampleDocument()
	values := []string{
		"Jane Doe", "Software Engineer", "jane@x.com", "+1 555-123-4567",
		"Builds reliable systems.", "Engineer", "Acme", "Built the API",
		"Ran the on-call rotation", "BSc in CS", "State University", "GPA: 3.8",
		"Resumer", "Resume tool", "Go, Chrome", "https://example.com",
		"CKA", "CNCF", "Hackathon Winner", "Go", "SQL",
	}
	for _, tmpl := range model.Templates {
		tree, err := Render(doc, tmpl)
		if err != nil {
			t.Fatalf("render %s: %v", tmpl, err)
		}
		text := tree.Root.PlainText()
		for _, v := range values {
			if !strings.Contains(text, v) {
				t.Fatalf("%s: expected %q in rendered text %q", tmpl, v, text)
			}
		}
	}
}

func TestRenderHTMLEscapesUserText(t *testing.T) {
	doc := sampleDocument()
	doc.PersonalInformation.Name = "<script>alert(1)</script> & Co"
	doc.ProfessionalExperience[0].Responsibilities = []string{"Led <b>team</b>"}
	for _, tmpl := range model.Templates {
		tree, err := Render(doc, tmpl)
		if err != nil {
			t.Fatalf("render %s: %v", tmpl, err)
		}
		out, err := RenderHTML(tree)
		if err != nil {
			t.Fatalf("html: %v", err)
		}
		if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
			t.Fatalf("%s: expected markup to be escaped, got %s", tmpl, out)
		}
		if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; Co") {
			t.Fatalf("%s: expected escaped name, got %s", tmpl, out)
		}
	}
}

func TestRenderEmptyDocumentHasNoSections(t *testing.T) {
	for _, tmpl := range model.Templates {
		tree, err := Render(model.Empty(), tmpl)
		if err != nil {
			t.Fatalf("render %s: %v", tmpl, err)
		}
		if len(tree.Sections()) != 0 {
			t.Fatalf("%s: expected no sections, got %v", tmpl, tree.Sections())
		}
		out, err := RenderHTML(tree)
		if err != nil {
			t.Fatalf("html: %v", err)
		}
		if strings.Contains(out, ClassSectionTitle) {
			t.Fatalf("%s: expected no section titles, got %s", tmpl, out)
		}
		if strings.Contains(out, ClassContactTitle) {
			t.Fatalf("%s: expected no contact title, got %s", tmpl, out)
		}
	}
}

func TestRenderExperienceWithoutResponsibilities(t *testing.T) {
	doc := model.Empty()
	doc.ProfessionalExperience = []model.Experience{{Organization: "Acme", Role: "Engineer"}}
	tree, err := Render(doc, model.TemplateClassic)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out, err := RenderHTML(tree)
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(out, "<ul></ul>") {
		t.Fatalf("expected empty list, got %s", out)
	}
	if !strings.Contains(out, "Engineer") || !strings.Contains(out, "Acme") {
		t.Fatalf("expected heading text, got %s", out)
	}
}

func TestRenderModernSidebar(t *testing.T) {
	tree, err := Render(sampleDocument(), model.TemplateModern)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	sidebars := tree.FindClass(ClassSidebar)
	if len(sidebars) != 1 {
		t.Fatalf("expected one sidebar, got %d", len(sidebars))
	}
	sidebar := sidebars[0].PlainText()
	for _, want := range []string{"Jane Doe", "CONTACT", "jane@x.com", "SKILLS", "EDUCATION"} {
		if !strings.Contains(sidebar, want) {
			t.Fatalf("expected %q in sidebar, got %q", want, sidebar)
		}
	}
	main := tree.FindClass(ClassMain)[0].PlainText()
	if !strings.Contains(main, "EXPERIENCE") || strings.Contains(main, "PROFESSIONAL EXPERIENCE") {
		t.Fatalf("expected short experience title in main column, got %q", main)
	}
}

func TestRenderMinimalComposition(t *testing.T) {
	tree, err := Render(sampleDocument(), model.TemplateMinimal)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := tree.Root.PlainText()
	for _, want := range []string{"Engineer", "at Acme", "2020 - Present | Remote", "Technologies: Go, Chrome", "- CNCF (2022)", "Professional Summary"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q, got %q", want, text)
		}
	}
	tags := tree.FindClass(ClassSkillTag)
	if len(tags) != 2 {
		t.Fatalf("expected blank skills to be hidden, got %d tags", len(tags))
	}
}

func TestRenderRejectsUnknownTemplate(t *testing.T) {
	_, err := Render(model.Empty(), model.Template("fancy"))
	if !errors.Is(err, model.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestRenderPageIsLetterSized(t *testing.T) {
	tree, err := Render(sampleDocument(), model.TemplateCreative)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page, err := RenderPage(tree)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "size: letter portrait", "margin: 0.5in", "linear-gradient(135deg, #667EEA 0%, #764BA2 100%)", `class="resume template-creative"`} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestStylesheetModernGrid(t *testing.T) {
	css, err := Stylesheet(model.TemplateModern)
	if err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	if !strings.Contains(css, "grid-template-columns: 35% 65%") {
		t.Fatalf("expected sidebar grid, got %s", css)
	}
	if _, err := Stylesheet(model.Template("nope")); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRenderHTMLRejectsNilTree(t *testing.T) {
	if _, err := RenderHTML(nil); !errors.Is(err, ErrEmptyTree) {
		t.Fatalf("expected ErrEmptyTree, got %v", err)
	}
}
