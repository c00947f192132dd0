package render

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

// ContentType is the MIME type of produced packages.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrNoDocxGenerator is returned for templates without a DOCX generator.
var ErrNoDocxGenerator = errors.New("no docx generator for template")

type generator func(doc model.ResumeDocument, theme layout.Theme) []Block

var generators = map[model.Template]generator{
	model.TemplateClassic:  singleColumn(classicSpacing),
	model.TemplateModern:   modernDocument,
	model.TemplateMinimal:  singleColumn(minimalSpacing),
	model.TemplateCreative: singleColumn(creativeSpacing),
}

// HasGenerator reports whether a template can be exported as DOCX.
func HasGenerator(t model.Template) bool {
	_, ok := generators[t]
	return ok
}

// RenderDocx builds the DOCX package of a document in a template. The
// document mirrors the preview layout for the same template.
func RenderDocx(doc model.ResumeDocument, t model.Template) ([]byte, error) {
	built, err := BuildDocument(doc, t)
	if err != nil {
		return nil, err
	}
	return packageDocument(built)
}

// BuildDocument returns the DOCX body model of a document without
// packaging it.
func BuildDocument(doc model.ResumeDocument, t model.Template) (Document, error) {
	gen, ok := generators[t]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrNoDocxGenerator, t)
	}
	theme, err := layout.ThemeFor(t)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %q", ErrNoDocxGenerator, t)
	}
	doc = doc.WithDefaults()
	title := "Resume"
	if name := strings.TrimSpace(doc.PersonalInformation.Name); name != "" {
		title = name + " - Resume"
	}
	return Document{
		Title:    title,
		Author:   doc.PersonalInformation.Name,
		Font:     theme.Font,
		BodySize: PxToHalfPoints(theme.Body.SizePx),
		Created:  time.Now(),
		Blocks:   gen(doc, theme),
	}, nil
}

func validateDocumentXMLStructure(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w\n%s", err, firstLines(xmlText, 5))
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>\n%s", firstLines(xmlText, 5))
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run\n%s", firstLines(xmlText, 5))
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}

func firstLines(text string, count int) string {
	if count <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > count {
		lines = lines[:count]
	}
	return strings.Join(lines, "\n")
}
