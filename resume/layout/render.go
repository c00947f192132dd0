package layout

import (
	"fmt"
	"strings"

	"resume-builder/resume/model"
)

// ClassContactTitle marks the contact heading of two-column templates.
const ClassContactTitle = "resume-contact-title"

type renderFunc func(doc model.ResumeDocument, theme Theme) *Node

var renderers = map[model.Template]renderFunc{
	model.TemplateClassic:  renderSingleColumn,
	model.TemplateModern:   renderModern,
	model.TemplateMinimal:  renderSingleColumn,
	model.TemplateCreative: renderSingleColumn,
}

// Render maps a document to the visual tree of a template. Sections follow
// the fixed order and are emitted only when they carry data.
func Render(doc model.ResumeDocument, t model.Template) (*Tree, error) {
	render, ok := renderers[t]
	if !ok {
		return nil, fmt.Errorf("render %q: %w", t, model.ErrInvalidTemplate)
	}
	theme, err := ThemeFor(t)
	if err != nil {
		return nil, err
	}
	root := render(doc.WithDefaults(), theme)
	root.Class = ClassResume + " template-" + t.String()
	return &Tree{Template: t, Root: root}, nil
}

func renderSingleColumn(doc model.ResumeDocument, theme Theme) *Node {
	children := []*Node{header(doc.PersonalInformation, theme)}
	for _, section := range model.SectionOrder {
		children = append(children, sectionBlock(doc, theme, section))
	}
	return block(ClassResume, children...)
}

func header(info model.PersonalInformation, theme Theme) *Node {
	return block(ClassHeader,
		heading(ClassName, info.Name),
		optional(paragraph(ClassTitle, info.Profession)),
		optional(paragraph(ClassContact, strings.Join(ContactParts(theme.Template, info), ContactSeparator))),
	)
}

// sectionBlock returns nil for empty sections.
func sectionBlock(doc model.ResumeDocument, theme Theme, section model.Section) *Node {
	if !doc.HasSection(section) {
		return nil
	}
	t := theme.Template
	var content *Node
	switch section {
	case model.SectionSummary:
		content = paragraph(ClassContent, doc.Summary)
	case model.SectionExperience:
		content = block(ClassContent)
		for _, exp := range doc.ProfessionalExperience {
			content.Children = append(content.Children, experienceEntry(t, exp))
		}
	case model.SectionEducation:
		content = block(ClassContent)
		for _, edu := range doc.Education {
			content.Children = append(content.Children, educationEntry(t, edu))
		}
	case model.SectionSkills:
		content = skillsContent(t, doc.VisibleSkills())
	case model.SectionCertifications:
		content = block(ClassContent)
		for _, cert := range doc.Certifications {
			content.Children = append(content.Children, certificationEntry(t, cert))
		}
	case model.SectionProjects:
		content = block(ClassContent)
		for _, project := range doc.Projects {
			content.Children = append(content.Children, projectEntry(t, project))
		}
	case model.SectionAwards:
		content = block(ClassContent)
		for _, award := range doc.Awards {
			content.Children = append(content.Children, block(ClassEntry,
				strong(ClassItemTitle, award.Title),
				optional(span("", AwardDetail(award))),
			))
		}
	}
	node := block(ClassSection, heading(ClassSectionTitle, SectionTitle(theme, section)), content)
	node.Section = section
	return node
}

func experienceEntry(t model.Template, exp model.Experience) *Node {
	headline := JobHeadline(t, exp)
	title := block(ClassJobTitle, strong("", headline.Lead), optional(span("", headline.Rest)))
	title.Kind = KindText
	return block(ClassEntry,
		block(ClassJobHeader, title, optional(span(ClassJobDuration, JobMeta(t, exp)))),
		bulletList(exp.Responsibilities),
	)
}

func educationEntry(t model.Template, edu model.Education) *Node {
	entry := block(ClassEntry, optional(strong(ClassItemTitle, EducationTitle(edu))))
	for _, line := range EducationLines(t, edu) {
		entry.Children = append(entry.Children, paragraph("", line))
	}
	return entry
}

func skillsContent(t model.Template, skills []string) *Node {
	content := block(ClassContent)
	separator := SkillSeparator(t)
	for i, skill := range skills {
		content.Children = append(content.Children, span(ClassSkillTag, skill))
		if i < len(skills)-1 {
			content.Children = append(content.Children, span("", separator))
		}
	}
	return content
}

func certificationEntry(t model.Template, cert model.Certification) *Node {
	detail := CertificationDetail(t, cert)
	if CertificationInline(t) {
		return block(ClassEntry, strong(ClassItemTitle, cert.Name), optional(span("", detail)))
	}
	return block(ClassEntry, strong(ClassItemTitle, cert.Name), optional(paragraph("", detail)))
}

func projectEntry(t model.Template, project model.Project) *Node {
	var tech *Node
	if line := ProjectTechnologies(t, project); line != "" {
		tech = block("", em(line))
	}
	return block(ClassEntry,
		strong(ClassItemTitle, project.Name),
		optional(paragraph("", project.Description)),
		tech,
		optional(paragraph("", project.Link)),
	)
}
