package render

import (
	"strings"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

// palette is the typography of one column.
type palette struct {
	Title layout.TextStyle
	Rule  layout.TitleRule
	Body  layout.TextStyle
	Item  layout.TextStyle
	Dates layout.TextStyle
	// Width is the text width of the column in twips; dates tab to it.
	Width int
}

func mainPalette(theme layout.Theme, width int) palette {
	return palette{
		Title: theme.SectionTitle,
		Rule:  theme.Rule,
		Body:  theme.Body,
		Item:  theme.ItemTitle,
		Dates: theme.Dates,
		Width: width,
	}
}

func sidebarPalette(theme layout.Theme, width int) palette {
	item := theme.SidebarBody
	item.Bold = true
	return palette{
		Title: theme.SidebarTitle,
		Rule:  theme.SidebarRule,
		Body:  theme.SidebarBody,
		Item:  item,
		Dates: theme.SidebarBody,
		Width: width,
	}
}

type writer struct {
	theme  layout.Theme
	space  spacing
	pal    palette
	blocks []Block
}

func (w *writer) add(p Paragraph) {
	w.blocks = append(w.blocks, p)
}

// endEntry widens the gap after the last paragraph of an entry.
func (w *writer) endEntry() {
	if len(w.blocks) == 0 {
		return
	}
	if p, ok := w.blocks[len(w.blocks)-1].(Paragraph); ok {
		p.SpacingAfter = w.space.EntryAfter
		w.blocks[len(w.blocks)-1] = p
	}
}

func run(style layout.TextStyle, text string) Run {
	return Run{
		Text:   text,
		Bold:   style.Bold,
		Italic: style.Italic,
		Size:   PxToHalfPoints(style.SizePx),
		Color:  style.Color,
	}
}

func alignment(style layout.TextStyle) Alignment {
	if style.Center {
		return AlignCenter
	}
	return AlignLeft
}

func singleColumn(space spacing) generator {
	return func(doc model.ResumeDocument, theme layout.Theme) []Block {
		w := &writer{theme: theme, space: space, pal: mainPalette(theme, ContentWidth)}
		w.header(doc.PersonalInformation)
		for _, section := range model.SectionOrder {
			w.section(doc, section)
		}
		return w.blocks
	}
}

func (w *writer) header(info model.PersonalInformation) {
	t, s := w.theme, w.space
	w.add(Paragraph{
		Runs:         []Run{run(t.Name, info.Name)},
		Align:        alignment(t.Name),
		SpacingAfter: s.NameAfter,
		Fill:         w.headerFill(0),
		KeepNext:     true,
	})
	if info.Profession != "" {
		w.add(Paragraph{
			Runs:         []Run{run(t.Title, info.Profession)},
			Align:        alignment(t.Title),
			SpacingAfter: s.TitleAfter,
			Fill:         w.headerFill(1),
			KeepNext:     true,
		})
	}
	if contact := strings.Join(layout.ContactParts(t.Template, info), layout.ContactSeparator); contact != "" {
		w.add(Paragraph{
			Runs:         []Run{run(t.Contact, contact)},
			Align:        alignment(t.Contact),
			SpacingAfter: s.ContactAfter,
			Fill:         w.headerFill(1),
		})
	}
}

func (w *writer) headerFill(i int) string {
	fills := w.theme.HeaderFill
	if len(fills) == 0 {
		return ""
	}
	if i >= len(fills) {
		i = len(fills) - 1
	}
	return fills[i]
}

func (w *writer) sectionTitle(text string) Paragraph {
	p := Paragraph{
		Runs:          []Run{run(w.pal.Title, text)},
		SpacingBefore: w.space.SectionBefore,
		SpacingAfter:  w.space.SectionAfter,
		KeepNext:      true,
	}
	rule := w.pal.Rule
	switch rule.Kind {
	case layout.RuleUnderline:
		p.Borders = []Border{{Side: "bottom", Size: PxToBorderEighths(rule.WidthPx), Color: rule.Color, Space: 1}}
	case layout.RuleLeftBar:
		p.Borders = []Border{{Side: "left", Size: PxToBorderEighths(rule.WidthPx), Color: rule.Color, Space: 4}}
		p.IndentLeft = w.space.TitleIndent
	}
	return p
}

func (w *writer) line(style layout.TextStyle, text string) {
	w.add(Paragraph{Runs: []Run{run(style, text)}, SpacingAfter: w.space.LineAfter})
}

func (w *writer) section(doc model.ResumeDocument, section model.Section) {
	if !doc.HasSection(section) {
		return
	}
	t := w.theme.Template
	w.add(w.sectionTitle(layout.SectionTitle(w.theme, section)))

	switch section {
	case model.SectionSummary:
		w.line(w.pal.Body, doc.Summary)
		w.endEntry()
	case model.SectionExperience:
		for _, exp := range doc.ProfessionalExperience {
			w.experience(t, exp)
		}
	case model.SectionEducation:
		for _, edu := range doc.Education {
			if title := layout.EducationTitle(edu); title != "" {
				w.line(w.pal.Item, title)
			}
			for _, l := range layout.EducationLines(t, edu) {
				w.line(w.pal.Body, l)
			}
			w.endEntry()
		}
	case model.SectionSkills:
		w.line(w.pal.Body, layout.JoinSkills(t, doc.VisibleSkills()))
		w.endEntry()
	case model.SectionCertifications:
		for _, cert := range doc.Certifications {
			detail := layout.CertificationDetail(t, cert)
			switch {
			case layout.CertificationInline(t):
				p := Paragraph{Runs: []Run{run(w.pal.Item, cert.Name)}, SpacingAfter: w.space.LineAfter}
				if detail != "" {
					p.Runs = append(p.Runs, run(w.pal.Body, detail))
				}
				w.add(p)
			default:
				w.line(w.pal.Item, cert.Name)
				if detail != "" {
					w.line(w.pal.Body, detail)
				}
			}
			w.endEntry()
		}
	case model.SectionProjects:
		for _, project := range doc.Projects {
			w.line(w.pal.Item, project.Name)
			if project.Description != "" {
				w.line(w.pal.Body, project.Description)
			}
			if tech := layout.ProjectTechnologies(t, project); tech != "" {
				italic := w.pal.Body
				italic.Italic = true
				w.line(italic, tech)
			}
			if project.Link != "" {
				w.line(w.pal.Body, project.Link)
			}
			w.endEntry()
		}
	case model.SectionAwards:
		for _, award := range doc.Awards {
			p := Paragraph{Runs: []Run{run(w.pal.Item, award.Title)}, SpacingAfter: w.space.LineAfter}
			if detail := layout.AwardDetail(award); detail != "" {
				p.Runs = append(p.Runs, run(w.pal.Body, detail))
			}
			w.add(p)
			w.endEntry()
		}
	}
}

func (w *writer) experience(t model.Template, exp model.Experience) {
	headline := layout.JobHeadline(t, exp)
	heading := Paragraph{Runs: []Run{run(w.pal.Item, headline.Lead)}, SpacingAfter: w.space.LineAfter, KeepNext: true}
	if headline.Rest != "" {
		heading.Runs = append(heading.Runs, run(w.pal.Body, headline.Rest))
	}
	meta := layout.JobMeta(t, exp)
	switch {
	case meta == "":
		w.add(heading)
	case t == model.TemplateMinimal:
		w.add(heading)
		w.line(w.pal.Dates, meta)
	default:
		dates := run(w.pal.Dates, meta)
		dates.Tab = true
		heading.Runs = append(heading.Runs, dates)
		heading.Tabs = []TabStop{{Align: "right", Pos: w.pal.Width}}
		w.add(heading)
	}
	for _, item := range exp.Responsibilities {
		w.add(Paragraph{Runs: []Run{run(w.pal.Body, item)}, Bullet: true, SpacingAfter: w.space.LineAfter})
	}
	w.endEntry()
}

// modernDocument lays the sidebar and main column out as a two-cell table.
func modernDocument(doc model.ResumeDocument, theme layout.Theme) []Block {
	s := modernSpacing
	sideWidth := theme.SidebarWidthPct
	sideText := ContentWidth*sideWidth/100 - modernSidebarMargins.Left - modernSidebarMargins.Right
	mainText := ContentWidth*(100-sideWidth)/100 - modernMainMargins.Left - modernMainMargins.Right

	side := &writer{theme: theme, space: s, pal: sidebarPalette(theme, sideText)}
	info := doc.PersonalInformation
	side.add(Paragraph{Runs: []Run{run(theme.Name, info.Name)}, SpacingAfter: s.NameAfter})
	if info.Profession != "" {
		side.add(Paragraph{Runs: []Run{run(theme.Title, info.Profession)}, SpacingAfter: s.TitleAfter})
	}
	if parts := layout.ContactParts(theme.Template, info); len(parts) > 0 {
		side.add(side.sectionTitle(layout.HeadingText(theme.SidebarTitle, layout.ContactTitle)))
		for _, part := range parts {
			side.add(Paragraph{Runs: []Run{run(theme.Contact, part)}, SpacingAfter: s.ContactAfter})
		}
	}

	main := &writer{theme: theme, space: s, pal: mainPalette(theme, mainText)}
	for _, section := range model.SectionOrder {
		if theme.InSidebar(section) {
			side.section(doc, section)
			continue
		}
		main.section(doc, section)
	}

	table := Table{Cells: []Cell{
		{WidthPct: sideWidth, Fill: theme.SidebarFill, Margins: modernSidebarMargins, Blocks: side.blocks},
		{WidthPct: 100 - sideWidth, Margins: modernMainMargins, Blocks: main.blocks},
	}}
	return []Block{table, Paragraph{}}
}
