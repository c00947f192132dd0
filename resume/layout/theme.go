package layout

import "resume-builder/resume/model"

// TextStyle is the typography of one element. Sizes are CSS pixels and
// colors are hex without '#'; the DOCX backend converts both.
type TextStyle struct {
	SizePx    int
	Color     string
	Bold      bool
	Italic    bool
	Light     bool
	Uppercase bool
	Center    bool
}

// RuleKind is the decoration drawn next to a section title.
type RuleKind int

const (
	RuleNone RuleKind = iota
	RuleUnderline
	RuleLeftBar
)

// TitleRule decorates section titles.
type TitleRule struct {
	Kind    RuleKind
	Color   string
	WidthPx int
}

// Theme holds the template-specific visual constants shared by the preview
// stylesheet and the DOCX generators.
type Theme struct {
	Template     model.Template
	Font         string
	Name         TextStyle
	Title        TextStyle
	Contact      TextStyle
	SectionTitle TextStyle
	Rule         TitleRule
	Body         TextStyle
	ItemTitle    TextStyle
	Dates        TextStyle

	// HeaderFill is the header band; two colors form a gradient in CSS and
	// the DOCX backend shades the name with the first and the rest with
	// the second.
	HeaderFill []string

	// Sidebar fields apply to two-column templates only.
	SidebarWidthPct int
	SidebarFill     string
	SidebarTitle    TextStyle
	SidebarRule     TitleRule
	SidebarBody     TextStyle
	SidebarSections []model.Section
}

const defaultFont = "Segoe UI"

var themes = map[model.Template]Theme{
	model.TemplateClassic: {
		Template:     model.TemplateClassic,
		Font:         defaultFont,
		Name:         TextStyle{SizePx: 32, Color: "2C3E50", Bold: true, Center: true},
		Title:        TextStyle{SizePx: 18, Color: "7F8C8D", Center: true},
		Contact:      TextStyle{SizePx: 12, Color: "555555", Center: true},
		SectionTitle: TextStyle{SizePx: 16, Color: "2C3E50", Bold: true, Uppercase: true},
		Rule:         TitleRule{Kind: RuleUnderline, Color: "2C3E50", WidthPx: 2},
		Body:         TextStyle{SizePx: 12, Color: "333333"},
		ItemTitle:    TextStyle{SizePx: 12, Color: "333333", Bold: true},
		Dates:        TextStyle{SizePx: 11, Color: "666666"},
	},
	model.TemplateModern: {
		Template:        model.TemplateModern,
		Font:            defaultFont,
		Name:            TextStyle{SizePx: 28, Color: "FFFFFF", Bold: true},
		Title:           TextStyle{SizePx: 14, Color: "ECF0F1"},
		Contact:         TextStyle{SizePx: 11, Color: "FFFFFF"},
		SectionTitle:    TextStyle{SizePx: 14, Color: "2C3E50", Bold: true, Uppercase: true},
		Rule:            TitleRule{Kind: RuleUnderline, Color: "3498DB", WidthPx: 2},
		Body:            TextStyle{SizePx: 12, Color: "333333"},
		ItemTitle:       TextStyle{SizePx: 12, Color: "2C3E50", Bold: true},
		Dates:           TextStyle{SizePx: 11, Color: "666666"},
		SidebarWidthPct: 35,
		SidebarFill:     "2C3E50",
		SidebarTitle:    TextStyle{SizePx: 14, Color: "3498DB", Bold: true, Uppercase: true},
		SidebarRule:     TitleRule{Kind: RuleUnderline, Color: "3498DB", WidthPx: 2},
		SidebarBody:     TextStyle{SizePx: 11, Color: "FFFFFF"},
		SidebarSections: []model.Section{model.SectionSkills, model.SectionEducation},
	},
	model.TemplateMinimal: {
		Template:     model.TemplateMinimal,
		Font:         defaultFont,
		Name:         TextStyle{SizePx: 36, Color: "333333", Light: true},
		Title:        TextStyle{SizePx: 16, Color: "666666", Light: true},
		Contact:      TextStyle{SizePx: 12, Color: "666666"},
		SectionTitle: TextStyle{SizePx: 14, Color: "333333", Bold: true},
		Rule:         TitleRule{Kind: RuleNone},
		Body:         TextStyle{SizePx: 12, Color: "333333"},
		ItemTitle:    TextStyle{SizePx: 12, Color: "333333", Bold: true},
		Dates:        TextStyle{SizePx: 11, Color: "666666"},
	},
	model.TemplateCreative: {
		Template:     model.TemplateCreative,
		Font:         defaultFont,
		Name:         TextStyle{SizePx: 32, Color: "FFFFFF", Bold: true, Center: true},
		Title:        TextStyle{SizePx: 18, Color: "FFFFFF", Center: true},
		Contact:      TextStyle{SizePx: 12, Color: "FFFFFF", Center: true},
		SectionTitle: TextStyle{SizePx: 16, Color: "667EEA", Bold: true, Uppercase: true},
		Rule:         TitleRule{Kind: RuleLeftBar, Color: "667EEA", WidthPx: 4},
		Body:         TextStyle{SizePx: 12, Color: "333333"},
		ItemTitle:    TextStyle{SizePx: 12, Color: "667EEA", Bold: true},
		Dates:        TextStyle{SizePx: 11, Color: "666666"},
		HeaderFill:   []string{"667EEA", "764BA2"},
	},
}

// ThemeFor returns the visual constants of a template.
func ThemeFor(t model.Template) (Theme, error) {
	theme, ok := themes[t]
	if !ok {
		return Theme{}, model.ErrInvalidTemplate
	}
	return theme, nil
}

// InSidebar reports whether a section renders in the sidebar column.
func (t Theme) InSidebar(section model.Section) bool {
	for _, s := range t.SidebarSections {
		if s == section {
			return true
		}
	}
	return false
}

// TwoColumn reports whether the template renders a sidebar.
func (t Theme) TwoColumn() bool {
	return t.SidebarWidthPct > 0
}
