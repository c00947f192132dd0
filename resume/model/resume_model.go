package model

import (
	"fmt"
	"strings"
)

// ResumeDocument represents the canonical resume payload shared by every
// renderer and export backend.
type ResumeDocument struct {
	PersonalInformation    PersonalInformation `json:"personalInformation"`
	Summary                string              `json:"summary"`
	ProfessionalExperience []Experience        `json:"professionalExperience"`
	Education              []Education         `json:"education"`
	Projects               []Project           `json:"projects"`
	Certifications         []Certification     `json:"certifications"`
	Awards                 []Award             `json:"awards"`
	Skills                 []string            `json:"skills"`
}

// PersonalInformation captures identity and contact details.
type PersonalInformation struct {
	Name       string `json:"name"`
	Profession string `json:"profession,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	LinkedIn   string `json:"linkedin"`
	Website    string `json:"website"`
	Twitter    string `json:"twitter"`
}

// Experience is a single professional experience entry.
type Experience struct {
	Organization     string   `json:"organization"`
	Role             string   `json:"role"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Location         string   `json:"location"`
	Responsibilities []string `json:"responsibilities"`
}

// Education is a single education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
}

// Project is a single project entry.
type Project struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link"`
}

// Certification is a single certification entry.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

// Award is a single award entry.
type Award struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Year         string `json:"year"`
}

// Empty returns a document with every sequence initialized.
func Empty() ResumeDocument {
	return ResumeDocument{
		ProfessionalExperience: []Experience{},
		Education:              []Education{},
		Projects:               []Project{},
		Certifications:         []Certification{},
		Awards:                 []Award{},
		Skills:                 []string{},
	}
}

// WithDefaults replaces nil sequences with empty ones so callers can iterate
// and serialize without nil checks.
func (d ResumeDocument) WithDefaults() ResumeDocument {
	if d.ProfessionalExperience == nil {
		d.ProfessionalExperience = []Experience{}
	}
	for i := range d.ProfessionalExperience {
		if d.ProfessionalExperience[i].Responsibilities == nil {
			d.ProfessionalExperience[i].Responsibilities = []string{}
		}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Awards == nil {
		d.Awards = []Award{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	return d
}

// Clone returns a deep copy so mutations never alias the receiver's slices.
func (d ResumeDocument) Clone() ResumeDocument {
	out := d
	out.ProfessionalExperience = make([]Experience, len(d.ProfessionalExperience))
	for i, exp := range d.ProfessionalExperience {
		exp.Responsibilities = append([]string{}, exp.Responsibilities...)
		out.ProfessionalExperience[i] = exp
	}
	out.Education = append([]Education{}, d.Education...)
	out.Projects = append([]Project{}, d.Projects...)
	out.Certifications = append([]Certification{}, d.Certifications...)
	out.Awards = append([]Award{}, d.Awards...)
	out.Skills = append([]string{}, d.Skills...)
	return out
}

// HasSection reports whether the section carries renderable data.
func (d ResumeDocument) HasSection(section Section) bool {
	switch section {
	case SectionSummary:
		return strings.TrimSpace(d.Summary) != ""
	case SectionExperience:
		return len(d.ProfessionalExperience) > 0
	case SectionEducation:
		return len(d.Education) > 0
	case SectionSkills:
		return len(d.VisibleSkills()) > 0
	case SectionCertifications:
		return len(d.Certifications) > 0
	case SectionProjects:
		return len(d.Projects) > 0
	case SectionAwards:
		return len(d.Awards) > 0
	default:
		return false
	}
}

// PresentSections returns the non-empty sections in display order.
func (d ResumeDocument) PresentSections() []Section {
	out := make([]Section, 0, len(SectionOrder))
	for _, section := range SectionOrder {
		if d.HasSection(section) {
			out = append(out, section)
		}
	}
	return out
}

// VisibleSkills drops blank skill entries while keeping order and duplicates.
func (d ResumeDocument) VisibleSkills() []string {
	out := make([]string, 0, len(d.Skills))
	for _, skill := range d.Skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Template selects which renderer and DOCX generator to invoke.
type Template string

const (
	TemplateClassic  Template = "classic"
	TemplateModern   Template = "modern"
	TemplateMinimal  Template = "minimal"
	TemplateCreative Template = "creative"
)

// Templates lists every supported template in presentation order.
var Templates = []Template{TemplateClassic, TemplateModern, TemplateMinimal, TemplateCreative}

// ParseTemplate maps a case-insensitive name to a Template.
func ParseTemplate(raw string) (Template, error) {
	candidate := Template(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range Templates {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTemplate, raw)
}

func (t Template) String() string { return string(t) }

// Section identifies a top-level resume section.
type Section string

const (
	SectionSummary        Section = "summary"
	SectionExperience     Section = "professionalExperience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionProjects       Section = "projects"
	SectionAwards         Section = "awards"
)

// SectionOrder is the fixed display order shared by all templates.
var SectionOrder = []Section{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionProjects,
	SectionAwards,
}

var sectionAliases = map[string]Section{
	"summary":                SectionSummary,
	"professionalexperience": SectionExperience,
	"experience":             SectionExperience,
	"education":              SectionEducation,
	"skills":                 SectionSkills,
	"certifications":         SectionCertifications,
	"projects":               SectionProjects,
	"awards":                 SectionAwards,
}

// ParseSection maps a section name (canonical key or short alias) to a Section.
func ParseSection(raw string) (Section, error) {
	if section, ok := sectionAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return section, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSection, raw)
}
