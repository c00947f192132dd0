package layout

import (
	"strings"

	"resume-builder/resume/model"
)

// ContactTitle heads the contact block of two-column templates.
const ContactTitle = "Contact"

var sectionTitles = map[model.Section]string{
	model.SectionSummary:        "Professional Summary",
	model.SectionExperience:     "Professional Experience",
	model.SectionEducation:      "Education",
	model.SectionSkills:         "Skills",
	model.SectionCertifications: "Certifications",
	model.SectionProjects:       "Projects",
	model.SectionAwards:         "Awards",
}

// SectionTitle returns the displayed title of a section in a template.
func SectionTitle(theme Theme, section model.Section) string {
	title := sectionTitles[section]
	if theme.TwoColumn() && section == model.SectionExperience {
		title = "Experience"
	}
	return styleCase(theme.SectionTitle, title)
}

// HeadingText applies a style's letter case to a fixed heading.
func HeadingText(style TextStyle, text string) string {
	return styleCase(style, text)
}

func styleCase(style TextStyle, text string) string {
	if style.Uppercase {
		return strings.ToUpper(text)
	}
	return text
}

// ContactParts lists the contact values shown in a template's header, in
// display order. Empty values are skipped.
func ContactParts(t model.Template, info model.PersonalInformation) []string {
	var fields []string
	switch t {
	case model.TemplateModern:
		fields = []string{info.Email, info.Phone, info.LinkedIn, info.Website, info.Twitter, info.Address}
	case model.TemplateMinimal, model.TemplateCreative:
		fields = []string{info.Address, info.Phone, info.Email, info.LinkedIn, info.Website}
	default:
		fields = []string{info.Address, info.Phone, info.Email}
	}
	return nonEmpty(fields...)
}

// ContactSeparator joins contact parts on one line; two-column templates
// put each part on its own line instead.
const ContactSeparator = " | "

// SkillSeparator joins skills flattened into one line.
func SkillSeparator(t model.Template) string {
	if t == model.TemplateMinimal {
		return " | "
	}
	return " • "
}

// JoinSkills flattens visible skills with the template separator.
func JoinSkills(t model.Template, skills []string) string {
	return strings.Join(skills, SkillSeparator(t))
}

// Headline splits an item heading into an emphasized lead and the rest.
type Headline struct {
	Lead string
	Rest string
}

// Text returns the full headline.
func (h Headline) Text() string { return h.Lead + h.Rest }

// JobHeadline composes the heading line of an experience entry.
func JobHeadline(t model.Template, exp model.Experience) Headline {
	if t == model.TemplateMinimal {
		h := Headline{Lead: exp.Role}
		if exp.Organization != "" {
			h.Rest = " at " + exp.Organization
		}
		return h
	}
	h := Headline{Lead: exp.Role}
	if exp.Organization != "" {
		h.Rest = " | " + exp.Organization
	}
	if exp.Location != "" {
		h.Rest += ", " + exp.Location
	}
	return h
}

// JobMeta composes the dates line of an experience entry.
func JobMeta(t model.Template, exp model.Experience) string {
	dates := DateRange(exp.StartDate, exp.EndDate)
	if t == model.TemplateMinimal && exp.Location != "" {
		return strings.Join(nonEmpty(dates, exp.Location), " | ")
	}
	return dates
}

// DateRange renders "start - end", or whichever side is present.
func DateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

// EducationTitle is the emphasized line of an education entry.
func EducationTitle(edu model.Education) string {
	if edu.Field != "" && edu.Degree != "" {
		return edu.Degree + " in " + edu.Field
	}
	if edu.Degree != "" {
		return edu.Degree
	}
	return edu.Field
}

// EducationLines are the plain lines below the education title.
func EducationLines(t model.Template, edu model.Education) []string {
	dates := DateRange(edu.StartDate, edu.EndDate)
	var lines []string
	if t == model.TemplateMinimal {
		lines = nonEmpty(strings.Join(nonEmpty(edu.Institution, dates), " | "))
	} else {
		lines = nonEmpty(edu.Institution, dates)
	}
	if edu.GPA != "" {
		lines = append(lines, "GPA: "+edu.GPA)
	}
	return lines
}

// CertificationDetail is the text following the certification name.
func CertificationDetail(t model.Template, cert model.Certification) string {
	if t == model.TemplateMinimal {
		detail := cert.Issuer
		if cert.Year != "" {
			detail = strings.TrimSpace(detail + " (" + cert.Year + ")")
		}
		if detail == "" {
			return ""
		}
		return " - " + detail
	}
	return strings.Join(nonEmpty(cert.Issuer, cert.Year), " - ")
}

// CertificationInline reports whether the detail shares the name's line.
func CertificationInline(t model.Template) bool {
	return t == model.TemplateMinimal
}

// ProjectTechnologies renders the technologies line of a project.
func ProjectTechnologies(t model.Template, p model.Project) string {
	if p.Technologies == "" {
		return ""
	}
	if t == model.TemplateMinimal {
		return "Technologies: " + p.Technologies
	}
	return p.Technologies
}

// AwardDetail is the text following the award title.
func AwardDetail(award model.Award) string {
	detail := ""
	if award.Organization != "" {
		detail = " - " + award.Organization
	}
	if award.Year != "" {
		detail += " (" + award.Year + ")"
	}
	return detail
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
