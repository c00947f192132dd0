package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/resume/model"
	"resume-builder/resume/normalize"
)

// Every mutation below returns a new document and leaves its input
// untouched.

// UpdatePersonalField sets one personal information field.
func UpdatePersonalField(doc model.ResumeDocument, field, value string) (model.ResumeDocument, error) {
	out := doc.Clone()
	ptr, err := lookupField(personalFields(&out.PersonalInformation), field)
	if err != nil {
		return doc, err
	}
	*ptr = value
	return out, nil
}

// UpdateSummary replaces the summary text.
func UpdateSummary(doc model.ResumeDocument, text string) model.ResumeDocument {
	out := doc.Clone()
	out.Summary = text
	return out
}

// UpdateSectionArray replaces a whole list section. Items are coerced the
// same way inbound payloads are.
func UpdateSectionArray(doc model.ResumeDocument, section model.Section, items []any) (model.ResumeDocument, error) {
	coerced := make([]any, len(items))
	for i, item := range items {
		coerced[i] = plain(item)
	}
	items = coerced
	out := doc.Clone()
	switch section {
	case model.SectionExperience:
		out.ProfessionalExperience = make([]model.Experience, 0, len(items))
		for _, item := range items {
			out.ProfessionalExperience = append(out.ProfessionalExperience, normalize.Experience(item))
		}
	case model.SectionEducation:
		out.Education = make([]model.Education, 0, len(items))
		for _, item := range items {
			out.Education = append(out.Education, normalize.Education(item))
		}
	case model.SectionProjects:
		out.Projects = make([]model.Project, 0, len(items))
		for _, item := range items {
			out.Projects = append(out.Projects, normalize.Project(item))
		}
	case model.SectionCertifications:
		out.Certifications = make([]model.Certification, 0, len(items))
		for _, item := range items {
			out.Certifications = append(out.Certifications, normalize.Certification(item))
		}
	case model.SectionAwards:
		out.Awards = make([]model.Award, 0, len(items))
		for _, item := range items {
			out.Awards = append(out.Awards, normalize.Award(item))
		}
	case model.SectionSkills:
		out.Skills = normalize.ParseSkills(items)
	default:
		return doc, fmt.Errorf("%w: %s", ErrNotAList, section)
	}
	return out, nil
}

// AddItem appends an item when its key fields are present: organization
// and role for experience, institution and degree for education, a name
// for projects and certifications, a title for awards and a non-blank
// skill.
func AddItem(doc model.ResumeDocument, section model.Section, item any) (model.ResumeDocument, error) {
	item = plain(item)
	out := doc.Clone()
	switch section {
	case model.SectionExperience:
		exp := normalize.Experience(item)
		if blank(exp.Organization) || blank(exp.Role) {
			return doc, fmt.Errorf("%w: organization and role", ErrIncompleteItem)
		}
		if len(exp.Responsibilities) == 0 {
			exp.Responsibilities = []string{""}
		}
		out.ProfessionalExperience = append(out.ProfessionalExperience, exp)
	case model.SectionEducation:
		edu := normalize.Education(item)
		if blank(edu.Institution) || blank(edu.Degree) {
			return doc, fmt.Errorf("%w: institution and degree", ErrIncompleteItem)
		}
		out.Education = append(out.Education, edu)
	case model.SectionProjects:
		project := normalize.Project(item)
		if blank(project.Name) {
			return doc, fmt.Errorf("%w: name", ErrIncompleteItem)
		}
		out.Projects = append(out.Projects, project)
	case model.SectionCertifications:
		cert := normalize.Certification(item)
		if blank(cert.Name) {
			return doc, fmt.Errorf("%w: name", ErrIncompleteItem)
		}
		out.Certifications = append(out.Certifications, cert)
	case model.SectionAwards:
		award := normalize.Award(item)
		if blank(award.Title) {
			return doc, fmt.Errorf("%w: title", ErrIncompleteItem)
		}
		out.Awards = append(out.Awards, award)
	case model.SectionSkills:
		skill := skillValue(item)
		if blank(skill) {
			return doc, fmt.Errorf("%w: skill", ErrIncompleteItem)
		}
		out.Skills = append(out.Skills, strings.TrimSpace(skill))
	default:
		return doc, fmt.Errorf("%w: %s", ErrNotAList, section)
	}
	return out, nil
}

// UpdateItemField sets one field of the item at index.
func UpdateItemField(doc model.ResumeDocument, section model.Section, index int, field, value string) (model.ResumeDocument, error) {
	out := doc.Clone()
	fields, err := itemFields(&out, section, index)
	if err != nil {
		return doc, err
	}
	ptr, err := lookupField(fields, field)
	if err != nil {
		return doc, err
	}
	*ptr = value
	return out, nil
}

// RemoveItem drops the item at index, keeping the order of the rest.
func RemoveItem(doc model.ResumeDocument, section model.Section, index int) (model.ResumeDocument, error) {
	n, err := sectionLen(doc, section)
	if err != nil {
		return doc, err
	}
	if index < 0 || index >= n {
		return doc, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, section, index)
	}
	out := doc.Clone()
	switch section {
	case model.SectionExperience:
		out.ProfessionalExperience = append(out.ProfessionalExperience[:index], out.ProfessionalExperience[index+1:]...)
	case model.SectionEducation:
		out.Education = append(out.Education[:index], out.Education[index+1:]...)
	case model.SectionProjects:
		out.Projects = append(out.Projects[:index], out.Projects[index+1:]...)
	case model.SectionCertifications:
		out.Certifications = append(out.Certifications[:index], out.Certifications[index+1:]...)
	case model.SectionAwards:
		out.Awards = append(out.Awards[:index], out.Awards[index+1:]...)
	case model.SectionSkills:
		out.Skills = append(out.Skills[:index], out.Skills[index+1:]...)
	}
	return out, nil
}

// AddResponsibility appends a bullet to experience exp. An empty text adds
// a blank bullet to be filled in later.
func AddResponsibility(doc model.ResumeDocument, exp int, text string) (model.ResumeDocument, error) {
	if exp < 0 || exp >= len(doc.ProfessionalExperience) {
		return doc, fmt.Errorf("%w: experience %d", ErrIndexOutOfRange, exp)
	}
	out := doc.Clone()
	entry := &out.ProfessionalExperience[exp]
	entry.Responsibilities = append(entry.Responsibilities, text)
	return out, nil
}

// UpdateResponsibility rewrites bullet i of experience exp.
func UpdateResponsibility(doc model.ResumeDocument, exp, i int, text string) (model.ResumeDocument, error) {
	if err := checkResponsibility(doc, exp, i); err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.ProfessionalExperience[exp].Responsibilities[i] = text
	return out, nil
}

// RemoveResponsibility drops bullet i of experience exp.
func RemoveResponsibility(doc model.ResumeDocument, exp, i int) (model.ResumeDocument, error) {
	if err := checkResponsibility(doc, exp, i); err != nil {
		return doc, err
	}
	out := doc.Clone()
	items := out.ProfessionalExperience[exp].Responsibilities
	out.ProfessionalExperience[exp].Responsibilities = append(items[:i], items[i+1:]...)
	return out, nil
}

func checkResponsibility(doc model.ResumeDocument, exp, i int) error {
	if exp < 0 || exp >= len(doc.ProfessionalExperience) {
		return fmt.Errorf("%w: experience %d", ErrIndexOutOfRange, exp)
	}
	if i < 0 || i >= len(doc.ProfessionalExperience[exp].Responsibilities) {
		return fmt.Errorf("%w: responsibility %d", ErrIndexOutOfRange, i)
	}
	return nil
}

// plain turns typed items into the decoded JSON shape the coercers read.
func plain(item any) any {
	switch item.(type) {
	case nil, string, map[string]any, []any:
		return item
	}
	data, err := json.Marshal(item)
	if err != nil {
		return item
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return item
	}
	return out
}

func skillValue(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"value", "name", "skill"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
	}
	return ""
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
