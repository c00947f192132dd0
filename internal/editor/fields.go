package editor

import (
	"fmt"
	"strings"

	"resume-builder/resume/model"
)

func personalFields(info *model.PersonalInformation) map[string]*string {
	return map[string]*string{
		"name":       &info.Name,
		"profession": &info.Profession,
		"email":      &info.Email,
		"phone":      &info.Phone,
		"address":    &info.Address,
		"linkedin":   &info.LinkedIn,
		"website":    &info.Website,
		"twitter":    &info.Twitter,
	}
}

// itemFields returns the editable string fields of one item in doc.
// Skills expose their value under "value" and the empty name.
func itemFields(doc *model.ResumeDocument, section model.Section, index int) (map[string]*string, error) {
	n, err := sectionLen(*doc, section)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, section, index)
	}
	switch section {
	case model.SectionExperience:
		e := &doc.ProfessionalExperience[index]
		return map[string]*string{
			"organization": &e.Organization,
			"role":         &e.Role,
			"startDate":    &e.StartDate,
			"endDate":      &e.EndDate,
			"location":     &e.Location,
		}, nil
	case model.SectionEducation:
		e := &doc.Education[index]
		return map[string]*string{
			"institution": &e.Institution,
			"degree":      &e.Degree,
			"field":       &e.Field,
			"startDate":   &e.StartDate,
			"endDate":     &e.EndDate,
			"gpa":         &e.GPA,
		}, nil
	case model.SectionProjects:
		p := &doc.Projects[index]
		return map[string]*string{
			"name":         &p.Name,
			"description":  &p.Description,
			"technologies": &p.Technologies,
			"link":         &p.Link,
		}, nil
	case model.SectionCertifications:
		c := &doc.Certifications[index]
		return map[string]*string{"name": &c.Name, "issuer": &c.Issuer, "year": &c.Year}, nil
	case model.SectionAwards:
		a := &doc.Awards[index]
		return map[string]*string{"title": &a.Title, "organization": &a.Organization, "year": &a.Year}, nil
	case model.SectionSkills:
		return map[string]*string{"": &doc.Skills[index], "value": &doc.Skills[index]}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAList, section)
}

func sectionLen(doc model.ResumeDocument, section model.Section) (int, error) {
	switch section {
	case model.SectionExperience:
		return len(doc.ProfessionalExperience), nil
	case model.SectionEducation:
		return len(doc.Education), nil
	case model.SectionProjects:
		return len(doc.Projects), nil
	case model.SectionCertifications:
		return len(doc.Certifications), nil
	case model.SectionAwards:
		return len(doc.Awards), nil
	case model.SectionSkills:
		return len(doc.Skills), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotAList, section)
}

func lookupField(fields map[string]*string, name string) (*string, error) {
	if ptr, ok := fields[name]; ok {
		return ptr, nil
	}
	for key, ptr := range fields {
		if key != "" && strings.EqualFold(key, name) {
			return ptr, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidField, name)
}
