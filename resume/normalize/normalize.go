package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"resume-builder/resume/model"
)

// Normalize converts an inbound payload of any historical shape into the
// canonical document. It never fails: absent or malformed input yields a
// document with every field at its empty default.
//
// Accepted inputs are decoded JSON maps, raw JSON ([]byte, json.RawMessage,
// string) and any value that marshals to a JSON object.
func Normalize(raw any) model.ResumeDocument {
	payload := toObject(raw)
	if payload == nil {
		return model.Empty()
	}
	payload = unwrapEnvelope(payload)

	if IsCanonical(payload) {
		if doc, ok := decodeCanonical(payload); ok {
			return doc
		}
	}
	return fromLegacy(payload)
}

// NormalizeJSON is Normalize for a raw JSON body.
func NormalizeJSON(data []byte) model.ResumeDocument {
	return Normalize(data)
}

func toObject(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	case string:
		return decodeObject([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return decodeObject(data)
	}
}

func decodeObject(data []byte) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

var knownTopLevelKeys = []string{
	"personalInformation", "personal_information", "name", "email", "summary",
	"professionalExperience", "professional_experiences", "professional_experience",
	"education", "educations", "projects", "certifications", "awards", "skills",
}

// unwrapEnvelope descends into {"resume": {...}} or {"data": {...}} wrappers
// when the top level carries none of the resume keys.
func unwrapEnvelope(payload map[string]any) map[string]any {
	for _, key := range knownTopLevelKeys {
		if _, ok := payload[key]; ok {
			return payload
		}
	}
	for _, key := range []string{"resume", "resume_data", "data"} {
		if inner, ok := payload[key].(map[string]any); ok {
			return inner
		}
	}
	return payload
}

func decodeCanonical(payload map[string]any) (model.ResumeDocument, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.ResumeDocument{}, false
	}
	var doc model.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ResumeDocument{}, false
	}
	return doc.WithDefaults(), true
}

func fromLegacy(payload map[string]any) model.ResumeDocument {
	doc := model.Empty()
	doc.PersonalInformation = personalInformation(payload)
	doc.Summary = text(payload["summary"])

	for _, item := range list(payload, "professional_experiences", "professionalExperience", "professional_experience", "experience") {
		doc.ProfessionalExperience = append(doc.ProfessionalExperience, Experience(item))
	}
	for _, item := range list(payload, "educations", "education") {
		doc.Education = append(doc.Education, Education(item))
	}
	for _, item := range list(payload, "projects") {
		doc.Projects = append(doc.Projects, Project(item))
	}
	for _, item := range list(payload, "certifications") {
		doc.Certifications = append(doc.Certifications, Certification(item))
	}
	for _, item := range list(payload, "awards") {
		doc.Awards = append(doc.Awards, Award(item))
	}
	doc.Skills = ParseSkills(payload["skills"])
	return doc
}

// Experience coerces one experience item of any accepted shape.
func Experience(raw any) model.Experience {
	m := asObject(raw)
	return model.Experience{
		Organization:     str(m, "organization", "company"),
		Role:             str(m, "role", "title"),
		StartDate:        str(m, "startDate", "start_date"),
		EndDate:          str(m, "endDate", "end_date"),
		Location:         str(m, "location"),
		Responsibilities: stringList(first(m, "responsibilities", "highlights")),
	}
}

// Education coerces one education item of any accepted shape.
func Education(raw any) model.Education {
	m := asObject(raw)
	return model.Education{
		Institution: str(m, "institution", "school"),
		Degree:      str(m, "degree", "certificate"),
		Field:       str(m, "field", "field_of_study"),
		StartDate:   str(m, "startDate", "start_date"),
		EndDate:     str(m, "endDate", "end_date", "graduationDate", "graduation_date"),
		GPA:         str(m, "gpa"),
	}
}

// Project coerces one project item of any accepted shape.
func Project(raw any) model.Project {
	if s, ok := raw.(string); ok {
		return model.Project{Name: s}
	}
	m := asObject(raw)
	technologies := str(m, "technologies")
	if technologies == "" {
		if items := stringList(m["technologies"]); len(items) > 0 {
			technologies = strings.Join(items, ", ")
		}
	}
	return model.Project{
		Name:         str(m, "name", "title"),
		Description:  str(m, "description"),
		Technologies: technologies,
		Link:         str(m, "link", "url"),
	}
}

// Certification coerces one certification item of any accepted shape.
func Certification(raw any) model.Certification {
	if s, ok := raw.(string); ok {
		return model.Certification{Name: s}
	}
	m := asObject(raw)
	return model.Certification{
		Name:   str(m, "name", "title"),
		Issuer: str(m, "issuer", "organization"),
		Year:   str(m, "year", "date"),
	}
}

// Award coerces one award item of any accepted shape.
func Award(raw any) model.Award {
	if s, ok := raw.(string); ok {
		return model.Award{Title: s}
	}
	m := asObject(raw)
	return model.Award{
		Title:        str(m, "title", "name"),
		Organization: str(m, "organization", "issuer"),
		Year:         str(m, "year", "date"),
	}
}

func asObject(raw any) map[string]any {
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// first returns the first non-null value among keys.
func first(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// str returns the first non-empty scalar among keys, as text.
func str(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := text(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// list returns the first array value among keys.
func list(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if items, ok := m[key].([]any); ok {
			return items
		}
	}
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// stringList accepts an array of scalars or a newline separated string.
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := text(item); s != "" || isString(item) {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	case string:
		for _, line := range strings.Split(t, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•-*"))
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
