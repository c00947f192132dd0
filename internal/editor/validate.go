package editor

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"resume-builder/resume/model"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requiredRules() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidationMapRules(map[string]string{
			"Name":       "required",
			"Profession": "required",
		}, model.PersonalInformation{})
		v.RegisterStructValidationMapRules(map[string]string{
			"Role":         "required",
			"Organization": "required",
			"StartDate":    "required",
			"EndDate":      "required",
		}, model.Experience{})
		v.RegisterStructValidationMapRules(map[string]string{
			"Institution": "required",
			"Degree":      "required",
			"StartDate":   "required",
			"EndDate":     "required",
		}, model.Education{})
		v.RegisterStructValidationMapRules(map[string]string{
			"Name":        "required",
			"Description": "required",
		}, model.Project{})
		validate = v
	})
	return validate
}

var fieldMessages = map[string]string{
	"personalInformation.name":            "Name is required",
	"personalInformation.profession":      "Profession is required",
	"professionalExperience.role":         "Role is required",
	"professionalExperience.organization": "Organization is required",
	"professionalExperience.startDate":    "Start date is required",
	"professionalExperience.endDate":      "End date is required",
	"education.institution":               "Institution is required",
	"education.degree":                    "Certificate/Degree is required",
	"education.startDate":                 "Start date is required",
	"education.endDate":                   "End date is required",
	"projects.name":                       "Project name is required",
	"projects.description":                "Project description is required",
}

// Validate checks the fields a master resume must carry. It returns nil or
// a *ValidationError keyed like "education.1.startDate".
func Validate(doc model.ResumeDocument) error {
	fields := map[string]string{}
	v := requiredRules()

	info := doc.PersonalInformation
	info.Name = strings.TrimSpace(info.Name)
	info.Profession = strings.TrimSpace(info.Profession)
	collect(fields, "personalInformation", "personalInformation", v.Struct(info))

	for i, exp := range doc.ProfessionalExperience {
		exp.Role, exp.Organization = strings.TrimSpace(exp.Role), strings.TrimSpace(exp.Organization)
		exp.StartDate, exp.EndDate = strings.TrimSpace(exp.StartDate), strings.TrimSpace(exp.EndDate)
		collect(fields, "professionalExperience", indexed("professionalExperience", i), v.Struct(exp))
	}
	for i, edu := range doc.Education {
		edu.Institution, edu.Degree = strings.TrimSpace(edu.Institution), strings.TrimSpace(edu.Degree)
		edu.StartDate, edu.EndDate = strings.TrimSpace(edu.StartDate), strings.TrimSpace(edu.EndDate)
		collect(fields, "education", indexed("education", i), v.Struct(edu))
	}
	for i, project := range doc.Projects {
		project.Name, project.Description = strings.TrimSpace(project.Name), strings.TrimSpace(project.Description)
		collect(fields, "projects", indexed("projects", i), v.Struct(project))
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func indexed(section string, i int) string {
	return section + "." + strconv.Itoa(i)
}

func collect(fields map[string]string, group, prefix string, err error) {
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		fields[prefix] = err.Error()
		return
	}
	for _, fe := range errs {
		msg, ok := fieldMessages[group+"."+fe.Field()]
		if !ok {
			msg = fe.Field() + " is required"
		}
		fields[prefix+"."+fe.Field()] = msg
	}
}
