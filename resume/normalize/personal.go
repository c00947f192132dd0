package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-builder/resume/model"
)

var phonePattern = regexp.MustCompile(`\d{3}[-.)]\d`)

var addressKeywords = []string{"street", "st,", "ave", "road"}

func personalInformation(payload map[string]any) model.PersonalInformation {
	var info model.PersonalInformation

	if nested, ok := payload["personalInformation"].(map[string]any); ok {
		fillFlat(&info, nested)
	}
	fillFlat(&info, payload)

	switch v := payload["personal_information"].(type) {
	case map[string]any:
		fillFlat(&info, v)
	case []any:
		if isFieldValueArray(v) {
			fillFieldValuePairs(&info, v)
		} else {
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				}
			}
			classifyInto(&info, items)
		}
	}
	return info
}

func fillFlat(info *model.PersonalInformation, m map[string]any) {
	setIfEmpty(&info.Name, str(m, "name", "full_name", "fullName"))
	setIfEmpty(&info.Profession, str(m, "profession"))
	setIfEmpty(&info.Email, str(m, "email"))
	setIfEmpty(&info.Phone, str(m, "phone_number", "phone"))
	setIfEmpty(&info.Address, str(m, "address"))
	setIfEmpty(&info.LinkedIn, str(m, "linkedin"))
	setIfEmpty(&info.Website, str(m, "website"))
	setIfEmpty(&info.Twitter, str(m, "twitter"))
}

func isFieldValueArray(items []any) bool {
	if len(items) == 0 {
		return false
	}
	m, ok := items[0].(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["field"]
	return ok
}

func fillFieldValuePairs(info *model.PersonalInformation, items []any) {
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value := text(m["value"])
		switch strings.ToLower(strings.TrimSpace(text(m["field"]))) {
		case "name":
			setIfEmpty(&info.Name, value)
		case "profession", "title":
			setIfEmpty(&info.Profession, value)
		case "email":
			setIfEmpty(&info.Email, value)
		case "phone", "phone_number":
			setIfEmpty(&info.Phone, value)
		case "address":
			setIfEmpty(&info.Address, value)
		case "linkedin":
			setIfEmpty(&info.LinkedIn, value)
		case "website":
			setIfEmpty(&info.Website, value)
		case "twitter":
			setIfEmpty(&info.Twitter, value)
		}
	}
}

// ClassifyContactStrings assigns bare contact strings to personal fields by
// keyword and pattern. It is a best-effort heuristic and may misclassify,
// for example a numeric street address can look like a phone number.
// Prefer structured {field, value} input where the source can provide it.
func ClassifyContactStrings(items []string) model.PersonalInformation {
	var info model.PersonalInformation
	classifyInto(&info, items)
	return info
}

// classifyInto walks items once. Each rule only applies while its field is
// still empty; an item that matches no open rule falls through to the next.
func classifyInto(info *model.PersonalInformation, items []string) {
	for _, item := range items {
		lower := strings.ToLower(item)
		switch {
		case info.Email == "" && strings.Contains(item, "@"):
			info.Email = item
		case info.Phone == "" && (strings.HasPrefix(item, "+") || phonePattern.MatchString(item)):
			info.Phone = item
		case info.LinkedIn == "" && isLinkedInURL(item):
			info.LinkedIn = item
		case info.Website == "" && isHTTPURL(item) && !isLinkedInURL(item):
			info.Website = item
		case info.Address == "" && (strings.Contains(item, ",") || containsAny(lower, addressKeywords)):
			info.Address = item
		case info.Name == "":
			info.Name = item
		}
	}
}

func isLinkedInURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return domain == "linkedin.com"
}

func isHTTPURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}
