package normalize

import "strings"

// ParseSkills accepts a separator-joined string or an array and returns the
// skills in order. Null or unsupported input yields an empty slice.
func ParseSkills(raw any) []string {
	out := []string{}
	switch v := raw.(type) {
	case string:
		for _, part := range strings.FieldsFunc(v, isSkillSeparator) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	case []string:
		for _, skill := range v {
			if trimmed := strings.TrimSpace(skill); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				item = first(m, "name", "skill")
			}
			if trimmed := strings.TrimSpace(text(item)); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func isSkillSeparator(r rune) bool {
	switch r {
	case '•', ',', '|', '\n', ';':
		return true
	default:
		return false
	}
}
