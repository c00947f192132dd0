package layout

import (
	"fmt"
	"strings"

	"resume-builder/resume/model"
)

const baseStylesheet = `@page { size: letter portrait; margin: 0.5in; }
* { box-sizing: border-box; }
body { margin: 0; background: #fff; }
p { margin: 0; }
ul { margin: 4px 0 0; padding-left: 18px; }
.resume { line-height: 1.6; }
.resume-header { margin-bottom: 20px; }
.resume-name, .resume-section-title, .resume-contact-title { margin: 0; }
.resume-section { margin-top: 20px; }
.resume-section-title { margin-bottom: 10px; padding-bottom: 4px; }
.resume-entry { margin-bottom: 10px; }
.job-header { overflow: hidden; }
.job-duration { float: right; }
`

// Stylesheet returns the preview CSS of a template, derived from its theme.
func Stylesheet(t model.Template) (string, error) {
	theme, err := ThemeFor(t)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(baseStylesheet)
	fmt.Fprintf(&b, ".resume { font-family: '%s', Tahoma, Geneva, Verdana, sans-serif; }\n", theme.Font)
	rule(&b, ".resume-name", textCSS(theme.Name))
	rule(&b, ".resume-title", textCSS(theme.Title))
	rule(&b, ".resume-contact", textCSS(theme.Contact))
	rule(&b, ".resume-content", textCSS(theme.Body))
	rule(&b, ".item-title, .job-title", textCSS(theme.ItemTitle))
	rule(&b, ".job-duration", textCSS(theme.Dates))

	switch t {
	case model.TemplateModern:
		fmt.Fprintf(&b, ".resume-grid { display: grid; grid-template-columns: %d%% %d%%; min-height: 100%%; }\n",
			theme.SidebarWidthPct, 100-theme.SidebarWidthPct)
		fmt.Fprintf(&b, ".sidebar { background: #%s; padding: 30px 20px; }\n", theme.SidebarFill)
		b.WriteString(".main-content { padding: 30px; }\n")
		rule(&b, ".sidebar .resume-content, .sidebar .item-title", textCSS(theme.SidebarBody))
		rule(&b, ".sidebar .resume-section-title, .resume-contact-title",
			textCSS(theme.SidebarTitle)+"letter-spacing: 1px; "+ruleCSS(theme.SidebarRule))
		rule(&b, ".main-content .resume-section-title",
			textCSS(theme.SectionTitle)+"letter-spacing: 1px; "+ruleCSS(theme.Rule))
	case model.TemplateMinimal:
		rule(&b, ".resume-section-title", textCSS(theme.SectionTitle)+"letter-spacing: 2px; font-weight: 600; "+ruleCSS(theme.Rule))
		b.WriteString(".resume-section { margin-top: 30px; }\n.resume-header { margin-bottom: 30px; }\n")
	case model.TemplateCreative:
		fmt.Fprintf(&b, ".resume-header { background: linear-gradient(135deg, #%s 0%%, #%s 100%%); padding: 30px; }\n",
			theme.HeaderFill[0], theme.HeaderFill[1])
		rule(&b, ".resume-section-title", textCSS(theme.SectionTitle)+"padding-left: 15px; "+ruleCSS(theme.Rule))
	default:
		rule(&b, ".resume-section-title", textCSS(theme.SectionTitle)+ruleCSS(theme.Rule))
	}
	return b.String(), nil
}

func rule(b *strings.Builder, selector, body string) {
	fmt.Fprintf(b, "%s { %s}\n", selector, body)
}

func textCSS(style TextStyle) string {
	var b strings.Builder
	if style.SizePx > 0 {
		fmt.Fprintf(&b, "font-size: %dpx; ", style.SizePx)
	}
	if style.Color != "" {
		fmt.Fprintf(&b, "color: #%s; ", style.Color)
	}
	switch {
	case style.Bold:
		b.WriteString("font-weight: bold; ")
	case style.Light:
		b.WriteString("font-weight: 300; ")
	default:
		b.WriteString("font-weight: normal; ")
	}
	if style.Italic {
		b.WriteString("font-style: italic; ")
	}
	if style.Uppercase {
		b.WriteString("text-transform: uppercase; ")
	}
	if style.Center {
		b.WriteString("text-align: center; ")
	}
	return b.String()
}

func ruleCSS(r TitleRule) string {
	switch r.Kind {
	case RuleUnderline:
		return fmt.Sprintf("border-bottom: %dpx solid #%s; ", r.WidthPx, r.Color)
	case RuleLeftBar:
		return fmt.Sprintf("border-left: %dpx solid #%s; ", r.WidthPx, r.Color)
	default:
		return "border: none; "
	}
}
