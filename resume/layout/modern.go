package layout

import "resume-builder/resume/model"

// renderModern lays out a dark sidebar (identity, contact and the sidebar
// sections) next to a main column holding the remaining sections.
func renderModern(doc model.ResumeDocument, theme Theme) *Node {
	info := doc.PersonalInformation
	sidebar := block(ClassSidebar,
		heading(ClassName, info.Name),
		optional(paragraph(ClassTitle, info.Profession)),
	)
	sidebar.Children = append(sidebar.Children, sidebarContact(theme, info)...)

	main := block(ClassMain)
	for _, section := range model.SectionOrder {
		node := sectionBlock(doc, theme, section)
		if node == nil {
			continue
		}
		if theme.InSidebar(section) {
			sidebar.Children = append(sidebar.Children, node)
			continue
		}
		main.Children = append(main.Children, node)
	}

	return block(ClassResume, block(ClassGrid, sidebar, main))
}

func sidebarContact(theme Theme, info model.PersonalInformation) []*Node {
	parts := ContactParts(theme.Template, info)
	if len(parts) == 0 {
		return nil
	}
	contact := block(ClassContact)
	for i, part := range parts {
		if i > 0 {
			contact.Children = append(contact.Children, lineBreak())
		}
		contact.Children = append(contact.Children, span("", part))
	}
	return []*Node{heading(ClassContactTitle, HeadingText(theme.SidebarTitle, ContactTitle)), contact}
}
