package layout

import (
	"strings"

	"resume-builder/resume/model"
)

// Kind is the structural type of a layout node.
type Kind string

const (
	KindBlock     Kind = "block"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindText      Kind = "text"
	KindStrong    Kind = "strong"
	KindEm        Kind = "em"
	KindList      Kind = "list"
	KindItem      Kind = "item"
	KindBreak     Kind = "break"
)

// Class names carried by layout nodes. They double as CSS classes.
const (
	ClassResume       = "resume"
	ClassGrid         = "resume-grid"
	ClassSidebar      = "sidebar"
	ClassMain         = "main-content"
	ClassHeader       = "resume-header"
	ClassName         = "resume-name"
	ClassTitle        = "resume-title"
	ClassContact      = "resume-contact"
	ClassSection      = "resume-section"
	ClassSectionTitle = "resume-section-title"
	ClassContent      = "resume-content"
	ClassEntry        = "resume-entry"
	ClassJobHeader    = "job-header"
	ClassJobTitle     = "job-title"
	ClassJobDuration  = "job-duration"
	ClassSkillTag     = "skill-tag"
	ClassItemTitle    = "item-title"
)

// Node is one styled layout element. Text is raw user text; escaping
// happens when the tree is serialized.
type Node struct {
	Kind     Kind          `json:"kind"`
	Class    string        `json:"class,omitempty"`
	Section  model.Section `json:"section,omitempty"`
	Text     string        `json:"text,omitempty"`
	Children []*Node       `json:"children,omitempty"`
}

// Tree is the rendered visual layout of a document in one template.
type Tree struct {
	Template model.Template `json:"template"`
	Root     *Node          `json:"root"`
}

// Walk visits nodes depth-first until visit returns false.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(visit) {
			return false
		}
	}
	return true
}

// PlainText concatenates all text below the node.
func (n *Node) PlainText() string {
	var b strings.Builder
	n.Walk(func(node *Node) bool {
		if node.Text != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(node.Text)
		}
		return true
	})
	return b.String()
}

// Sections returns the emitted sections in tree order.
func (t *Tree) Sections() []model.Section {
	var out []model.Section
	t.Root.Walk(func(n *Node) bool {
		if n.Class == ClassSection && n.Section != "" {
			out = append(out, n.Section)
		}
		return true
	})
	return out
}

// FindClass returns every node carrying class, in tree order.
func (t *Tree) FindClass(class string) []*Node {
	var out []*Node
	t.Root.Walk(func(n *Node) bool {
		if n.Class == class {
			out = append(out, n)
		}
		return true
	})
	return out
}

func block(class string, children ...*Node) *Node {
	return &Node{Kind: KindBlock, Class: class, Children: compact(children)}
}

func heading(class, text string) *Node {
	return &Node{Kind: KindHeading, Class: class, Text: text}
}

func paragraph(class, text string) *Node {
	return &Node{Kind: KindParagraph, Class: class, Text: text}
}

func span(class, text string) *Node {
	return &Node{Kind: KindText, Class: class, Text: text}
}

func strong(class, text string) *Node {
	return &Node{Kind: KindStrong, Class: class, Text: text}
}

func em(text string) *Node {
	return &Node{Kind: KindEm, Text: text}
}

func lineBreak() *Node {
	return &Node{Kind: KindBreak}
}

func bulletList(items []string) *Node {
	list := &Node{Kind: KindList, Children: []*Node{}}
	for _, item := range items {
		list.Children = append(list.Children, &Node{Kind: KindItem, Text: item})
	}
	return list
}

// optional returns nil for blank text so compact can drop it.
func optional(node *Node) *Node {
	if node == nil || strings.TrimSpace(node.Text) == "" {
		return nil
	}
	return node
}

func compact(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
