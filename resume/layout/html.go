package layout

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptyTree is returned when serializing a tree without a root.
var ErrEmptyTree = errors.New("layout: empty tree")

// RenderHTML serializes the tree as an HTML fragment. User text is always
// emitted as text nodes.
func RenderHTML(tree *Tree) (string, error) {
	if tree == nil || tree.Root == nil {
		return "", ErrEmptyTree
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTML(tree.Root)); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// RenderPage serializes the tree as a standalone letter-size page with the
// template stylesheet inlined. This is the input of the PDF rasterizer.
func RenderPage(tree *Tree) (string, error) {
	if tree == nil || tree.Root == nil {
		return "", ErrEmptyTree
	}
	css, err := Stylesheet(tree.Template)
	if err != nil {
		return "", err
	}

	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	title := element(atom.Title)
	title.AppendChild(textNode("Resume"))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(textNode(css))
	head.AppendChild(style)

	body := element(atom.Body)
	body.AppendChild(toHTML(tree.Root))

	root := element(atom.Html)
	root.Attr = []html.Attribute{{Key: "lang", Val: "en"}}
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

func toHTML(n *Node) *html.Node {
	el := element(tagFor(n))
	if n.Class != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: n.Class})
	}
	if n.Section != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-section", Val: string(n.Section)})
	}
	if n.Kind == KindBreak {
		return el
	}
	if n.Text != "" {
		el.AppendChild(textNode(n.Text))
	}
	for _, child := range n.Children {
		if child != nil {
			el.AppendChild(toHTML(child))
		}
	}
	return el
}

func tagFor(n *Node) atom.Atom {
	switch n.Kind {
	case KindHeading:
		switch n.Class {
		case ClassName:
			return atom.H1
		case ClassSectionTitle, ClassContactTitle:
			return atom.H2
		default:
			return atom.H3
		}
	case KindParagraph:
		return atom.P
	case KindText:
		return atom.Span
	case KindStrong:
		return atom.Strong
	case KindEm:
		return atom.Em
	case KindList:
		return atom.Ul
	case KindItem:
		return atom.Li
	case KindBreak:
		return atom.Br
	default:
		return atom.Div
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
