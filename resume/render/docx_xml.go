package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// xmlNode is a prefixed WordprocessingML element. Names carry their prefix
// in Local ("w:p"); namespaces are declared once on the part root.
type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

func el(name string, children ...*xmlNode) *xmlNode {
	node := &xmlNode{Name: xml.Name{Local: name}}
	for _, child := range children {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// val builds an element with a single w:val attribute.
func val(name, value string) *xmlNode {
	return el(name).with("w:val", value)
}

func valInt(name string, value int) *xmlNode {
	return val(name, strconv.Itoa(value))
}

func textNode(text string) *xmlNode {
	return &xmlNode{IsText: true, Text: text}
}

func (n *xmlNode) with(key, value string) *xmlNode {
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Local: key}, Value: value})
	return n
}

func (n *xmlNode) withInt(key string, value int) *xmlNode {
	return n.with(key, strconv.Itoa(value))
}

func (n *xmlNode) append(children ...*xmlNode) *xmlNode {
	for _, child := range children {
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// encodePart serializes a complete XML part. The root start tag is written
// as given so it can declare every prefix used below it.
func encodePart(rootStart, rootEnd string, children []*xmlNode) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteString(rootStart)

	encoder := xml.NewEncoder(&buf)
	for _, child := range children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return nil, err
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}

	buf.WriteString(rootEnd)
	return buf.Bytes(), nil
}

func encodeXMLNode(encoder *xml.Encoder, node *xmlNode) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData([]byte(node.Text)))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}
