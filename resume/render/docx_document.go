package render

import (
	"strings"
	"time"
)

// Alignment is a paragraph justification (w:jc).
type Alignment string

const (
	AlignLeft   Alignment = ""
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Run is a span of uniformly formatted text. Size is in half-points.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Size   int
	Color  string
	Tab    bool // emit a tab before the text
}

// Border is one side of a paragraph border. Size is in eighths of a point.
type Border struct {
	Side  string
	Size  int
	Color string
	Space int
}

// TabStop is a custom tab position in twips.
type TabStop struct {
	Align string
	Pos   int
}

// Paragraph is a w:p with its properties. Spacing and indent are in twips.
type Paragraph struct {
	Runs          []Run
	Align         Alignment
	SpacingBefore int
	SpacingAfter  int
	IndentLeft    int
	Bullet        bool
	KeepNext      bool
	Borders       []Border
	Fill          string
	Tabs          []TabStop
}

// CellMargins pads a table cell, in twips.
type CellMargins struct {
	Top, Bottom, Left, Right int
}

// Cell is one column of a single-row layout table.
type Cell struct {
	WidthPct int
	Fill     string
	Margins  CellMargins
	Blocks   []Block
}

// Table is a borderless single-row table used for column layouts.
type Table struct {
	Cells []Cell
}

// Block is a body-level element.
type Block interface {
	node() *xmlNode
}

// Document is a complete DOCX body plus package metadata.
type Document struct {
	Title    string
	Author   string
	Font     string
	BodySize int
	Created  time.Time
	Blocks   []Block
}

// Text returns the concatenated run text of the paragraph.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func (p Paragraph) node() *xmlNode {
	para := el("w:p", p.properties())
	for _, r := range p.Runs {
		para.append(r.node())
	}
	return para
}

// properties honors the CT_PPr child order.
func (p Paragraph) properties() *xmlNode {
	props := el("w:pPr")
	if p.KeepNext {
		props.append(el("w:keepNext"))
	}
	if p.Bullet {
		props.append(el("w:numPr", valInt("w:ilvl", 0), valInt("w:numId", bulletNumID)))
	}
	if len(p.Borders) > 0 {
		bdr := el("w:pBdr")
		for _, side := range []string{"top", "left", "bottom", "right"} {
			for _, b := range p.Borders {
				if b.Side != side {
					continue
				}
				bdr.append(val("w:"+side, "single").
					withInt("w:sz", b.Size).
					withInt("w:space", b.Space).
					with("w:color", b.Color))
			}
		}
		props.append(bdr)
	}
	if p.Fill != "" {
		props.append(shading(p.Fill))
	}
	if len(p.Tabs) > 0 {
		tabs := el("w:tabs")
		for _, t := range p.Tabs {
			tabs.append(val("w:tab", t.Align).withInt("w:pos", t.Pos))
		}
		props.append(tabs)
	}
	props.append(el("w:spacing").withInt("w:before", p.SpacingBefore).withInt("w:after", p.SpacingAfter))
	if p.IndentLeft > 0 && !p.Bullet {
		props.append(el("w:ind").withInt("w:left", p.IndentLeft))
	}
	if p.Align != AlignLeft {
		props.append(val("w:jc", string(p.Align)))
	}
	return props
}

// node honors the CT_RPr child order and keeps w:rPr ahead of w:t.
func (r Run) node() *xmlNode {
	run := el("w:r")
	props := el("w:rPr")
	if r.Bold {
		props.append(el("w:b"), el("w:bCs"))
	}
	if r.Italic {
		props.append(el("w:i"), el("w:iCs"))
	}
	if r.Color != "" {
		props.append(val("w:color", r.Color))
	}
	if r.Size > 0 {
		props.append(valInt("w:sz", r.Size), valInt("w:szCs", r.Size))
	}
	if len(props.Children) > 0 {
		run.append(props)
	}
	if r.Tab {
		run.append(el("w:tab"))
	}
	if r.Text != "" {
		run.append(el("w:t", textNode(r.Text)).with("xml:space", "preserve"))
	}
	return run
}

func shading(fill string) *xmlNode {
	return val("w:shd", "solid").with("w:color", fill).with("w:fill", fill)
}

func (t Table) node() *xmlNode {
	props := el("w:tblPr",
		el("w:tblW").withInt("w:w", pctToFiftieths(100)).with("w:type", "pct"),
		el("w:tblBorders",
			val("w:top", "nil"), val("w:left", "nil"), val("w:bottom", "nil"),
			val("w:right", "nil"), val("w:insideH", "nil"), val("w:insideV", "nil"),
		),
		el("w:tblLayout").with("w:type", "fixed"),
	)
	grid := el("w:tblGrid")
	row := el("w:tr")
	for _, c := range t.Cells {
		grid.append(el("w:gridCol").withInt("w:w", ContentWidth*c.WidthPct/100))
		row.append(c.node())
	}
	return el("w:tbl", props, grid, row)
}

func (c Cell) node() *xmlNode {
	props := el("w:tcPr", el("w:tcW").withInt("w:w", pctToFiftieths(c.WidthPct)).with("w:type", "pct"))
	if c.Fill != "" {
		props.append(shading(c.Fill))
	}
	props.append(el("w:tcMar",
		el("w:top").withInt("w:w", c.Margins.Top).with("w:type", "dxa"),
		el("w:left").withInt("w:w", c.Margins.Left).with("w:type", "dxa"),
		el("w:bottom").withInt("w:w", c.Margins.Bottom).with("w:type", "dxa"),
		el("w:right").withInt("w:w", c.Margins.Right).with("w:type", "dxa"),
	))
	props.append(val("w:vAlign", "top"))

	cell := el("w:tc", props)
	for _, b := range c.Blocks {
		cell.append(b.node())
	}
	// A cell must end with a paragraph.
	if len(c.Blocks) == 0 {
		cell.append(Paragraph{}.node())
	} else if _, ok := c.Blocks[len(c.Blocks)-1].(Paragraph); !ok {
		cell.append(Paragraph{}.node())
	}
	return cell
}

func sectionProperties() *xmlNode {
	return el("w:sectPr",
		el("w:pgSz").withInt("w:w", PageWidth).withInt("w:h", PageHeight),
		el("w:pgMar").
			withInt("w:top", PageMargin).withInt("w:right", PageMargin).
			withInt("w:bottom", PageMargin).withInt("w:left", PageMargin).
			withInt("w:header", PageMargin/2).withInt("w:footer", PageMargin/2).
			withInt("w:gutter", 0),
	)
}
