package render

// Page geometry in twips (1/20 pt). Letter portrait with 0.5in margins.
const (
	PageWidth    = 12240
	PageHeight   = 15840
	PageMargin   = 720
	ContentWidth = PageWidth - 2*PageMargin
)

// PxToHalfPoints converts a CSS pixel font size to a DOCX run size (w:sz).
func PxToHalfPoints(px int) int {
	return px * 2
}

// PxToBorderEighths converts a CSS border width to eighths of a point
// (w:sz on borders). One CSS pixel is 0.75pt.
func PxToBorderEighths(px int) int {
	return px * 6
}

// pctToFiftieths converts a percentage to the pct unit of table widths.
func pctToFiftieths(pct int) int {
	return pct * 50
}

// spacing is the vertical rhythm of one template, in twips.
type spacing struct {
	NameAfter     int
	TitleAfter    int
	ContactAfter  int
	SectionBefore int
	SectionAfter  int
	EntryAfter    int
	LineAfter     int
	TitleIndent   int
}

var classicSpacing = spacing{
	NameAfter:     60,
	TitleAfter:    120,
	ContactAfter:  240,
	SectionBefore: 240,
	SectionAfter:  160,
	EntryAfter:    160,
	LineAfter:     40,
}

var minimalSpacing = spacing{
	NameAfter:     60,
	TitleAfter:    180,
	ContactAfter:  300,
	SectionBefore: 300,
	SectionAfter:  160,
	EntryAfter:    200,
	LineAfter:     40,
}

var creativeSpacing = spacing{
	NameAfter:     0,
	TitleAfter:    0,
	ContactAfter:  240,
	SectionBefore: 240,
	SectionAfter:  160,
	EntryAfter:    160,
	LineAfter:     40,
	TitleIndent:   200,
}

var modernSpacing = spacing{
	NameAfter:     60,
	TitleAfter:    240,
	ContactAfter:  60,
	SectionBefore: 180,
	SectionAfter:  120,
	EntryAfter:    160,
	LineAfter:     40,
}

// Modern sidebar cell padding in twips.
var modernSidebarMargins = CellMargins{Top: 300, Bottom: 300, Left: 200, Right: 200}
var modernMainMargins = CellMargins{Top: 300, Bottom: 300, Left: 300, Right: 200}
