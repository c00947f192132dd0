package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const bulletNumID = 1

const (
	documentRootStart = `<w:document xmlns:w="` + wmlNamespace + `" xmlns:r="` + relNamespace + `">`
	documentRootEnd   = `</w:document>`
)

const contentTypesXML = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`</Relationships>`

const appXML = xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
	`<Application>resume-builder</Application></Properties>`

// packageDocument writes the OOXML zip for doc.
func packageDocument(doc Document) ([]byte, error) {
	documentXML, err := documentPart(doc)
	if err != nil {
		return nil, err
	}
	if err := validateDocumentXMLStructure(string(documentXML)); err != nil {
		return nil, err
	}
	stylesXML, err := stylesPart(doc)
	if err != nil {
		return nil, err
	}
	numberingXML, err := numberingPart(doc)
	if err != nil {
		return nil, err
	}
	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", documentXML},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"docProps/core.xml", corePart(doc, created)},
		{"docProps/app.xml", []byte(appXML)},
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range parts {
		if err := writeZipFile(writer, part.name, created, part.content); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func documentPart(doc Document) ([]byte, error) {
	body := el("w:body")
	for _, b := range doc.Blocks {
		body.append(b.node())
	}
	body.append(sectionProperties())
	return encodePart(documentRootStart, documentRootEnd, []*xmlNode{body})
}

func stylesPart(doc Document) ([]byte, error) {
	fonts := el("w:rFonts").
		with("w:ascii", doc.Font).with("w:hAnsi", doc.Font).
		with("w:eastAsia", doc.Font).with("w:cs", doc.Font)
	defaults := el("w:docDefaults",
		el("w:rPrDefault", el("w:rPr", fonts, valInt("w:sz", doc.BodySize), valInt("w:szCs", doc.BodySize))),
		el("w:pPrDefault", el("w:pPr", el("w:spacing").withInt("w:after", 0).withInt("w:line", 276).with("w:lineRule", "auto"))),
	)
	normal := el("w:style", val("w:name", "Normal"), el("w:qFormat")).
		with("w:type", "paragraph").with("w:default", "1").with("w:styleId", "Normal")
	return encodePart(`<w:styles xmlns:w="`+wmlNamespace+`">`, `</w:styles>`, []*xmlNode{defaults, normal})
}

func numberingPart(doc Document) ([]byte, error) {
	level := el("w:lvl",
		valInt("w:start", 1),
		val("w:numFmt", "bullet"),
		val("w:lvlText", "•"),
		val("w:lvlJc", "left"),
		el("w:pPr", el("w:ind").withInt("w:left", 360).withInt("w:hanging", 360)),
		el("w:rPr", el("w:rFonts").with("w:ascii", doc.Font).with("w:hAnsi", doc.Font)),
	).withInt("w:ilvl", 0)
	abstract := el("w:abstractNum", val("w:multiLevelType", "singleLevel"), level).withInt("w:abstractNumId", 0)
	num := el("w:num", valInt("w:abstractNumId", 0)).withInt("w:numId", bulletNumID)
	return encodePart(`<w:numbering xmlns:w="`+wmlNamespace+`">`, `</w:numbering>`, []*xmlNode{abstract, num})
}

func corePart(doc Document, created time.Time) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	b.WriteString("<dc:title>" + escapeText(doc.Title) + "</dc:title>")
	b.WriteString("<dc:creator>" + escapeText(doc.Author) + "</dc:creator>")
	stamp := created.UTC().Format(time.RFC3339)
	b.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>`)
	b.WriteString(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>`)
	b.WriteString("</cp:coreProperties>")
	return []byte(b.String())
}

func escapeText(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func writeZipFile(writer *zip.Writer, name string, modified time.Time, content []byte) error {
	header := zip.FileHeader{
		Name:     normalizeZipName(name),
		Method:   zip.Deflate,
		Modified: modified,
	}
	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	if _, err := dst.Write(content); err != nil {
		return err
	}
	return nil
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
