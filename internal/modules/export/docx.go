package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

const (
	docxTitleColor = "2563EB"
	docxTitleStyle = "Title"
	docxBodySize   = 11
)

// DOCX renders a Word document with a Title heading and one 11pt paragraph per non-blank line.
func DOCX(summary, displayName string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("docx new document: %w", err)
	}

	title := doc.AddEmptyParagraph()
	title.Style(docxTitleStyle)
	title.AddText(stripInvalidXML(heading(displayName))).Color(docxTitleColor)

	for _, p := range paragraphs(summary) {
		doc.AddEmptyParagraph().AddText(stripInvalidXML(p)).Size(docxBodySize)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("docx write: %w", err)
	}
	return buf.Bytes(), nil
}

// stripInvalidXML drops control characters XML 1.0 cannot carry.
func stripInvalidXML(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r >= 0x20 && r != 0xFFFE && r != 0xFFFF {
			return r
		}
		return -1
	}, s)
}
