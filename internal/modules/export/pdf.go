package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pdfTitleSize    = 18
	pdfBodySize     = 11
	pdfTitleGap     = 5.0 // mm after the heading
	pdfParagraphGap = 2.5 // mm between paragraphs
	pdfTitleLineH   = 9.0
	pdfBodyLineH    = 6.0
	pdfTitleR       = 37
	pdfTitleG       = 99
	pdfTitleB       = 235
	pdfFontFamily   = "go"
)

// PDF renders a Letter document: heading, then one paragraph per non-blank line.
func PDF(summary, displayName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	// UTF-8 fonts keep text outside cp1252 (arrows, Greek, Cyrillic); CJK has no glyphs here.
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", gobold.TTF)

	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.SetTextColor(pdfTitleR, pdfTitleG, pdfTitleB)
	pdf.MultiCell(0, pdfTitleLineH, heading(displayName), "", "L", false)
	pdf.Ln(pdfTitleGap)

	pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	pdf.SetTextColor(0, 0, 0)
	for _, p := range paragraphs(summary) {
		pdf.MultiCell(0, pdfBodyLineH, p, "", "L", false)
		pdf.Ln(pdfParagraphGap)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
