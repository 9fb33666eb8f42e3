package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// LayoutMethod reads the content stream with github.com/ledongthuc/pdf.
type LayoutMethod struct{}

func (LayoutMethod) Name() string { return "layout" }

func (LayoutMethod) Open(_ context.Context, path string) (doc Document, err error) {
	defer recoverInto(&err, "open")

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &layoutDocument{file: f, reader: r}, nil
}

type layoutDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *layoutDocument) NumPages() int { return d.reader.NumPage() }

func (d *layoutDocument) PageText(_ context.Context, n int) (text string, err error) {
	defer recoverInto(&err, fmt.Sprintf("page %d", n))

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d *layoutDocument) Close() error { return d.file.Close() }

// recoverInto turns a library panic on malformed input into an error.
func recoverInto(err *error, stage string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf reader panic at %s: %v", stage, r)
	}
}
