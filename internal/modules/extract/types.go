package extract

import (
	"context"
	"errors"
)

// ErrNoText means no method produced usable text. It is a result, not a crash.
var ErrNoText = errors.New("could not extract text from pdf")

// ProgressFunc receives the 1-based page being processed and the page total.
type ProgressFunc func(current, total int)

// Result is the outcome of a successful extraction.
type Result struct {
	Text      string
	PageCount int
	WordCount int
	Method    string
}

// Method is one way of reading a PDF page by page.
type Method interface {
	Name() string
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an opened PDF.
type Document interface {
	NumPages() int
	// PageText returns the text of page n (1-based).
	PageText(ctx context.Context, n int) (string, error)
	Close() error
}
