package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Extractor tries each method in order and keeps the first that reads every page.
type Extractor struct {
	methods   []Method
	pageDelay time.Duration
	logger    *zap.Logger
}

// Options configures NewExtractor.
type Options struct {
	// PageDelay paces progress events for the UI; 0 disables it.
	PageDelay     time.Duration
	PdftotextPath string
	Runner        Runner
}

// NewExtractor returns the layout reader with pdftotext as fallback.
func NewExtractor(logger *zap.Logger, opts Options) *Extractor {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	binary := opts.PdftotextPath
	if binary == "" {
		binary = "pdftotext"
	}
	return NewWithMethods(logger, opts.PageDelay,
		LayoutMethod{},
		PdftotextMethod{Binary: binary, Runner: runner},
	)
}

// NewWithMethods builds an extractor over explicit methods, primary first.
func NewWithMethods(logger *zap.Logger, pageDelay time.Duration, methods ...Method) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{methods: methods, pageDelay: pageDelay, logger: logger}
}

// Extract reads path page by page, calling progress once per page. When a method fails
// part way its partial text is discarded and the next method starts over.
func (e *Extractor) Extract(ctx context.Context, path string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(int, int) {}
	}

	for _, m := range e.methods {
		text, pages, err := e.walk(ctx, m, path, progress)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("extract %s: %w", m.Name(), ctxErr)
			}
			e.logger.Warn("extraction method failed",
				zap.String("method", m.Name()),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return nil, ErrNoText
		}
		return &Result{
			Text:      text,
			PageCount: pages,
			WordCount: CountWords(text),
			Method:    m.Name(),
		}, nil
	}
	return nil, ErrNoText
}

func (e *Extractor) walk(ctx context.Context, m Method, path string, progress ProgressFunc) (string, int, error) {
	doc, err := m.Open(ctx, path)
	if err != nil {
		return "", 0, err
	}
	defer doc.Close()

	total := doc.NumPages()
	if total < 1 {
		return "", 0, errors.New("document has no pages")
	}

	var b strings.Builder
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		progress(n, total)

		pageText, err := doc.PageText(ctx, n)
		if err != nil {
			return "", 0, err
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
		if err := e.pause(ctx); err != nil {
			return "", 0, err
		}
	}
	return b.String(), total, nil
}

func (e *Extractor) pause(ctx context.Context) error {
	if e.pageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.pageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
