package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdfsummarizer/core/internal/models"
	"github.com/pdfsummarizer/core/internal/modules/extract"
	"github.com/pdfsummarizer/core/internal/modules/gateway"
	"github.com/pdfsummarizer/core/internal/modules/summarizer"
	"go.uber.org/zap"
)

type Extractor interface {
	Extract(ctx context.Context, path string, progress extract.ProgressFunc) (*extract.Result, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string, style summarizer.Style) (string, error)
}

type Store interface {
	Create(ctx context.Context, filename, summaryText, style string, pageCount, wordCount int) (*models.SummaryRecord, error)
}

// Notifier delivers progress events to the sockets subscribed to topic.
type Notifier interface {
	Notify(topic, event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, interface{}) {}

const (
	statusExtracting = "Extracting text from PDF..."
	statusGenerating = "Generating AI summary..."
	statusComplete   = "Summary generated successfully!"
)

// Job is one saved upload waiting to be processed.
type Job struct {
	Path      string
	Filename  string
	Style     summarizer.Style
	Topic     string
	RequestID string
}

// Outcome is the success body of POST /summarize.
type Outcome struct {
	Success     bool   `json:"success"`
	Summary     string `json:"summary"`
	Filename    string `json:"filename"`
	PageCount   int    `json:"page_count"`
	WordCount   int    `json:"word_count"`
	SummaryType string `json:"summary_type"`
	HistoryID   uint   `json:"history_id"`
}

// Service runs extract, truncate, summarize and persist for a saved upload.
type Service struct {
	extractor     Extractor
	summarizer    Summarizer
	store         Store
	notifier      Notifier
	maxTextLength int
	logger        *zap.Logger
}

func NewService(extractor Extractor, sum Summarizer, store Store, notifier Notifier, maxTextLength int, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor:     extractor,
		summarizer:    sum,
		store:         store,
		notifier:      notifier,
		maxTextLength: maxTextLength,
		logger:        logger,
	}
}

// Process runs the job. Nothing is persisted unless a summary was produced. Failures are
// reported to the job's topic as process_error before being returned.
func (s *Service) Process(ctx context.Context, job Job) (*Outcome, error) {
	out, err := s.process(ctx, job)
	if err != nil {
		s.status(job.Topic, gateway.EventProcessError, failureStatus(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) process(ctx context.Context, job Job) (*Outcome, error) {
	s.status(job.Topic, gateway.EventProcessStatus, statusExtracting)
	res, err := s.extractor.Extract(ctx, job.Path, func(current, total int) {
		s.notifier.Notify(job.Topic, gateway.EventExtractionProgress, map[string]interface{}{
			"current": current,
			"total":   total,
			"status":  fmt.Sprintf("Extracting page %d of %d", current, total),
		})
	})
	if err != nil {
		return nil, err
	}

	text, truncated := truncateRunes(res.Text, s.maxTextLength)
	if truncated {
		s.status(job.Topic, gateway.EventProcessStatus, fmt.Sprintf("Text truncated to %d characters", s.maxTextLength))
	}

	s.status(job.Topic, gateway.EventProcessStatus, statusGenerating)
	summary, err := s.summarizer.Summarize(ctx, text, job.Style)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Create(ctx, job.Filename, summary, string(job.Style), res.PageCount, res.WordCount)
	if err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	s.notifier.Notify(job.Topic, gateway.EventProcessComplete, map[string]interface{}{
		"status":     statusComplete,
		"history_id": rec.ID,
	})
	s.logger.Info("summary stored",
		zap.String("request_id", job.RequestID),
		zap.Uint("history_id", rec.ID),
		zap.String("filename", job.Filename),
		zap.Int("pages", res.PageCount),
		zap.Int("words", res.WordCount),
		zap.String("method", res.Method),
		zap.Bool("truncated", truncated),
	)

	return &Outcome{
		Success:     true,
		Summary:     summary,
		Filename:    job.Filename,
		PageCount:   res.PageCount,
		WordCount:   res.WordCount,
		SummaryType: string(job.Style),
		HistoryID:   rec.ID,
	}, nil
}

func (s *Service) status(topic, event, status string) {
	s.notifier.Notify(topic, event, map[string]string{"status": status})
}

// truncateRunes cuts text to at most limit characters.
func truncateRunes(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}

func failureStatus(err error) string {
	switch {
	case isNoText(err):
		return msgNoText
	case isSummarizerError(err):
		return "Summarization failed"
	default:
		return "Processing failed"
	}
}

func hasAllowedExtension(filename string, allowed []string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
