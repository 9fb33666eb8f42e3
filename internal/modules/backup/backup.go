package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdfsummarizer/core/internal/models"
	"go.uber.org/zap"
)

const (
	defaultPathTemplate = "{Y}/{m}/{filename}"
	archiveEntry        = "summary_history.json"
	zipContentType      = "application/zip"
)

// Source lists the records to snapshot.
type Source interface {
	All(ctx context.Context) ([]models.SummaryRecord, error)
}

// Uploader stores one object.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// Service builds a ZIP snapshot of the history table and uploads it.
type Service struct {
	source   Source
	uploader Uploader
	prefix   string
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(source Source, uploader Uploader, prefix string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		uploader: uploader,
		prefix:   strings.Trim(prefix, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// Run uploads one snapshot and returns its object key.
func (s *Service) Run(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", errors.New("backup uploader is not configured")
	}
	records, err := s.source.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	archive, err := createArchive(records)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	filename := fmt.Sprintf("backup-%s.zip", now.Format("2006-01-02T15-04-05"))
	key := renderObjectKey(s.prefix, filename, now)
	if err := s.uploader.Upload(ctx, key, archive, zipContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Info("history backup uploaded",
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(archive)),
	)
	return key, nil
}

func createArchive(records []models.SummaryRecord) ([]byte, error) {
	if records == nil {
		records = []models.SummaryRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	f, err := w.Create(archiveEntry)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderObjectKey expands {Y} {m} {d} and {filename} under prefix.
func renderObjectKey(prefix, filename string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{filename}", filename,
	)
	key := replacer.Replace(defaultPathTemplate)
	if prefix != "" {
		key = prefix + "/" + key
	}
	key = strings.ReplaceAll(key, "\\", "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return strings.TrimPrefix(key, "/")
}
