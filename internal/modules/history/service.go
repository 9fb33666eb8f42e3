package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdfsummarizer/core/internal/models"
	"gorm.io/gorm"
)

// MaxListLimit caps List.
const MaxListLimit = 50

var ErrNotFound = errors.New("summary not found")

// Stats aggregates the whole history.
type Stats struct {
	TotalSummaries      int64   `json:"total_summaries"`
	AvgRating           float64 `json:"avg_rating"`
	TotalPagesProcessed int64   `json:"total_pages_processed"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Create inserts a record with a UTC timestamp and no rating.
func (s *Service) Create(ctx context.Context, filename, summaryText, style string, pageCount, wordCount int) (*models.SummaryRecord, error) {
	rec := &models.SummaryRecord{
		Filename:    filename,
		SummaryText: summaryText,
		SummaryType: style,
		PageCount:   pageCount,
		WordCount:   wordCount,
		Rating:      0,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. limit outside (0, MaxListLimit] means MaxListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]models.SummaryRecord, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	items := make([]models.SummaryRecord, 0, limit)
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.SummaryRecord, error) {
	var rec models.SummaryRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ClampRating maps any value into [1,5].
func ClampRating(v int) int {
	return max(1, min(5, v))
}

// Rate stores the clamped rating and returns it.
func (s *Service) Rate(ctx context.Context, id uint, value int) (int, error) {
	rating := ClampRating(value)
	res := s.db.WithContext(ctx).
		Model(&models.SummaryRecord{}).
		Where("id = ?", id).
		Update("rating", rating)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// an unchanged rating also reports zero rows on some drivers
		if _, err := s.Get(ctx, id); err != nil {
			return 0, err
		}
	}
	return rating, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.SummaryRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns totals; the average counts unrated records as 0.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var row struct {
		Total      int64
		AvgRating  float64
		TotalPages int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.SummaryRecord{}).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS avg_rating, COALESCE(SUM(page_count), 0) AS total_pages").
		Scan(&row).Error
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalSummaries:      row.Total,
		AvgRating:           math.Round(row.AvgRating*100) / 100,
		TotalPagesProcessed: row.TotalPages,
	}, nil
}

// All returns every record, newest first.
func (s *Service) All(ctx context.Context) ([]models.SummaryRecord, error) {
	var items []models.SummaryRecord
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&items).Error
	return items, err
}
