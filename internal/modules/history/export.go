package history

import (
	"context"
	"fmt"

	"github.com/pdfsummarizer/core/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "History"

var exportHeaders = []string{"ID", "Created At (UTC)", "Filename", "Style", "Pages", "Words", "Rating", "Summary"}

// Export returns the whole history as an XLSX workbook.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return buildWorkbook(items)
}

func buildWorkbook(items []models.SummaryRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := setRow(f, exportSheet, 1, header); err != nil {
		return nil, err
	}

	for i, rec := range items {
		values := []any{
			rec.ID,
			rec.CreatedAt.UTC().Format(models.TimestampLayout),
			rec.Filename,
			rec.SummaryType,
			rec.PageCount,
			rec.WordCount,
			rec.Rating,
			rec.SummaryText,
		}
		if err := setRow(f, exportSheet, i+2, values); err != nil {
			return nil, err
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 8},
		{"B", "B", 20},
		{"C", "C", 32},
		{"D", "G", 10},
		{"H", "H", 80},
	}
	for _, w := range widths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("xlsx column width %s:%s: %w", w.from, w.to, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}
