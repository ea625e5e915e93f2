// Package export renders stored analyses into downloadable workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docuflow/document-analyzer/internal/repository"
)

// Service is a tiny façade over the analysis repository that produces XLSX
// bytes for history exports.
type Service struct {
	repo   repository.AnalysisRepository
	logger *slog.Logger
}

func NewService(repo repository.AnalysisRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportHistoryXLSX returns an XLSX workbook (as bytes) of the analyses in
// the given window. Bounds pass through to the repository untouched; the
// HTTP layer owns window normalization so listing and export agree.
func (s *Service) ExportHistoryXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.ListAnalyses(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Analyses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Analyzed At",
		"Filename",
		"Document Type",
		"Summary",
		"Sentiment",
		"Storage Key",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format("2006-01-02 15:04"))
		write(2, r.Filename)
		write(3, r.DocumentType)
		if r.Summary != nil {
			write(4, truncate(*r.Summary, 140))
		} else {
			write(4, "")
		}
		if r.Sentiment != nil {
			write(5, *r.Sentiment)
		} else {
			write(5, "")
		}
		if r.StorageKey != nil {
			write(6, *r.StorageKey)
		} else {
			write(6, "")
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 18) // date
	_ = f.SetColWidth(sheet, "B", "B", 32) // filename
	_ = f.SetColWidth(sheet, "C", "C", 16) // type
	_ = f.SetColWidth(sheet, "D", "D", 48) // summary
	_ = f.SetColWidth(sheet, "E", "E", 12) // sentiment
	_ = f.SetColWidth(sheet, "F", "F", 60) // key

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
// Counting runes keeps multibyte text valid after the cut.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return string(runes[:1])
	}
	return string(runes[:n-1]) + "…"
}
