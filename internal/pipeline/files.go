package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docuflow/document-analyzer/internal/ai"
	"github.com/docuflow/document-analyzer/internal/common"
	"github.com/docuflow/document-analyzer/internal/repository"
	"github.com/docuflow/document-analyzer/internal/storage"
	"github.com/docuflow/document-analyzer/internal/tabular"
)

const (
	filesPrefix = "uploads"

	// Shown instead of the model summary when the inference call fails;
	// a broken AI backend must not block an otherwise valid upload.
	validationSummaryFallback = "AI insights unavailable at the moment; review the validation findings directly."

	validationSummaryMaxLength = 120
	validationSampleRows       = 3
)

// FileService handles tabular (CSV) uploads: parse, validate, summarize
// the validation report with the text model and persist file plus rows.
type FileService struct {
	logger    *slog.Logger
	generator ai.TextGenerator
	storage   storage.ObjectStorage
	files     repository.FileRepository
	events    repository.EventRepository
}

func NewFileService(
	logger *slog.Logger,
	generator ai.TextGenerator,
	store storage.ObjectStorage,
	files repository.FileRepository,
	events repository.EventRepository,
) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		logger:    logger,
		generator: generator,
		storage:   store,
		files:     files,
		events:    events,
	}
}

// UploadResult reports a stored upload together with its validation report.
type UploadResult struct {
	File     *repository.UploadedFile
	Findings []tabular.Finding
	Summary  string
}

// ValidationError carries the findings of a rejected upload so the HTTP
// layer can return them in the error body.
type ValidationError struct {
	Findings []tabular.Finding
}

func (e *ValidationError) Error() string {
	return "file failed validation"
}

func (e *ValidationError) Unwrap() error {
	return common.ErrInvalidInput
}

// UploadCSV validates and persists one CSV upload. Unlike document
// analysis, a storage failure here is fatal: the row data is only useful
// with the original file retrievable next to it.
func (s *FileService) UploadCSV(ctx context.Context, filename string, content []byte) (*UploadResult, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file content", common.ErrInvalidInput)
	}

	storageKey, err := s.storage.Upload(ctx, content, filename, filesPrefix)
	if err != nil {
		return nil, err
	}

	rows, err := tabular.ParseCSV(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	findings := tabular.Validate(rows)
	for _, f := range findings {
		if f.Status == tabular.StatusError {
			s.logger.Warn("files.validation.rejected", "filename", filename, "check", f.Check, "details", f.Details)
			return nil, &ValidationError{Findings: findings}
		}
	}

	summary := s.summarizeFindings(ctx, findings, rows)

	serialized := make([][]byte, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal row %d: %v", common.ErrInternal, i+1, err)
		}
		serialized[i] = data
	}

	file, err := s.files.SaveFile(ctx, &repository.SaveFileRequest{
		Filename:   filename,
		StorageKey: storageKey,
		Rows:       serialized,
		Summary:    &summary,
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, filename, file.ID, len(rows))
	s.logger.Info("files.upload.ok", "filename", filename, "file_id", file.ID, "rows", len(rows))
	return &UploadResult{File: file, Findings: findings, Summary: summary}, nil
}

// summarizeFindings asks the text model for a short data-quality summary,
// prompting with the findings and a few sample rows. Any failure falls
// back to the fixed placeholder.
func (s *FileService) summarizeFindings(ctx context.Context, findings []tabular.Finding, rows []tabular.Row) string {
	if s.generator == nil {
		return validationSummaryFallback
	}
	prompt := buildValidationPrompt(findings, rows)
	summary, err := s.generator.Generate(ctx, prompt, validationSummaryMaxLength)
	if err != nil {
		s.logger.Warn("files.summary.fallback", "error", err)
		return validationSummaryFallback
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return validationSummaryFallback
	}
	return summary
}

func buildValidationPrompt(findings []tabular.Finding, rows []tabular.Row) string {
	sample := rows
	if len(sample) > validationSampleRows {
		sample = sample[:validationSampleRows]
	}
	findingsJSON, _ := json.Marshal(findings)
	sampleJSON, _ := json.Marshal(sample)
	return fmt.Sprintf(
		"You are a data quality analyst. Summarize the state of the file and suggest one concrete action in at most 80 words.\n\nValidations: %s\nSample: %s",
		findingsJSON, sampleJSON,
	)
}

func (s *FileService) recordEvent(ctx context.Context, filename string, fileID int64, rowCount int) {
	if s.events == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"file_id": fileID, "rows": rowCount})
	if err := s.events.Record(ctx, "file_validated", fmt.Sprintf("validated and stored %s", filename), meta); err != nil {
		s.logger.Warn("files.event.failed", "filename", filename, "error", err)
	}
}
