// Package pipeline sequences the analysis stages and owns every side effect:
// object-storage uploads, repository writes and the audit trail. All parsing
// and classification substeps are pure and tested on their own.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docuflow/document-analyzer/constants"
	"github.com/docuflow/document-analyzer/internal/analysis"
	"github.com/docuflow/document-analyzer/internal/common"
	"github.com/docuflow/document-analyzer/internal/extract"
	"github.com/docuflow/document-analyzer/internal/repository"
	"github.com/docuflow/document-analyzer/internal/storage"
)

const storagePrefix = "documents"

// Analyzer runs the full document pipeline: extract -> sanitize -> classify
// -> type-specific parse -> upload -> persist.
type Analyzer struct {
	logger      *slog.Logger
	extractor   extract.TextExtractor
	information *analysis.InformationAnalyzer
	storage     storage.ObjectStorage // nil disables uploads (offline mode)
	repo        repository.AnalysisRepository
	events      repository.EventRepository // nil disables the audit trail
}

func NewAnalyzer(
	logger *slog.Logger,
	extractor extract.TextExtractor,
	information *analysis.InformationAnalyzer,
	store storage.ObjectStorage,
	repo repository.AnalysisRepository,
	events repository.EventRepository,
) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		logger:      logger,
		extractor:   extractor,
		information: information,
		storage:     store,
		repo:        repo,
		events:      events,
	}
}

// Result pairs the persisted record with the structured payload.
type Result struct {
	Record  *repository.AnalysisRecord
	Payload analysis.Payload
}

// AnalyzeDocument classifies, extracts and persists one uploaded document.
// A storage failure degrades to an absent storage key; an AI-insight
// failure on the information path propagates as insight-unavailable.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, filename string, content []byte) (*Result, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file content", common.ErrInvalidInput)
	}

	extracted, err := a.extractor.Extract(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	text := analysis.Sanitize(extracted.Text)
	docType := analysis.Classify(text)
	a.logger.Info("analysis.classified",
		"filename", filename,
		"document_type", docType,
		"method", extracted.Method,
		"text_len", len(text),
	)

	var (
		payload   analysis.Payload
		summary   *string
		sentiment *string
	)
	switch docType {
	case constants.DocumentTypeInvoice:
		inv := analysis.ParseInvoice(text)
		payload = analysis.NewInvoicePayload(inv, text)
		if inv.Total != nil {
			s := fmt.Sprintf("Invoice with estimated total %v", *inv.Total)
			summary = &s
		}
	default:
		info, err := a.information.Analyze(ctx, text)
		if err != nil {
			return nil, err
		}
		payload = analysis.NewInformationPayload(info, text)
		summary = &info.Summary
		sentiment = &info.Sentiment
	}

	storageKey := a.uploadTolerant(ctx, filename, content)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", common.ErrInternal, err)
	}
	if err := analysis.ValidatePayloadJSON(payloadJSON); err != nil {
		return nil, fmt.Errorf("%w: payload schema: %v", common.ErrInternal, err)
	}

	rec, err := a.repo.SaveAnalysis(ctx, &repository.SaveAnalysisRequest{
		Filename:     filename,
		DocumentType: string(docType),
		StorageKey:   storageKey,
		Payload:      payloadJSON,
		Summary:      summary,
		Sentiment:    sentiment,
	})
	if err != nil {
		return nil, err
	}

	a.recordEvent(ctx, "document_analyzed",
		fmt.Sprintf("analyzed %s as %s", filename, docType),
		map[string]any{"document_id": rec.ID, "storage_key": storageKey},
	)

	a.logger.Info("analysis.persisted",
		"filename", filename,
		"document_id", rec.ID,
		"document_type", docType,
		"has_storage_key", storageKey != nil,
	)
	return &Result{Record: rec, Payload: payload}, nil
}

// uploadTolerant stores the original bytes, returning nil on any failure:
// losing the object copy never fails the analysis.
func (a *Analyzer) uploadTolerant(ctx context.Context, filename string, content []byte) *string {
	if a.storage == nil {
		return nil
	}
	key, err := a.storage.Upload(ctx, content, filename, storagePrefix)
	if err != nil {
		a.logger.Warn("analysis.upload.failed", "filename", filename, "error", err)
		return nil
	}
	return &key
}

func (a *Analyzer) recordEvent(ctx context.Context, eventType, description string, metadata map[string]any) {
	if a.events == nil {
		return
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		meta = nil
	}
	if err := a.events.Record(ctx, eventType, description, meta); err != nil {
		a.logger.Warn("analysis.event.failed", "event_type", eventType, "error", err)
	}
}
