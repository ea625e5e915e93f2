package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docuflow/document-analyzer/internal/analysis"
	"github.com/docuflow/document-analyzer/internal/common"
	"github.com/docuflow/document-analyzer/internal/extract"
	"github.com/docuflow/document-analyzer/internal/repository"
	"github.com/docuflow/document-analyzer/internal/storage"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (extract.Result, error) {
	if f.err != nil {
		return extract.Result{}, f.err
	}
	return extract.Result{Text: f.text, Method: "fake"}, nil
}

type fakeStorage struct {
	key string
	err error
}

func (f *fakeStorage) Upload(_ context.Context, _ []byte, _, _ string) (string, error) {
	return f.key, f.err
}

type fakeAnalysisRepo struct {
	saved *repository.SaveAnalysisRequest
	err   error
}

func (f *fakeAnalysisRepo) SaveAnalysis(_ context.Context, req *repository.SaveAnalysisRequest) (*repository.AnalysisRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = req
	return &repository.AnalysisRecord{
		ID:           1,
		Filename:     req.Filename,
		DocumentType: req.DocumentType,
		StorageKey:   req.StorageKey,
		Payload:      req.Payload,
		Summary:      req.Summary,
		Sentiment:    req.Sentiment,
		CreatedAt:    time.Now(),
	}, nil
}

func (f *fakeAnalysisRepo) ListAnalyses(context.Context, *time.Time, *time.Time) ([]*repository.AnalysisRecord, error) {
	return nil, nil
}

type fakeEvents struct {
	types []string
	err   error
}

func (f *fakeEvents) Record(_ context.Context, eventType, _ string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	f.types = append(f.types, eventType)
	return nil
}

func (f *fakeEvents) ListEvents(context.Context, string, *time.Time, *time.Time) ([]*repository.Event, error) {
	return nil, nil
}

type fixedGenerator struct{ out string }

func (g fixedGenerator) Generate(context.Context, string, int) (string, error) { return g.out, nil }

type fixedClassifier struct{ label string }

func (c fixedClassifier) Classify(context.Context, string) (string, error) { return c.label, nil }

const invoiceText = "Factura Número de factura: FA-1 Subtotal: $100 Total de la factura: $150.00"

func newTestAnalyzer(ext *fakeExtractor, store *fakeStorage, repo *fakeAnalysisRepo, events *fakeEvents) *Analyzer {
	info := analysis.NewInformationAnalyzer(fixedGenerator{out: "summary"}, fixedClassifier{label: "POSITIVE"}, nil)
	// Assign through locals so a nil *fake stays a nil interface.
	var s storage.ObjectStorage
	if store != nil {
		s = store
	}
	var ev repository.EventRepository
	if events != nil {
		ev = events
	}
	return NewAnalyzer(nil, ext, info, s, repo, ev)
}

func TestAnalyzeDocumentInvoice(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	events := &fakeEvents{}
	a := newTestAnalyzer(&fakeExtractor{text: invoiceText}, &fakeStorage{key: "documents/abc/f.pdf"}, repo, events)

	res, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if res.Record.DocumentType != "FACTURA" {
		t.Errorf("type = %q, want FACTURA", res.Record.DocumentType)
	}
	if res.Record.Summary == nil || *res.Record.Summary != "Invoice with estimated total 150" {
		t.Errorf("summary = %v, want invoice total summary", res.Record.Summary)
	}
	if res.Record.Sentiment != nil {
		t.Errorf("sentiment = %v, want nil for invoices", res.Record.Sentiment)
	}
	if repo.saved == nil || repo.saved.StorageKey == nil || *repo.saved.StorageKey != "documents/abc/f.pdf" {
		t.Errorf("saved storage key = %+v", repo.saved)
	}
	inv, ok := res.Payload.Invoice()
	if !ok {
		t.Fatal("payload is not the invoice variant")
	}
	if inv.Total == nil || *inv.Total != 150.0 {
		t.Errorf("total = %v, want 150.0", inv.Total)
	}
	if len(events.types) != 1 || events.types[0] != "document_analyzed" {
		t.Errorf("events = %v", events.types)
	}
}

func TestAnalyzeDocumentInformation(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	a := newTestAnalyzer(&fakeExtractor{text: "meeting notes for next week"}, &fakeStorage{key: "k"}, repo, &fakeEvents{})

	res, err := a.AnalyzeDocument(context.Background(), "notes.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if res.Record.DocumentType != "INFORMACION" {
		t.Errorf("type = %q, want INFORMACION", res.Record.DocumentType)
	}
	if res.Record.Summary == nil || *res.Record.Summary != "summary" {
		t.Errorf("summary = %v", res.Record.Summary)
	}
	if res.Record.Sentiment == nil || *res.Record.Sentiment != "positive" {
		t.Errorf("sentiment = %v, want positive", res.Record.Sentiment)
	}
	info, ok := res.Payload.Information()
	if !ok {
		t.Fatal("payload is not the information variant")
	}
	if info.Description != "meeting notes for next week" {
		t.Errorf("description = %q", info.Description)
	}
}

func TestAnalyzeDocumentEmptyContent(t *testing.T) {
	a := newTestAnalyzer(&fakeExtractor{}, nil, &fakeAnalysisRepo{}, nil)
	_, err := a.AnalyzeDocument(context.Background(), "f.pdf", nil)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

// A failed upload degrades to an absent storage key; the analysis persists.
func TestAnalyzeDocumentStorageFailureTolerated(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	store := &fakeStorage{err: errors.New("bucket down")}
	a := newTestAnalyzer(&fakeExtractor{text: invoiceText}, store, repo, &fakeEvents{})

	res, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if res.Record.StorageKey != nil {
		t.Errorf("storage key = %v, want nil", *res.Record.StorageKey)
	}
}

func TestAnalyzeDocumentNilStorageAndEvents(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	a := newTestAnalyzer(&fakeExtractor{text: invoiceText}, nil, repo, nil)

	res, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if res.Record.StorageKey != nil {
		t.Error("offline analyzer produced a storage key")
	}
}

func TestAnalyzeDocumentRepoFailure(t *testing.T) {
	repo := &fakeAnalysisRepo{err: common.WrapError(errors.New("down"), "save")}
	a := newTestAnalyzer(&fakeExtractor{text: invoiceText}, nil, repo, nil)

	if _, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("x")); err == nil {
		t.Error("expected repository error to propagate")
	}
}

func TestAnalyzeDocumentEventFailureTolerated(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	events := &fakeEvents{err: errors.New("event store down")}
	a := newTestAnalyzer(&fakeExtractor{text: invoiceText}, nil, repo, events)

	if _, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("x")); err != nil {
		t.Errorf("AnalyzeDocument: %v", err)
	}
}

func TestAnalyzeDocumentSanitizesBeforeClassifying(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	raw := "  Factura\x00con   IVA  "
	a := newTestAnalyzer(&fakeExtractor{text: raw}, nil, repo, nil)

	res, err := a.AnalyzeDocument(context.Background(), "f.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if res.Record.DocumentType != "FACTURA" {
		t.Errorf("type = %q, want FACTURA", res.Record.DocumentType)
	}
	if got := res.Payload.RawText(); strings.Contains(got, "\x00") || strings.Contains(got, "  ") {
		t.Errorf("raw text not sanitized: %q", got)
	}
}
