package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/docuflow/document-analyzer/internal/repository"
)

type fakeAnalysisRepo struct {
	recs    []*repository.AnalysisRecord
	gotFrom *time.Time
	gotTo   *time.Time
}

func (f *fakeAnalysisRepo) SaveAnalysis(context.Context, *repository.SaveAnalysisRequest) (*repository.AnalysisRecord, error) {
	return nil, nil
}

func (f *fakeAnalysisRepo) ListAnalyses(_ context.Context, from, to *time.Time) ([]*repository.AnalysisRecord, error) {
	f.gotFrom = from
	f.gotTo = to
	return f.recs, nil
}

func TestExportHistoryXLSX(t *testing.T) {
	summary := "Invoice with estimated total 150"
	sentiment := "positive"
	key := "documents/abc/f.pdf"
	repo := &fakeAnalysisRepo{recs: []*repository.AnalysisRecord{{
		ID:           1,
		Filename:     "f.pdf",
		DocumentType: "FACTURA",
		StorageKey:   &key,
		Payload:      []byte(`{}`),
		Summary:      &summary,
		Sentiment:    &sentiment,
		CreatedAt:    time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC),
	}}}

	data, err := NewService(repo, nil).ExportHistoryXLSX(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ExportHistoryXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Analyses")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "Analyzed At" || rows[0][1] != "Filename" {
		t.Errorf("header = %v", rows[0])
	}
	got := rows[1]
	if got[0] != "2026-03-10 14:30" || got[1] != "f.pdf" || got[2] != "FACTURA" {
		t.Errorf("row = %v", got)
	}
	if got[3] != summary || got[4] != sentiment || got[5] != key {
		t.Errorf("row = %v", got)
	}
}

// The window passes through to the repository untouched; inclusivity is
// decided once at the HTTP boundary.
func TestExportHistoryXLSXWindowPassThrough(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)

	if _, err := NewService(repo, nil).ExportHistoryXLSX(context.Background(), &from, &to); err != nil {
		t.Fatalf("ExportHistoryXLSX: %v", err)
	}
	if repo.gotFrom == nil || !repo.gotFrom.Equal(from) {
		t.Errorf("from = %v, want %v", repo.gotFrom, from)
	}
	if repo.gotTo == nil || !repo.gotTo.Equal(to) {
		t.Errorf("to = %v, want %v", repo.gotTo, to)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	long := strings.Repeat("ñá", 100)
	got := truncate(long, 140)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if n := len([]rune(got)); n != 140 {
		t.Errorf("rune count = %d, want 140", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("missing ellipsis marker")
	}
}

func TestTruncateShortStringsUntouched(t *testing.T) {
	for _, s := range []string{"", "corto", strings.Repeat("ñ", 140)} {
		if got := truncate(s, 140); got != s {
			t.Errorf("truncate(%q) = %q, want unchanged", s, got)
		}
	}
}
