// Package repository persists analysis results, uploaded tabular files and
// the audit event log. Postgres backs the service; SQLite backs the
// offline CLI. Both implement the same contracts.
package repository

import (
	"context"
	"time"
)

// AnalysisRecord is a persisted document analysis.
type AnalysisRecord struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	StorageKey   *string   `json:"storage_key,omitempty"`
	Payload      []byte    `json:"payload"`
	Summary      *string   `json:"summary,omitempty"`
	Sentiment    *string   `json:"sentiment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SaveAnalysisRequest wraps parameters for persisting an analysis.
type SaveAnalysisRequest struct {
	Filename     string
	DocumentType string
	StorageKey   *string
	Payload      []byte // serialized analysis.Payload
	Summary      *string
	Sentiment    *string
}

// AnalysisRepository stores and lists document analyses.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, req *SaveAnalysisRequest) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, from, to *time.Time) ([]*AnalysisRecord, error)
}

// UploadedFile is a persisted tabular upload with its row count and the
// AI validation summary.
type UploadedFile struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"storage_key"`
	RowCount   int       `json:"row_count"`
	Summary    *string   `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveFileRequest wraps parameters for persisting a tabular upload.
type SaveFileRequest struct {
	Filename   string
	StorageKey string
	Rows       [][]byte // serialized row objects, insertion order
	Summary    *string
}

// FileRepository stores tabular uploads and their rows.
type FileRepository interface {
	SaveFile(ctx context.Context, req *SaveFileRequest) (*UploadedFile, error)
}

// Event is one audit-trail entry.
type Event struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Metadata    []byte    `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventRepository records and lists audit events.
type EventRepository interface {
	Record(ctx context.Context, eventType, description string, metadata []byte) error
	ListEvents(ctx context.Context, eventType string, from, to *time.Time) ([]*Event, error)
}
