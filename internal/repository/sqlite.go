package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docuflow/document-analyzer/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents_analysis (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	filename      TEXT NOT NULL,
	document_type TEXT NOT NULL,
	storage_key   TEXT,
	payload       TEXT NOT NULL,
	summary       TEXT,
	sentiment     TEXT,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS event_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type  TEXT NOT NULL,
	description TEXT NOT NULL,
	metadata    TEXT,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteRepository is the embedded AnalysisRepository used by the offline
// CLI. It shares the contract with PostgresRepository but keeps everything
// in a local file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and initializes) a local analysis database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ensure sqlite schema")
	}
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveAnalysis(ctx context.Context, req *SaveAnalysisRequest) (*AnalysisRecord, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO documents_analysis (filename, document_type, storage_key, payload, summary, sentiment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.Filename, req.DocumentType, req.StorageKey, string(req.Payload), req.Summary, req.Sentiment, now,
	)
	if err != nil {
		r.logger.Error("failed to save analysis", "filename", req.Filename, "error", err)
		return nil, fmt.Errorf("%w: save analysis: %v", common.ErrDatabase, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: last insert id: %v", common.ErrDatabase, err)
	}
	return &AnalysisRecord{
		ID:           id,
		Filename:     req.Filename,
		DocumentType: req.DocumentType,
		StorageKey:   req.StorageKey,
		Payload:      req.Payload,
		Summary:      req.Summary,
		Sentiment:    req.Sentiment,
		CreatedAt:    now,
	}, nil
}

func (r *SQLiteRepository) ListAnalyses(ctx context.Context, from, to *time.Time) ([]*AnalysisRecord, error) {
	q := `SELECT id, filename, document_type, storage_key, payload, summary, sentiment, created_at
	      FROM documents_analysis WHERE 1=1`
	args := []any{}
	if from != nil {
		q += " AND created_at >= ?"
		args = append(args, *from)
	}
	if to != nil {
		q += " AND created_at <= ?"
		args = append(args, *to)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list analyses: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*AnalysisRecord
	for rows.Next() {
		rec := &AnalysisRecord{}
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.DocumentType, &rec.StorageKey,
			&payload, &rec.Summary, &rec.Sentiment, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan analysis: %v", common.ErrDatabase, err)
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Record(ctx context.Context, eventType, description string, metadata []byte) error {
	var meta *string
	if len(metadata) > 0 {
		s := string(metadata)
		meta = &s
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_logs (event_type, description, metadata, created_at) VALUES (?, ?, ?, ?)`,
		eventType, description, meta, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: record event: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *SQLiteRepository) ListEvents(ctx context.Context, eventType string, from, to *time.Time) ([]*Event, error) {
	q := `SELECT id, event_type, description, metadata, created_at FROM event_logs WHERE 1=1`
	args := []any{}
	if eventType != "" {
		q += " AND event_type = ?"
		args = append(args, eventType)
	}
	if from != nil {
		q += " AND created_at >= ?"
		args = append(args, *from)
	}
	if to != nil {
		q += " AND created_at <= ?"
		args = append(args, *to)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		ev := &Event{}
		var meta *string
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.Description, &meta, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan event: %v", common.ErrDatabase, err)
		}
		if meta != nil {
			ev.Metadata = []byte(*meta)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
