package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuflow/document-analyzer/internal/common"
)

// Config holds connection-pool settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open creates a pgx pool for the analysis database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "document-analyzer"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents_analysis (
	id           BIGSERIAL PRIMARY KEY,
	filename     VARCHAR(255) NOT NULL,
	document_type VARCHAR(32) NOT NULL,
	storage_key  VARCHAR(512),
	payload      TEXT NOT NULL,
	summary      TEXT,
	sentiment    VARCHAR(16),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS uploaded_files (
	id           BIGSERIAL PRIMARY KEY,
	filename     VARCHAR(255) NOT NULL,
	storage_key  VARCHAR(512) NOT NULL,
	row_count    INTEGER NOT NULL,
	summary      TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS uploaded_rows (
	id        BIGSERIAL PRIMARY KEY,
	file_id   BIGINT NOT NULL REFERENCES uploaded_files(id) ON DELETE CASCADE,
	row_index INTEGER NOT NULL,
	data      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS event_logs (
	id          BIGSERIAL PRIMARY KEY,
	event_type  VARCHAR(64) NOT NULL,
	description TEXT NOT NULL,
	metadata    TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, postgresSchema)
	return common.WrapError(err, "ensure schema")
}

// PostgresRepository implements the repository contracts on a pgx pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{pool: pool, logger: logger}
}

func (r *PostgresRepository) SaveAnalysis(ctx context.Context, req *SaveAnalysisRequest) (*AnalysisRecord, error) {
	rec := &AnalysisRecord{
		Filename:     req.Filename,
		DocumentType: req.DocumentType,
		StorageKey:   req.StorageKey,
		Payload:      req.Payload,
		Summary:      req.Summary,
		Sentiment:    req.Sentiment,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO documents_analysis (filename, document_type, storage_key, payload, summary, sentiment)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		req.Filename, req.DocumentType, req.StorageKey, string(req.Payload), req.Summary, req.Sentiment,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		r.logger.Error("failed to save analysis", "filename", req.Filename, "error", err)
		return nil, fmt.Errorf("%w: save analysis: %v", common.ErrDatabase, err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListAnalyses(ctx context.Context, from, to *time.Time) ([]*AnalysisRecord, error) {
	q := `SELECT id, filename, document_type, storage_key, payload, summary, sentiment, created_at
	      FROM documents_analysis WHERE 1=1`
	args := []any{}
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
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

func (r *PostgresRepository) SaveFile(ctx context.Context, req *SaveFileRequest) (*UploadedFile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	file := &UploadedFile{
		Filename:   req.Filename,
		StorageKey: req.StorageKey,
		RowCount:   len(req.Rows),
		Summary:    req.Summary,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO uploaded_files (filename, storage_key, row_count, summary)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		req.Filename, req.StorageKey, len(req.Rows), req.Summary,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: save file: %v", common.ErrDatabase, err)
	}

	for idx, data := range req.Rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO uploaded_rows (file_id, row_index, data) VALUES ($1, $2, $3)`,
			file.ID, idx+1, string(data),
		); err != nil {
			return nil, fmt.Errorf("%w: save row %d: %v", common.ErrDatabase, idx+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	return file, nil
}

func (r *PostgresRepository) Record(ctx context.Context, eventType, description string, metadata []byte) error {
	var meta *string
	if len(metadata) > 0 {
		s := string(metadata)
		meta = &s
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_logs (event_type, description, metadata) VALUES ($1, $2, $3)`,
		eventType, description, meta,
	)
	if err != nil {
		return fmt.Errorf("%w: record event: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context, eventType string, from, to *time.Time) ([]*Event, error) {
	q := `SELECT id, event_type, description, metadata, created_at FROM event_logs WHERE 1=1`
	args := []any{}
	if eventType != "" {
		args = append(args, eventType)
		q += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
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
