package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docuflow/document-analyzer/internal/ai"
	"github.com/docuflow/document-analyzer/internal/analysis"
	"github.com/docuflow/document-analyzer/internal/common"
	"github.com/docuflow/document-analyzer/internal/export"
	"github.com/docuflow/document-analyzer/internal/extract"
	"github.com/docuflow/document-analyzer/internal/pipeline"
	"github.com/docuflow/document-analyzer/internal/repository"
	"github.com/docuflow/document-analyzer/internal/server"
	"github.com/docuflow/document-analyzer/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}
	repo := repository.NewPostgresRepository(pool, logger)

	store, err := storage.NewMinioStorage(cfg.Storage, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("bucket init failed", "error", err)
		os.Exit(1)
	}

	inference := ai.Shared(ai.Config{
		BaseURL:        cfg.AI.BaseURL,
		APIKey:         cfg.AI.APIKey,
		SummaryModel:   cfg.AI.SummaryModel,
		SentimentModel: cfg.AI.SentimentModel,
		Timeout:        cfg.AI.Timeout,
		Logger:         logger,
	})

	var recognition extract.TextRecognition
	if cfg.Extraction.VisionEndpoint != "" {
		recognition = extract.NewVisionClient(cfg.Extraction.VisionEndpoint, cfg.Extraction.VisionAPIKey, cfg.Extraction.Timeout)
	}

	extractor := extract.NewExtractor(recognition, logger)
	information := analysis.NewInformationAnalyzer(inference, inference, logger)
	analyzer := pipeline.NewAnalyzer(logger, extractor, information, store, repo, repo)
	files := pipeline.NewFileService(logger, inference, store, repo, repo)
	exporter := export.NewService(repo, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.New(logger, analyzer, files, repo, repo, exporter).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
