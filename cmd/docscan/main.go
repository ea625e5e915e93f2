// docscan analyzes local documents without the HTTP service: results land
// in a SQLite database and the structured payload prints to stdout. Image
// OCR and object storage are disabled; images fall back to raw decoding.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/docuflow/document-analyzer/internal/analysis"
	"github.com/docuflow/document-analyzer/internal/extract"
	"github.com/docuflow/document-analyzer/internal/pipeline"
	"github.com/docuflow/document-analyzer/internal/repository"
)

func main() {
	dbPath := flag.String("db", "docscan.db", "path to the local analysis database")
	quiet := flag.Bool("quiet", false, "suppress progress logs")
	flag.Parse()

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: docscan [-db path] [-quiet] <file>...")
		os.Exit(2)
	}

	repo, err := repository.OpenSQLite(*dbPath, logger)
	if err != nil {
		logger.Error("open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	extractor := extract.NewExtractor(nil, logger)
	information := analysis.NewInformationAnalyzer(nil, nil, logger)
	analyzer := pipeline.NewAnalyzer(logger, extractor, information, nil, repo, repo)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failed := 0
	for _, path := range flag.Args() {
		if err := analyzeOne(ctx, analyzer, path, logger); err != nil {
			logger.Error("analysis failed", "file", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func analyzeOne(ctx context.Context, analyzer *pipeline.Analyzer, path string, logger *slog.Logger) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := analyzer.AnalyzeDocument(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}
	logger.Info("analysis OK",
		"file", path,
		"document_id", result.Record.ID,
		"document_type", result.Record.DocumentType,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	out, err := json.MarshalIndent(result.Payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
