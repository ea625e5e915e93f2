// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/document-analyzer/constants"
	"github.com/docuflow/document-analyzer/internal/common"
	"github.com/docuflow/document-analyzer/internal/export"
	"github.com/docuflow/document-analyzer/internal/pipeline"
	"github.com/docuflow/document-analyzer/internal/repository"
)

// maxUploadBytes caps multipart reads; large scans stay well under this.
const maxUploadBytes = 25 << 20

// Server wires the pipeline services to gin handlers.
type Server struct {
	logger   *slog.Logger
	analyzer *pipeline.Analyzer
	files    *pipeline.FileService
	history  repository.AnalysisRepository
	events   repository.EventRepository
	exporter *export.Service
}

func New(
	logger *slog.Logger,
	analyzer *pipeline.Analyzer,
	files *pipeline.FileService,
	history repository.AnalysisRepository,
	events repository.EventRepository,
	exporter *export.Service,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:   logger,
		analyzer: analyzer,
		files:    files,
		history:  history,
		events:   events,
		exporter: exporter,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxUploadBytes

	api := router.Group("/api")
	{
		api.POST("/documents/analyze", s.analyzeDocument)
		api.POST("/files/upload", s.uploadFile)
		api.GET("/history", s.listHistory)
		api.GET("/history/export", s.exportHistory)
		api.GET("/events", s.listEvents)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func (s *Server) analyzeDocument(c *gin.Context) {
	filename, content, ok := s.readUpload(c)
	if !ok {
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, allowed := constants.AllowedDocumentExtensions[ext]; !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file extension: " + ext})
		return
	}

	result, err := s.analyzer.AnalyzeDocument(c.Request.Context(), filename, content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            result.Record.ID,
		"filename":      result.Record.Filename,
		"document_type": result.Record.DocumentType,
		"storage_key":   result.Record.StorageKey,
		"summary":       result.Record.Summary,
		"sentiment":     result.Record.Sentiment,
		"created_at":    result.Record.CreatedAt,
		"analysis":      result.Payload,
	})
}

func (s *Server) uploadFile(c *gin.Context) {
	filename, content, ok := s.readUpload(c)
	if !ok {
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if constants.MapExtToFormat(ext) != constants.CSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file extension: " + ext})
		return
	}

	result, err := s.files.UploadCSV(c.Request.Context(), filename, content)
	if err != nil {
		var ve *pipeline.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"validations": ve.Findings})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":     result.File.ID,
		"storage_key": result.File.StorageKey,
		"stored_rows": result.File.RowCount,
		"uploaded_at": result.File.CreatedAt,
		"validations": result.Findings,
		"ai_summary":  result.Summary,
	})
}

func (s *Server) listHistory(c *gin.Context) {
	from, to, ok := s.dateWindow(c)
	if !ok {
		return
	}
	recs, err := s.history.ListAnalyses(c.Request.Context(), from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if recs == nil {
		recs = []*repository.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"analyses": recs, "count": len(recs)})
}

func (s *Server) exportHistory(c *gin.Context) {
	from, to, ok := s.dateWindow(c)
	if !ok {
		return
	}
	data, err := s.exporter.ExportHistoryXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analyses.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) listEvents(c *gin.Context) {
	from, to, ok := s.dateWindow(c)
	if !ok {
		return
	}
	events, err := s.events.ListEvents(c.Request.Context(), c.Query("type"), from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if events == nil {
		events = []*repository.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// readUpload pulls the "file" part out of a multipart form.
func (s *Server) readUpload(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return "", nil, false
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return "", nil, false
	}
	return filepath.Base(header.Filename), content, true
}

// dateWindow parses optional from/to query params (YYYY-MM-DD). Both bounds
// are inclusive: "to" is widened to the end of its day so history listing
// and export agree on which records a window covers.
func (s *Server) dateWindow(c *gin.Context) (*time.Time, *time.Time, bool) {
	parse := func(name string) (*time.Time, error) {
		v := c.Query(name)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	from, err := parse("from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return nil, nil, false
	}
	to, err := parse("to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return nil, nil, false
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Second)
		to = &end
	}
	return from, to, true
}

// writeError maps pipeline errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrStorage):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInsightUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error("server.request.failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
