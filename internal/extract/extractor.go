package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docuflow/document-analyzer/constants"
)

// Extractor picks an extraction strategy from the file extension. A nil
// recognition client disables the OCR path; images then decode raw bytes.
type Extractor struct {
	recognition TextRecognition
	logger      *slog.Logger
}

func NewExtractor(recognition TextRecognition, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{recognition: recognition, logger: logger}
}

// Extract converts file bytes to text. Extraction never fails on degraded
// input: when the PDF parser or the recognition service errors out, the
// bytes are decoded lossily instead and a warning is recorded. Only an
// unsupported extension is an error.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return e.extractPDF(content), nil
	case constants.IMAGE:
		return e.extractImage(ctx, content), nil
	default:
		e.logger.Error("unsupported extraction extension", "extension", ext, "filename", filename)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

func (e *Extractor) extractPDF(content []byte) Result {
	text, err := pdfToText(content)
	if err != nil {
		e.logger.Warn("pdf parse failed; falling back to raw decode", "error", err)
		return Result{
			Text:       decodeRaw(content),
			SourceType: string(constants.PDF),
			Method:     "raw-decode",
			Warnings:   []string{err.Error()},
		}
	}
	return Result{Text: text, SourceType: string(constants.PDF), Method: "pdf-text"}
}

func (e *Extractor) extractImage(ctx context.Context, content []byte) Result {
	if e.recognition != nil {
		lines, err := e.recognition.Detect(ctx, content)
		if err == nil {
			return Result{
				Text:       strings.Join(lines, " "),
				SourceType: string(constants.IMAGE),
				Method:     "recognition",
			}
		}
		e.logger.Warn("recognition failed; falling back to raw decode", "error", err)
		return Result{
			Text:       decodeRaw(content),
			SourceType: string(constants.IMAGE),
			Method:     "raw-decode",
			Warnings:   []string{err.Error()},
		}
	}
	return Result{Text: decodeRaw(content), SourceType: string(constants.IMAGE), Method: "raw-decode"}
}

// decodeRaw interprets bytes as UTF-8, dropping invalid sequences. Lower
// quality than real extraction, but it keeps the pipeline moving.
func decodeRaw(content []byte) string {
	return strings.ToValidUTF8(string(content), "")
}
