// Package extract turns uploaded file bytes into plain text. PDFs are
// parsed locally; images go through a text-recognition service with a
// lossy byte-decode fallback so the pipeline always completes.
package extract

import "context"

// TextExtractor is stage 1 of the analysis pipeline: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, content []byte) (Result, error)
}

// TextRecognition detects text lines in image bytes. Implementations wrap a
// remote OCR service; failures are recoverable (the extractor falls back to
// raw decoding).
type TextRecognition interface {
	Detect(ctx context.Context, content []byte) ([]string, error)
}

// Result carries extracted text plus how it was obtained.
type Result struct {
	Text       string
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "recognition" | "raw-decode"
	Warnings   []string
}
