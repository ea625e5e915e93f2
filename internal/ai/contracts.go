// Package ai wraps the external text-generation and sentiment-classification
// capabilities behind small contracts so the analysis core can swap
// implementations (hosted inference API, fakes in tests).
package ai

import "context"

// TextGenerator produces text for a prompt, bounded by maxLength tokens.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxLength int) (string, error)
}

// SentimentClassifier returns the raw model label for a piece of text
// (e.g. "POSITIVE"); mapping to canonical sentiment happens in the caller.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
