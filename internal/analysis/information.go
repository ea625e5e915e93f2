package analysis

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docuflow/document-analyzer/internal/ai"
)

// Canonical sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

const (
	descriptionLimit    = 400
	sentimentInputLimit = 512
	summaryMaxLength    = 80
)

// InformationData describes a non-invoice document: a short description, a
// generated summary and a sentiment label.
type InformationData struct {
	Description string `json:"description"`
	Summary     string `json:"summary"`
	Sentiment   string `json:"sentiment"`
}

// InformationAnalyzer produces insights for non-invoice text. Both external
// calls are blocking; failures surface as insight-unavailable errors.
type InformationAnalyzer struct {
	generator  ai.TextGenerator
	classifier ai.SentimentClassifier
	logger     *slog.Logger
}

func NewInformationAnalyzer(gen ai.TextGenerator, cls ai.SentimentClassifier, logger *slog.Logger) *InformationAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &InformationAnalyzer{generator: gen, classifier: cls, logger: logger}
}

// Analyze builds InformationData from sanitized text. An empty description
// short-circuits: no external call is made and the sentiment is neutral.
func (a *InformationAnalyzer) Analyze(ctx context.Context, text string) (InformationData, error) {
	description := truncateRunes(text, descriptionLimit)
	if description == "" {
		return InformationData{Sentiment: SentimentNeutral}, nil
	}
	if a.generator == nil || a.classifier == nil {
		// Offline mode keeps the description but skips model calls.
		return InformationData{Description: description, Sentiment: SentimentNeutral}, nil
	}

	summary, err := a.generator.Generate(ctx, description, summaryMaxLength)
	if err != nil {
		a.logger.Error("information.summary.failed", "error", err)
		return InformationData{}, err
	}

	label, err := a.classifier.Classify(ctx, truncateRunes(description, sentimentInputLimit))
	if err != nil {
		a.logger.Error("information.sentiment.failed", "error", err)
		return InformationData{}, err
	}

	return InformationData{
		Description: description,
		Summary:     summary,
		Sentiment:   mapSentiment(label),
	}, nil
}

// mapSentiment folds a raw model label into the canonical set; anything
// unrecognized is neutral.
func mapSentiment(label string) string {
	switch strings.ToUpper(label) {
	case "POSITIVE":
		return SentimentPositive
	case "NEGATIVE":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
