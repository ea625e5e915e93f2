package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/docuflow/document-analyzer/internal/common"
)

// HuggingFace calls the Hugging Face Inference API for both capabilities.
// One instance serves concurrent analyses; it holds no per-request state.
type HuggingFace struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	summaryModel   string
	sentimentModel string
	logger         *slog.Logger
}

// Config configures the inference client.
type Config struct {
	BaseURL        string
	APIKey         string
	SummaryModel   string
	SentimentModel string
	Timeout        time.Duration
	Logger         *slog.Logger
}

// NewHuggingFace creates a client for the Hugging Face Inference API.
func NewHuggingFace(cfg Config) *HuggingFace {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &HuggingFace{
		client:         &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/") + "/",
		apiKey:         cfg.APIKey,
		summaryModel:   cfg.SummaryModel,
		sentimentModel: cfg.SentimentModel,
		logger:         cfg.Logger,
	}
}

var (
	shared     *HuggingFace
	sharedOnce sync.Once
)

// Shared returns the process-wide inference client, constructing it on first
// use. Models and HTTP handles are expensive to set up; every analysis
// invocation reuses the same instance.
func Shared(cfg Config) *HuggingFace {
	sharedOnce.Do(func() {
		shared = NewHuggingFace(cfg)
	})
	return shared
}

// Generate implements TextGenerator via the text2text-generation task.
func (h *HuggingFace) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	start := time.Now()
	payload := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_length": maxLength,
		},
	}
	raw, err := h.post(ctx, h.baseURL+h.summaryModel, payload)
	if err != nil {
		return "", fmt.Errorf("%w: generate: %v", common.ErrInsightUnavailable, err)
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode generation response: %v", common.ErrInsightUnavailable, err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty generation response", common.ErrInsightUnavailable)
	}

	h.logger.Debug("ai.generate.ok",
		"model", h.summaryModel,
		"prompt_len", len(prompt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(out[0].GeneratedText), nil
}

// Classify implements SentimentClassifier via the sentiment-analysis task.
// Returns the top-scoring raw label.
func (h *HuggingFace) Classify(ctx context.Context, text string) (string, error) {
	raw, err := h.post(ctx, h.baseURL+h.sentimentModel, map[string]any{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("%w: classify: %v", common.ErrInsightUnavailable, err)
	}

	// The API nests one candidate list per input.
	var out [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode sentiment response: %v", common.ErrInsightUnavailable, err)
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return "", fmt.Errorf("%w: empty sentiment response", common.ErrInsightUnavailable)
	}

	best := out[0][0]
	for _, cand := range out[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}
	return best.Label, nil
}

func (h *HuggingFace) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference http error: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			h.logger.Warn("inference response body close error", "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
