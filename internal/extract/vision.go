package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VisionClient is a TextRecognition backed by an OCR REST endpoint that
// accepts raw image bytes and returns detected lines.
type VisionClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewVisionClient creates a recognition client for the given endpoint.
func NewVisionClient(endpoint, apiKey string, timeout time.Duration) *VisionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VisionClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Detect posts the image bytes and returns the detected text lines in
// reading order.
func (v *VisionClient) Detect(ctx context.Context, content []byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if v.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognition http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recognition response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("recognition status %d: %s", resp.StatusCode, string(data))
	}

	var out struct {
		Lines []struct {
			Text string `json:"text"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode recognition response: %w", err)
	}
	lines := make([]string, 0, len(out.Lines))
	for _, l := range out.Lines {
		lines = append(lines, l.Text)
	}
	return lines, nil
}
