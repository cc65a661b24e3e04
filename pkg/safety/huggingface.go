package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HuggingFaceClassifier runs a hosted text-classification model (a Korean
// UnSmile hate-speech model by default) through the HuggingFace inference
// API and reports whether the text is disallowed.
type HuggingFaceClassifier struct {
	apiKey    string
	baseURL   string
	model     string
	threshold float64
	client    *http.Client
}

// CleanLabel is the label the UnSmile model family assigns to inoffensive
// text; every other label above the threshold counts as flagged.
const CleanLabel = "clean"

func NewHuggingFaceClassifier(apiKey, baseURL, model string, threshold float64) *HuggingFaceClassifier {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "smilegate-ai/kor_unsmile"
	}
	if threshold <= 0 {
		threshold = 0.5
	}
	return &HuggingFaceClassifier{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		threshold: threshold,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type classifyScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HuggingFaceClassifier) Flagged(ctx context.Context, text string) (bool, error) {
	payload, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("classifier error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// The inference API wraps the scores in one extra array level.
	var results [][]classifyScore
	if err := json.Unmarshal(bodyBytes, &results); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("classifier returned no scores")
	}

	for _, score := range results[0] {
		if score.Label != CleanLabel && score.Score >= c.threshold {
			return true, nil
		}
	}
	return false, nil
}
