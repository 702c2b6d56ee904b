package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Scorer returns the probability that the next bar closes higher.
type Scorer interface {
	Score(ctx context.Context, symbol string, window [][]float64) (float64, error)
}

// HTTPScorer posts feature windows to a model-serving endpoint.
type HTTPScorer struct {
	URL    string
	Client *http.Client
}

// NewHTTPScorer creates a scorer with the given request timeout.
func NewHTTPScorer(url string, timeout time.Duration) *HTTPScorer {
	return &HTTPScorer{URL: url, Client: &http.Client{Timeout: timeout}}
}

type scoreRequest struct {
	Symbol   string      `json:"symbol"`
	Features []string    `json:"features"`
	Window   [][]float64 `json:"window"`
}

type scoreResponse struct {
	Probability float64 `json:"probability"`
}

func (s *HTTPScorer) Score(ctx context.Context, symbol string, window [][]float64) (float64, error) {
	body, err := json.Marshal(scoreRequest{Symbol: symbol, Features: FeatureNames, Window: window})
	if err != nil {
		return 0, fmt.Errorf("marshal window: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("score request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("scorer: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode score: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("scorer returned probability %.4f outside [0,1]", out.Probability)
	}
	return out.Probability, nil
}
