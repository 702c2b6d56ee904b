package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"SignalScout/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted daily bar API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

func (b restBar) complete() bool {
	return b.Open != nil && b.High != nil && b.Low != nil && b.Close != nil && b.Volume != nil
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&months=%d",
		f.BaseURL, url.QueryEscape(symbol), lookback.Months())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, model.ErrSymbolNotFound)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		if !rb.complete() {
			return nil, fmt.Errorf("%w: %s bar at %d is missing a column", model.ErrMalformedSeries, symbol, rb.Timestamp)
		}
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   *rb.Open,
			High:   *rb.High,
			Low:    *rb.Low,
			Close:  *rb.Close,
			Volume: *rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Lookback:  lookback,
		FetchedAt: time.Now(),
	}, nil
}
