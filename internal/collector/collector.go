package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
	"SignalScout/internal/strategy"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64                  // generate bars around this price for unknown symbols
	Series map[string][]model.OHLCV // fixed bars per symbol
	Errs   map[string]error         // forced errors per symbol

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	bars, ok := m.Series[symbol]
	if !ok {
		if m.Price <= 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrSymbolNotFound)
		}
		bars = generateMockBars(m.Price, lookback.Months()*21)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrSymbolNotFound)
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, Lookback: lookback, FetchedAt: time.Now()}, nil
}

// Calls returns how many times a symbol was fetched.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and single-symbol evaluation.
type Collector struct {
	Fetcher  Fetcher
	Variant  model.MAVariant
	Lookback model.Lookback
	Metrics  *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, variant model.MAVariant, lookback model.Lookback, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Variant: variant, Lookback: lookback, Metrics: m}
}

// Analyze fetches one symbol and computes its signal and price targets.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.SignalResult, error) {
	return c.AnalyzeVariant(ctx, symbol, c.Variant)
}

// AnalyzeVariant is Analyze with an explicit moving-average variant.
func (c *Collector) AnalyzeVariant(ctx context.Context, symbol string, variant model.MAVariant) (*model.SignalResult, error) {
	series, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Lookback)
	if err != nil {
		return nil, &model.FetchError{Symbol: symbol, Err: err}
	}
	res, err := strategy.Analyze(series, variant)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	c.Metrics.ObserveSignal(res.Signal)
	log.Info().
		Str("symbol", symbol).
		Str("signal", string(res.Signal)).
		Int("bars", series.Len()).
		Msg("symbol analyzed")
	return res, nil
}
