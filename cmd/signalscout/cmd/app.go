package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"SignalScout/internal/collector"
	"SignalScout/internal/config"
	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
	"SignalScout/internal/predictor"
	"SignalScout/internal/screener"
)

// app holds the components shared by all commands.
type app struct {
	fetcher   collector.Fetcher
	cache     *collector.CachedFetcher
	metrics   *metrics.Metrics
	collector *collector.Collector
	screeners map[model.ScreenMode]*screener.Screener
}

func newApp(c *config.Config) (*app, error) {
	a := &app{metrics: metrics.New()}

	var upstream collector.Fetcher
	switch c.DataSource.Provider {
	case "rest":
		upstream = collector.NewRESTFetcher(c.DataSource.BaseURL, c.DataSource.APIKey, c.Proxy)
	case "mock":
		upstream = &collector.MockFetcher{Price: 100}
	default:
		upstream = collector.NewYahooFetcher(c.Proxy)
	}
	a.fetcher = upstream

	if c.DataSource.CachePath != "" && c.DataSource.CacheTTL > 0 {
		cache, err := collector.NewCachedFetcher(upstream, c.DataSource.CachePath, c.DataSource.CacheTTL, a.metrics)
		if err != nil {
			log.Warn().Err(err).Msg("bar cache unavailable, fetching directly")
		} else {
			a.cache = cache
			a.fetcher = cache
		}
	}
	log.Info().Str("source", a.fetcher.Name()).Msg("data source ready")

	var opts []screener.Option
	opts = append(opts, screener.WithMetrics(a.metrics))
	if c.Predictor.URL != "" {
		opts = append(opts, screener.WithScorer(predictor.NewHTTPScorer(c.Predictor.URL, c.Predictor.Timeout)))
		log.Info().Str("url", c.Predictor.URL).Msg("predictor enabled")
	}

	a.screeners = make(map[model.ScreenMode]*screener.Screener)
	for _, mode := range []model.ScreenMode{model.ModeDayTrade, model.ModeSwing} {
		p, err := c.Policy(mode)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", mode, err)
		}
		a.screeners[mode] = screener.New(p, a.fetcher, opts...)
	}

	// Single-symbol analysis uses the swing history window.
	a.collector = collector.NewCollector(a.fetcher, model.Window3, model.Lookback6M, a.metrics)
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("close bar cache")
		}
	}
}
