package collector

import (
	"context"

	"SignalScout/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// Implementations return model.ErrSymbolNotFound when the source has no data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, error)
	Name() string
}
