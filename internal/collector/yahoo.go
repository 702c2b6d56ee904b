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

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		Client:  newHTTPClient(proxyURL),
		BaseURL: yahooChartURL,
		SymbolMap: map[string]string{
			"TAIEX":  "^TWII",
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func yahooRange(lookback model.Lookback) string {
	switch {
	case lookback.Months() <= 1:
		return "1mo"
	case lookback.Months() <= 3:
		return "3mo"
	case lookback.Months() <= 6:
		return "6mo"
	case lookback.Months() <= 12:
		return "1y"
	default:
		return "2y"
	}
}

// at returns the i-th element of a quote column and whether it was present.
func at(col []*float64, i int) (float64, bool) {
	if i >= len(col) || col[i] == nil {
		return 0, false
	}
	return *col[i], true
}

// dedupeDays keeps the last bar of each exchange-local trading day. Yahoo
// appends the in-progress session as an extra bar on the same day.
func dedupeDays(bars []model.OHLCV, gmtOffset int64) []model.OHLCV {
	zone := time.FixedZone("exchange", int(gmtOffset))
	day := func(b model.OHLCV) string { return b.Time.In(zone).Format(time.DateOnly) }

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && day(out[n-1]) == day(b) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// FetchDailyBars downloads daily bars for the lookback window.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, lookback model.Lookback) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooRange(lookback))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w: no quote block", symbol, model.ErrMalformedSeries)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // holidays and half-filled rows
		}
		vol, _ := at(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	bars = dedupeDays(bars, result.Meta.GMTOffset)
	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Lookback:  lookback,
		FetchedAt: time.Now(),
	}, nil
}
