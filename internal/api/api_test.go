package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SignalScout/internal/collector"
	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
	"SignalScout/internal/screener"
)

func shortBars(n int) []model.OHLCV {
	t0 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1000}
	}
	return bars
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Price:  100,
		Series: map[string][]model.OHLCV{"SHORT": shortBars(10)},
		Errs: map[string]error{
			"GONE": fmt.Errorf("yahoo GONE: %w", model.ErrSymbolNotFound),
			"DOWN": errors.New("connection refused"),
		},
	}
	m := metrics.New()
	day := screener.DayTradePolicy()
	day.Symbols = []string{"AAA", "GONE"}
	router := NewRouter(Config{
		Collector: collector.NewCollector(fetcher, model.Window3, model.Lookback6M, m),
		Screeners: map[model.ScreenMode]*screener.Screener{
			model.ModeDayTrade: screener.New(day, fetcher, screener.WithMetrics(m)),
		},
		Metrics: m,
		Version: "test",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body healthResponse
	if code := get(t, srv.URL+"/health", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Status != "ok" || body.Version != "test" {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestGetSignal(t *testing.T) {
	srv := newTestServer(t)

	var res model.SignalResult
	if code := get(t, srv.URL+"/api/v1/signals/aaa?variant=4", &res); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if res.Symbol != "AAA" || res.Variant != model.Window4 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Targets == nil || res.Targets.StopLoss >= res.Targets.SuggestedBuy {
		t.Errorf("expected targets with stop below buy, got %+v", res.Targets)
	}
	if res.Signal != model.SignalBuy && res.Signal != model.SignalHold {
		t.Errorf("unexpected signal %q", res.Signal)
	}
}

func TestGetSignal_Errors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		path string
		code int
		err  string
	}{
		{"/api/v1/signals/AAA?variant=5", http.StatusBadRequest, ErrCodeInvalidParameter},
		{"/api/v1/signals/GONE", http.StatusNotFound, ErrCodeNotFound},
		{"/api/v1/signals/SHORT", http.StatusUnprocessableEntity, ErrCodeUnprocessable},
		{"/api/v1/signals/DOWN", http.StatusBadGateway, ErrCodeUpstream},
	}
	for _, tt := range tests {
		var body ErrorResponse
		if code := get(t, srv.URL+tt.path, &body); code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, code)
		}
		if body.Error.Code != tt.err {
			t.Errorf("%s: expected code %s, got %s", tt.path, tt.err, body.Error.Code)
		}
		if body.Error.RequestID == "" {
			t.Errorf("%s: missing request id", tt.path)
		}
	}
}

func TestScreen(t *testing.T) {
	srv := newTestServer(t)

	var report model.ScreenReport
	if code := get(t, srv.URL+"/api/v1/screen/daytrade", &report); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if report.Mode != model.ModeDayTrade || report.RunID == "" {
		t.Errorf("unexpected report %+v", report)
	}
	reasons := map[string]string{}
	for _, s := range report.Skipped {
		reasons[s.Symbol] = s.Reason
	}
	if reasons["GONE"] != screener.ReasonNotFound {
		t.Errorf("expected GONE skipped as not found, got %+v", report.Skipped)
	}

	if code := get(t, srv.URL+"/api/v1/screen/daytrade?symbols=SHORT,BBB", &report); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if report.Evaluated != 1 {
		t.Errorf("expected 1 evaluated symbol, got %d", report.Evaluated)
	}

	if code := get(t, srv.URL+"/api/v1/screen/scalp", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown mode, got %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv.URL+"/api/v1/screen/daytrade", &model.ScreenReport{})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `signalscout_screen_runs_total{mode="daytrade"} 1`) {
		t.Errorf("screen run not exported:\n%s", body)
	}
}
