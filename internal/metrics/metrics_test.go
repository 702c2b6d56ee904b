package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"SignalScout/internal/model"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSignal(model.SignalBuy)
	m.ObserveSkip(model.ModeSwing, "fetch")
	m.ObserveFetch("yahoo", time.Second, nil)
	m.ObserveCache(true)
	m.ObserveScreen(&model.ScreenReport{Mode: model.ModeSwing})
}

func TestObserve(t *testing.T) {
	m := New()
	start := time.Now()
	m.ObserveScreen(&model.ScreenReport{
		Mode:       model.ModeDayTrade,
		Candidates: make([]model.ScreeningCandidate, 2),
		Evaluated:  4,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	})
	m.ObserveSkip(model.ModeDayTrade, "gate")
	m.ObserveFetch("yahoo", 10*time.Millisecond, errors.New("boom"))
	m.ObserveCache(false)

	if v := testutil.ToFloat64(m.ScreenRuns.WithLabelValues("daytrade")); v != 1 {
		t.Errorf("expected 1 screen run, got %.0f", v)
	}
	if v := testutil.ToFloat64(m.Candidates.WithLabelValues("daytrade")); v != 2 {
		t.Errorf("expected 2 candidates, got %.0f", v)
	}
	if v := testutil.ToFloat64(m.SymbolsEvaluated.WithLabelValues("daytrade")); v != 4 {
		t.Errorf("expected 4 evaluated, got %.0f", v)
	}
	if v := testutil.ToFloat64(m.FetchErrors.WithLabelValues("yahoo")); v != 1 {
		t.Errorf("expected 1 fetch error, got %.0f", v)
	}
	if v := testutil.ToFloat64(m.CacheMisses); v != 1 {
		t.Errorf("expected 1 cache miss, got %.0f", v)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "signalscout_symbols_skipped_total") {
		t.Error("expected skipped counter in exposition")
	}
}
