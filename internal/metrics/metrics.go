package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalScout/internal/model"
)

// Metrics holds the Prometheus collectors of the signal engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ScreenRuns       *prometheus.CounterVec   // labels: mode
	ScreenDuration   *prometheus.HistogramVec // labels: mode
	SymbolsEvaluated *prometheus.CounterVec   // labels: mode
	SymbolsSkipped   *prometheus.CounterVec   // labels: mode, reason
	Candidates       *prometheus.GaugeVec     // labels: mode
	Signals          *prometheus.CounterVec   // labels: signal

	FetchDuration *prometheus.HistogramVec // labels: source
	FetchErrors   *prometheus.CounterVec   // labels: source
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers and returns all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		ScreenRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscout_screen_runs_total",
			Help: "Total screening runs",
		}, []string{"mode"}),
		ScreenDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalscout_screen_duration_seconds",
			Help:    "Wall time of one screening run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"mode"}),
		SymbolsEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscout_symbols_evaluated_total",
			Help: "Symbols that reached the scoring step",
		}, []string{"mode"}),
		SymbolsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscout_symbols_skipped_total",
			Help: "Symbols dropped before scoring",
		}, []string{"mode", "reason"}),
		Candidates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalscout_candidates",
			Help: "Candidates returned by the last screening run",
		}, []string{"mode"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscout_signals_total",
			Help: "Single-symbol signals produced",
		}, []string{"signal"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalscout_fetch_duration_seconds",
			Help:    "Latency of upstream price fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscout_fetch_errors_total",
			Help: "Failed upstream price fetches",
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalscout_bar_cache_hits_total",
			Help: "Price series served from the bar cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalscout_bar_cache_misses_total",
			Help: "Price series fetched upstream",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.ScreenRuns, m.ScreenDuration, m.SymbolsEvaluated, m.SymbolsSkipped,
		m.Candidates, m.Signals, m.FetchDuration, m.FetchErrors,
		m.CacheHits, m.CacheMisses,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveScreen(report *model.ScreenReport) {
	if m == nil {
		return
	}
	mode := string(report.Mode)
	m.ScreenRuns.WithLabelValues(mode).Inc()
	m.ScreenDuration.WithLabelValues(mode).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	m.SymbolsEvaluated.WithLabelValues(mode).Add(float64(report.Evaluated))
	m.Candidates.WithLabelValues(mode).Set(float64(len(report.Candidates)))
}

func (m *Metrics) ObserveSkip(mode model.ScreenMode, reason string) {
	if m == nil {
		return
	}
	m.SymbolsSkipped.WithLabelValues(string(mode), reason).Inc()
}

func (m *Metrics) ObserveSignal(sig model.Signal) {
	if m == nil {
		return
	}
	m.Signals.WithLabelValues(string(sig)).Inc()
}

func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}
