package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"SignalScout/internal/collector"
	"SignalScout/internal/model"
	"SignalScout/internal/screener"
)

// Handler serves the signal and screening endpoints.
type Handler struct {
	collector *collector.Collector
	screeners map[model.ScreenMode]*screener.Screener
	version   string
	startTime time.Time
}

type healthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// Health returns a liveness check
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
	})
}

// GetSignal evaluates one symbol
// GET /api/v1/signals/{symbol}?variant=3|4
func (h *Handler) GetSignal(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "symbol is required")
		return
	}
	if h.collector == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeInternal, "signal analysis is not configured")
		return
	}

	variant := h.collector.Variant
	if v := r.URL.Query().Get("variant"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (model.MAVariant(n) != model.Window3 && model.MAVariant(n) != model.Window4) {
			writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "variant must be 3 or 4")
			return
		}
		variant = model.MAVariant(n)
	}

	res, err := h.collector.AnalyzeVariant(r.Context(), symbol, variant)
	if err != nil {
		status, code := classify(err)
		writeError(w, r, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Screen runs a screening pass
// GET /api/v1/screen/{mode}?symbols=A,B
func (h *Handler) Screen(w http.ResponseWriter, r *http.Request) {
	mode := model.ScreenMode(strings.ToLower(chi.URLParam(r, "mode")))
	sc, ok := h.screeners[mode]
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "unknown screen mode "+string(mode))
		return
	}
	var symbols []string
	if v := r.URL.Query().Get("symbols"); v != "" {
		symbols = strings.Split(v, ",")
	}
	writeJSON(w, http.StatusOK, sc.Screen(r.Context(), symbols))
}

// classify maps analysis errors onto HTTP status codes.
func classify(err error) (int, string) {
	var fetchErr *model.FetchError
	switch {
	case errors.Is(err, model.ErrSymbolNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, model.ErrDataInsufficient), errors.Is(err, model.ErrMalformedSeries):
		return http.StatusUnprocessableEntity, ErrCodeUnprocessable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, ErrCodeUpstream
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
