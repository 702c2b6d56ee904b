package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SignalScout/internal/model"
)

func makeTable(n int) *model.IndicatorTable {
	rows := make([]model.IndicatorRow, n)
	for i := range rows {
		rows[i] = model.IndicatorRow{
			RSI:        model.Some(float64(i * 10)),
			MACD:       model.Some(-float64(i)),
			MACDSignal: model.None,
			KDK:        model.Some(50),
			KDD:        model.Some(float64(i)),
			Volatility: model.Some(0.01 * float64(i)),
		}
	}
	return &model.IndicatorTable{Symbol: "TEST", Rows: rows}
}

func TestNormalize(t *testing.T) {
	rows := Normalize(makeTable(11))
	if len(rows) != 11 || len(rows[0]) != len(FeatureNames) {
		t.Fatalf("unexpected shape %dx%d", len(rows), len(rows[0]))
	}
	for i, vec := range rows {
		for j, v := range vec {
			if v < 0 || v > 1 {
				t.Errorf("row %d feature %s: %.4f outside [0,1]", i, FeatureNames[j], v)
			}
		}
	}
	if rows[0][0] != 0 || rows[10][0] != 1 {
		t.Errorf("rsi should scale 0..1, got %.2f..%.2f", rows[0][0], rows[10][0])
	}
	if rows[0][1] != 1 || rows[10][1] != 0 {
		t.Errorf("falling macd should scale 1..0, got %.2f..%.2f", rows[0][1], rows[10][1])
	}
	if rows[5][2] != 0 || rows[5][3] != 0 {
		t.Errorf("constant and undefined features should scale to 0, got %.2f %.2f", rows[5][2], rows[5][3])
	}
}

func TestBuildWindows(t *testing.T) {
	windows := BuildWindows(makeTable(12), WindowWidth)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for _, w := range windows {
		if len(w) != WindowWidth {
			t.Errorf("expected window width %d, got %d", WindowWidth, len(w))
		}
	}
	if BuildWindows(makeTable(5), WindowWidth) != nil {
		t.Error("expected no windows for a short table")
	}
}

func TestLatestWindow(t *testing.T) {
	w, err := LatestWindow(makeTable(15), WindowWidth)
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != WindowWidth || w[WindowWidth-1][0] != 1 {
		t.Errorf("expected last row to hold max rsi, got %+v", w[WindowWidth-1])
	}
	if _, err := LatestWindow(makeTable(3), WindowWidth); !errors.Is(err, model.ErrDataInsufficient) {
		t.Errorf("expected ErrDataInsufficient, got %v", err)
	}
}

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Symbol == "BROKEN" {
			fmt.Fprint(w, `{"probability": 1.7}`)
			return
		}
		if len(req.Window) != WindowWidth || len(req.Features) != 6 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"probability": 0.64}`)
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, time.Second)
	window, _ := LatestWindow(makeTable(10), WindowWidth)
	p, err := s.Score(context.Background(), "2330.TW", window)
	if err != nil {
		t.Fatal(err)
	}
	if p != 0.64 {
		t.Errorf("expected 0.64, got %.2f", p)
	}
	if _, err := s.Score(context.Background(), "BROKEN", window); err == nil {
		t.Error("expected out-of-range probability to fail")
	}
}
