package strategy

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"SignalScout/internal/calculator"
	"SignalScout/internal/model"
)

func makeSeries(closes []float64) *model.PriceSeries {
	t0 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   t0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 5000,
		}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func flatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

// acceleratingCloses rises faster every bar, so MACD and %K keep climbing.
func acceleratingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 0.05*float64(i*i)
	}
	return closes
}

func bullishRow() model.IndicatorRow {
	return model.IndicatorRow{
		MA5:        model.Some(110),
		MA10:       model.Some(105),
		MA20:       model.Some(100),
		MA30:       model.Some(95),
		RSI:        model.Some(62),
		MACD:       model.Some(1.2),
		MACDSignal: model.Some(0.8),
		KDK:        model.Some(75),
		KDD:        model.Some(60),
	}
}

func TestEvaluate_FlatSeriesHolds(t *testing.T) {
	series := makeSeries(flatCloses(25, 50))
	table, err := calculator.Compute(series, calculator.Options{})
	if err != nil {
		t.Fatal(err)
	}
	latest := table.Latest()
	if latest.RSI.Valid && latest.RSI.Float64 != 50 {
		t.Errorf("expected neutral RSI for flat series, got %.2f", latest.RSI.Float64)
	}
	if latest.MACD.Valid && math.Abs(latest.MACD.Float64) > 1e-9 {
		t.Errorf("expected MACD ~0, got %.6f", latest.MACD.Float64)
	}
	if sig := Evaluate(latest, model.Window3); sig != model.SignalHold {
		t.Errorf("expected HOLD, got %s", sig)
	}

	long, _ := calculator.Compute(makeSeries(flatCloses(40, 50)), calculator.Options{})
	if m := long.Latest().MACD; !m.Valid || math.Abs(m.Float64) > 1e-9 {
		t.Errorf("expected MACD of 0 after 40 flat bars, got %+v", m)
	}
}

func TestEvaluate_RisingSeriesBuys(t *testing.T) {
	series := makeSeries(acceleratingCloses(40))
	for _, v := range []model.MAVariant{model.Window3, model.Window4} {
		table, err := calculator.Compute(series, calculator.Options{Variant: v})
		if err != nil {
			t.Fatal(err)
		}
		latest := table.Latest()
		if latest.RSI.Float64 <= 40 {
			t.Errorf("variant %d: expected RSI > 40, got %.2f", v, latest.RSI.Float64)
		}
		if sig := Evaluate(latest, v); sig != model.SignalBuy {
			t.Errorf("variant %d: expected BUY, got %s (row %+v)", v, sig, latest)
		}
	}
}

func TestEvaluate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.IndicatorRow)
		variant model.MAVariant
		want    model.Signal
	}{
		{"all conditions", func(r *model.IndicatorRow) {}, model.Window3, model.SignalBuy},
		{"all conditions window4", func(r *model.IndicatorRow) {}, model.Window4, model.SignalBuy},
		{"rsi at threshold", func(r *model.IndicatorRow) { r.RSI = model.Some(40) }, model.Window3, model.SignalHold},
		{"macd below signal", func(r *model.IndicatorRow) { r.MACD = model.Some(0.5) }, model.Window3, model.SignalHold},
		{"k below d", func(r *model.IndicatorRow) { r.KDK = model.Some(50) }, model.Window3, model.SignalHold},
		{"ma10 above ma5", func(r *model.IndicatorRow) { r.MA10 = model.Some(111) }, model.Window3, model.SignalHold},
		{"ma30 above ma20 window3", func(r *model.IndicatorRow) { r.MA30 = model.Some(101) }, model.Window3, model.SignalBuy},
		{"ma30 above ma20 window4", func(r *model.IndicatorRow) { r.MA30 = model.Some(101) }, model.Window4, model.SignalHold},
		{"rsi undefined", func(r *model.IndicatorRow) { r.RSI = model.None }, model.Window3, model.SignalHold},
		{"signal line undefined", func(r *model.IndicatorRow) { r.MACDSignal = model.None }, model.Window3, model.SignalHold},
		{"kd undefined", func(r *model.IndicatorRow) { r.KDD = model.None }, model.Window3, model.SignalHold},
		{"ma30 undefined window4", func(r *model.IndicatorRow) { r.MA30 = model.None }, model.Window4, model.SignalHold},
	}
	for _, tt := range tests {
		row := bullishRow()
		tt.mutate(&row)
		if got := Evaluate(row, tt.variant); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
		// pure: same input, same output
		if again := Evaluate(row, tt.variant); again != tt.want {
			t.Errorf("%s: second evaluation differs", tt.name)
		}
	}
}

func TestRule_CustomThreshold(t *testing.T) {
	row := bullishRow()
	rule := Rule{Variant: model.Window3, MinRSI: 70}
	if sig := rule.Evaluate(row); sig != model.SignalHold {
		t.Errorf("expected HOLD with RSI 62 under threshold 70, got %s", sig)
	}
}

func TestEstimateTargets(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := makeSeries(closes)
	table, err := calculator.Compute(series, calculator.Options{})
	if err != nil {
		t.Fatal(err)
	}
	tg, err := EstimateTargets(series, table.Latest())
	if err != nil {
		t.Fatal(err)
	}
	if tg.Support != 109 || tg.Resistance != 130 {
		t.Errorf("expected support 109 / resistance 130, got %.2f / %.2f", tg.Support, tg.Resistance)
	}
	if math.Abs(tg.AvgPrice-371.0/3) > 1e-9 {
		t.Errorf("expected avg price %.4f, got %.4f", 371.0/3, tg.AvgPrice)
	}
	if tg.SuggestedBuy != 120.56 {
		t.Errorf("expected suggested buy 120.56, got %.4f", tg.SuggestedBuy)
	}
	if tg.SuggestedSell != 127.56 {
		t.Errorf("expected suggested sell 127.56, got %.4f", tg.SuggestedSell)
	}
	if math.Abs(tg.StopLoss-114.532) > 1e-9 || math.Abs(tg.TakeProfit-132.616) > 1e-9 {
		t.Errorf("unexpected stop/take: %.4f / %.4f", tg.StopLoss, tg.TakeProfit)
	}
}

func TestEstimateTargets_ShortSeriesUsesAllBars(t *testing.T) {
	series := makeSeries([]float64{10, 12, 11})
	row := model.IndicatorRow{Close: 11}
	tg, err := EstimateTargets(series, row)
	if err != nil {
		t.Fatal(err)
	}
	if tg.Support != 9 || tg.Resistance != 13 {
		t.Errorf("expected 9/13 over all bars, got %.2f/%.2f", tg.Support, tg.Resistance)
	}
	if tg.AvgPrice != 11 {
		t.Errorf("expected avg price to fall back to close, got %.2f", tg.AvgPrice)
	}
}

func TestEstimateTargets_EmptySeries(t *testing.T) {
	row := model.IndicatorRow{Close: 10}
	for name, series := range map[string]*model.PriceSeries{
		"nil":   nil,
		"empty": {Symbol: "EMPTY"},
	} {
		_, err := EstimateTargets(series, row)
		if !errors.Is(err, model.ErrDataInsufficient) {
			t.Errorf("%s: expected ErrDataInsufficient, got %v", name, err)
		}
	}
}

func TestEstimateTargets_Ordering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		closes := make([]float64, 60)
		price := 50 + rng.Float64()*100
		for i := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.06
			closes[i] = price
		}
		series := makeSeries(closes)
		table, err := calculator.Compute(series, calculator.Options{Variant: model.Window4})
		if err != nil {
			t.Fatal(err)
		}
		tg, err := EstimateTargets(series, table.Latest())
		if err != nil {
			t.Fatal(err)
		}
		if tg.SuggestedBuy > tg.SuggestedSell {
			t.Errorf("trial %d: buy %.2f above sell %.2f", trial, tg.SuggestedBuy, tg.SuggestedSell)
		}
		if !(tg.StopLoss < tg.SuggestedBuy && tg.SuggestedBuy < tg.TakeProfit) {
			t.Errorf("trial %d: expected stop < buy < take, got %.2f %.2f %.2f", trial, tg.StopLoss, tg.SuggestedBuy, tg.TakeProfit)
		}
	}
}

func TestAnalyze(t *testing.T) {
	res, err := Analyze(makeSeries(acceleratingCloses(40)), model.Window3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Signal != model.SignalBuy {
		t.Errorf("expected BUY, got %s", res.Signal)
	}
	if res.Targets == nil {
		t.Fatal("expected price targets")
	}
	if res.Symbol != "TEST" || res.Variant != model.Window3 {
		t.Errorf("unexpected result header: %+v", res)
	}

	_, err = Analyze(makeSeries(acceleratingCloses(10)), model.Window3)
	if !errors.Is(err, model.ErrDataInsufficient) {
		t.Errorf("expected ErrDataInsufficient, got %v", err)
	}
}
