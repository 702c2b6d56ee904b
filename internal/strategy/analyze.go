package strategy

import (
	"time"

	"SignalScout/internal/calculator"
	"SignalScout/internal/model"
)

// Analyze runs the single-symbol pipeline: indicators, signal and price targets.
// Insufficient or malformed data is returned as an error, never as a signal.
func Analyze(series *model.PriceSeries, v model.MAVariant) (*model.SignalResult, error) {
	table, err := calculator.Compute(series, calculator.Options{Variant: v})
	if err != nil {
		return nil, err
	}
	latest := table.Latest()

	targets, err := EstimateTargets(series, latest)
	if err != nil {
		return nil, err
	}

	return &model.SignalResult{
		Symbol:      series.Symbol,
		Signal:      Evaluate(latest, table.Variant),
		Variant:     table.Variant,
		Latest:      latest,
		Targets:     &targets,
		EvaluatedAt: time.Now(),
	}, nil
}
