package calculator

import (
	"SignalScout/internal/model"
)

// SMASeries computes the simple moving average at every index.
// Indices before period-1 stay undefined.
func SMASeries(values []float64, period int) []model.Value {
	out := make([]model.Value, len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = model.Some(sum / float64(period))
	}
	return out
}

// EMASeries computes an exponential moving average with alpha = 2/(span+1),
// seeded at the first defined input and reported once span inputs were seen.
// Undefined inputs are only expected as a leading run.
func EMASeries(values []model.Value, span int) []model.Value {
	out := make([]model.Value, len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	var ema float64
	seen := 0
	for i, v := range values {
		if !v.Valid {
			continue
		}
		if seen == 0 {
			ema = v.Float64
		} else {
			ema += alpha * (v.Float64 - ema)
		}
		seen++
		if seen >= span {
			out[i] = model.Some(ema)
		}
	}
	return out
}

func defined(values []float64) []model.Value {
	out := make([]model.Value, len(values))
	for i, v := range values {
		out[i] = model.Some(v)
	}
	return out
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractVolumes(bars []model.OHLCV) []float64 {
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}
	return volumes
}
