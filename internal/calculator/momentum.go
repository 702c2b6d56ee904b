package calculator

import (
	"math"

	"SignalScout/internal/model"
)

// RSISeries computes the Wilder RSI as an exponential average of gains and
// losses with alpha = 1/period. Index 0 contributes a zero change, so the
// averages start at zero and the first reading is at index period-1.
func RSISeries(closes []float64, period int) []model.Value {
	out := make([]model.Value, len(closes))
	if period <= 0 || len(closes) == 0 {
		return out
	}
	alpha := 1.0 / float64(period)

	var avgGain, avgLoss float64
	for i := range closes {
		if i > 0 {
			change := closes[i] - closes[i-1]
			gain, loss := 0.0, 0.0
			if change > 0 {
				gain = change
			} else {
				loss = -change
			}
			avgGain += alpha * (gain - avgGain)
			avgLoss += alpha * (loss - avgLoss)
		}
		if i >= period-1 {
			out[i] = model.Some(rsiFromAverages(avgGain, avgLoss))
		}
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50.0 // no movement at all
	case avgLoss == 0:
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	return math.Max(0, math.Min(100, rsi))
}

// MACDSeries returns the MACD line (fast EMA minus slow EMA of close) and its signal line.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, macdSignal []model.Value) {
	src := defined(closes)
	fastEMA := EMASeries(src, fast)
	slowEMA := EMASeries(src, slow)

	macd = make([]model.Value, len(closes))
	for i := range closes {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			macd[i] = model.Some(fastEMA[i].Float64 - slowEMA[i].Float64)
		}
	}
	return macd, EMASeries(macd, signal)
}

// StochasticSeries returns the slow stochastic oscillator: %K over the
// period high/low range and %D as the smooth-bar SMA of %K.
// %K is undefined when the range is flat.
func StochasticSeries(bars []model.OHLCV, period, smooth int) (k, d []model.Value) {
	k = make([]model.Value, len(bars))
	d = make([]model.Value, len(bars))
	if period <= 0 || smooth <= 0 {
		return k, d
	}

	for i := period - 1; i < len(bars); i++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for j := i - period + 1; j <= i; j++ {
			lo = math.Min(lo, bars[j].Low)
			hi = math.Max(hi, bars[j].High)
		}
		if hi-lo == 0 {
			continue
		}
		k[i] = model.Some(100 * (bars[i].Close - lo) / (hi - lo))
	}

	for i := smooth - 1; i < len(bars); i++ {
		sum := 0.0
		complete := true
		for j := i - smooth + 1; j <= i; j++ {
			if !k[j].Valid {
				complete = false
				break
			}
			sum += k[j].Float64
		}
		if complete {
			d[i] = model.Some(sum / float64(smooth))
		}
	}
	return k, d
}

// VolatilitySeries is the rolling sample standard deviation of one-day percentage changes.
func VolatilitySeries(closes []float64, window int) []model.Value {
	out := make([]model.Value, len(closes))
	if window < 2 {
		return out
	}
	changes := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		changes[i] = closes[i]/closes[i-1] - 1
	}
	// changes[0] is undefined, so the first full window ends at index window.
	for i := window; i < len(closes); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += changes[j]
		}
		mean /= float64(window)
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			ss += (changes[j] - mean) * (changes[j] - mean)
		}
		out[i] = model.Some(math.Sqrt(ss / float64(window-1)))
	}
	return out
}
