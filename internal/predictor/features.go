// Package predictor prepares indicator feature windows for an external
// next-bar direction model and calls that model.
package predictor

import (
	"fmt"

	"SignalScout/internal/model"
)

// WindowWidth is the number of consecutive bars in one model input.
const WindowWidth = 10

// FeatureNames lists the per-bar features in column order.
var FeatureNames = []string{"rsi", "macd", "macd_signal", "kd_k", "kd_d", "volatility"}

func rowFeatures(r model.IndicatorRow) []float64 {
	// undefined readings enter the model as 0
	return []float64{
		r.RSI.OrZero(),
		r.MACD.OrZero(),
		r.MACDSignal.OrZero(),
		r.KDK.OrZero(),
		r.KDD.OrZero(),
		r.Volatility.OrZero(),
	}
}

// Normalize returns one feature vector per row, min-max scaled per feature
// to [0,1] over the whole table. A constant feature scales to 0.
func Normalize(table *model.IndicatorTable) [][]float64 {
	n := len(table.Rows)
	out := make([][]float64, n)
	if n == 0 {
		return out
	}
	width := len(FeatureNames)
	lo := make([]float64, width)
	hi := make([]float64, width)
	for i, r := range table.Rows {
		out[i] = rowFeatures(r)
		for j, v := range out[i] {
			if i == 0 || v < lo[j] {
				lo[j] = v
			}
			if i == 0 || v > hi[j] {
				hi[j] = v
			}
		}
	}
	for _, vec := range out {
		for j := range vec {
			if span := hi[j] - lo[j]; span > 0 {
				vec[j] = (vec[j] - lo[j]) / span
			} else {
				vec[j] = 0
			}
		}
	}
	return out
}

// BuildWindows returns every window of width consecutive normalized rows,
// oldest first.
func BuildWindows(table *model.IndicatorTable, width int) [][][]float64 {
	rows := Normalize(table)
	if width <= 0 || len(rows) < width {
		return nil
	}
	windows := make([][][]float64, 0, len(rows)-width+1)
	for end := width; end <= len(rows); end++ {
		windows = append(windows, rows[end-width:end])
	}
	return windows
}

// LatestWindow returns the window ending at the most recent bar.
func LatestWindow(table *model.IndicatorTable, width int) ([][]float64, error) {
	if width <= 0 || len(table.Rows) < width {
		return nil, fmt.Errorf("%w: need %d rows for a feature window, have %d",
			model.ErrDataInsufficient, width, len(table.Rows))
	}
	rows := Normalize(table)
	return rows[len(rows)-width:], nil
}
