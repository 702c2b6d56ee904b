package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"SignalScout/internal/calculator"
	"SignalScout/internal/model"
)

const (
	// TargetWindow is the number of trailing bars scanned for support and resistance.
	TargetWindow = 20

	StopLossRatio   = 0.95
	TakeProfitRatio = 1.10
)

var (
	three      = decimal.NewFromInt(3)
	stopLoss   = decimal.NewFromFloat(StopLossRatio)
	takeProfit = decimal.NewFromFloat(TakeProfitRatio)
)

// EstimateTargets computes support/resistance-anchored entry and exit levels.
// Suggested buy and sell are rounded to cents; stop loss and take profit
// are derived from the rounded buy level.
func EstimateTargets(series *model.PriceSeries, row model.IndicatorRow) (model.PriceTargets, error) {
	if series.Len() == 0 {
		return model.PriceTargets{}, fmt.Errorf("price targets: %w: no bars", model.ErrDataInsufficient)
	}
	support, resistance, err := calculator.TrailingRange(series.Bars, TargetWindow)
	if err != nil {
		return model.PriceTargets{}, fmt.Errorf("trailing range: %w", err)
	}
	current := series.Last().Close
	avg := averagePrice(row, current)

	buy := decimal.NewFromFloat(support).
		Add(decimal.NewFromFloat(avg)).
		Add(decimal.NewFromFloat(current)).
		Div(three).Round(2)
	sell := decimal.NewFromFloat(resistance).
		Add(decimal.NewFromFloat(avg)).
		Add(decimal.NewFromFloat(current)).
		Div(three).Round(2)

	return model.PriceTargets{
		Support:       support,
		Resistance:    resistance,
		AvgPrice:      avg,
		SuggestedBuy:  buy.InexactFloat64(),
		SuggestedSell: sell.InexactFloat64(),
		StopLoss:      buy.Mul(stopLoss).InexactFloat64(),
		TakeProfit:    buy.Mul(takeProfit).InexactFloat64(),
	}, nil
}

// averagePrice is the mean of the defined moving averages on the row,
// falling back to the close when none are defined.
func averagePrice(row model.IndicatorRow, fallback float64) float64 {
	sum, n := 0.0, 0
	for _, ma := range row.MovingAverages(model.Window4) {
		if ma.Valid {
			sum += ma.Float64
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}
