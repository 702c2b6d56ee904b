package strategy

import "SignalScout/internal/model"

// DefaultMinRSI is the RSI level a BUY requires.
const DefaultMinRSI = 40.0

// Rule is the trend-confirmation BUY rule: RSI above MinRSI, MACD above its
// signal line, %K above %D and the moving averages stacked shortest over longest.
type Rule struct {
	Variant model.MAVariant
	MinRSI  float64
}

// NewRule returns the rule for the given moving-average variant.
func NewRule(v model.MAVariant) Rule {
	return Rule{Variant: v, MinRSI: DefaultMinRSI}
}

// Evaluate classifies a row. Any undefined field the rule reads gives HOLD.
func (r Rule) Evaluate(row model.IndicatorRow) model.Signal {
	if !row.RSI.Valid || row.RSI.Float64 <= r.MinRSI {
		return model.SignalHold
	}
	if !row.MACD.Greater(row.MACDSignal) {
		return model.SignalHold
	}
	if !row.KDK.Greater(row.KDD) {
		return model.SignalHold
	}
	mas := row.MovingAverages(r.Variant)
	for i := 1; i < len(mas); i++ {
		if !mas[i-1].Greater(mas[i]) {
			return model.SignalHold
		}
	}
	return model.SignalBuy
}

// Evaluate applies the default rule of the variant to a row.
func Evaluate(row model.IndicatorRow, v model.MAVariant) model.Signal {
	return NewRule(v).Evaluate(row)
}
