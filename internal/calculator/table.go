package calculator

import (
	"fmt"

	"SignalScout/internal/model"
)

const (
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	StochPeriod      = 14
	StochSmooth      = 3
	AuxWindow        = 5
)

// Options selects the moving-average variant and whether the volume and
// volatility columns are computed.
type Options struct {
	Variant   model.MAVariant
	Auxiliary bool
}

// Compute derives the indicator table of a series. Readings without enough
// history are left undefined; callers choose how to treat them.
func Compute(series *model.PriceSeries, opts Options) (*model.IndicatorTable, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", model.ErrDataInsufficient)
	}
	if opts.Variant != model.Window4 {
		opts.Variant = model.Window3
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	n := series.Len()
	if need := opts.Variant.MaxWindow(); n < need {
		return nil, fmt.Errorf("%w: %s has %d bars, need %d", model.ErrDataInsufficient, series.Symbol, n, need)
	}

	closes := extractCloses(series.Bars)
	mas := make(map[int][]model.Value)
	for _, w := range opts.Variant.Windows() {
		mas[w] = SMASeries(closes, w)
	}
	rsi := RSISeries(closes, RSIPeriod)
	macd, macdSignal := MACDSeries(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	kdK, kdD := StochasticSeries(series.Bars, StochPeriod, StochSmooth)

	var volumeMA, volatility []model.Value
	if opts.Auxiliary {
		volumeMA = SMASeries(extractVolumes(series.Bars), AuxWindow)
		volatility = VolatilitySeries(closes, AuxWindow)
	}

	table := &model.IndicatorTable{
		Symbol:    series.Symbol,
		Variant:   opts.Variant,
		Auxiliary: opts.Auxiliary,
		Rows:      make([]model.IndicatorRow, n),
	}
	for i, b := range series.Bars {
		row := model.IndicatorRow{
			Time:       b.Time,
			Close:      b.Close,
			Volume:     b.Volume,
			MA5:        mas[5][i],
			MA10:       mas[10][i],
			MA20:       mas[20][i],
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			KDK:        kdK[i],
			KDD:        kdD[i],
		}
		if ma30, ok := mas[30]; ok {
			row.MA30 = ma30[i]
		}
		if opts.Auxiliary {
			row.VolumeMA5 = volumeMA[i]
			row.Volatility = volatility[i]
		}
		table.Rows[i] = row
	}
	return table, nil
}
