package model

import (
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Lookback is the history window requested from a data source.
type Lookback int

const (
	Lookback6M  Lookback = 6
	Lookback12M Lookback = 12
)

// Months returns the lookback length in calendar months.
func (l Lookback) Months() int { return int(l) }

func (l Lookback) String() string { return fmt.Sprintf("%dmo", int(l)) }

// PriceSeries holds the daily bars of one symbol in chronological order.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	Lookback  Lookback
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Last returns the most recent bar. The series must not be empty.
func (s *PriceSeries) Last() OHLCV {
	return s.Bars[len(s.Bars)-1]
}

// Closes extracts the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Validate checks ordering and the OHLCV columns of every bar.
func (s *PriceSeries) Validate() error {
	for i, b := range s.Bars {
		if !finitePositive(b.Open) || !finitePositive(b.High) || !finitePositive(b.Low) || !finitePositive(b.Close) {
			return fmt.Errorf("%w: bar %d (%s) has a missing price column", ErrMalformedSeries, i, b.Time.Format("2006-01-02"))
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
			return fmt.Errorf("%w: bar %d (%s) has a missing volume column", ErrMalformedSeries, i, b.Time.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: bar %d high %.4f below low %.4f", ErrMalformedSeries, i, b.High, b.Low)
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) is not after bar %d", ErrMalformedSeries, i, b.Time.Format("2006-01-02"), i-1)
		}
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
