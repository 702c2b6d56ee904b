package model

import (
	"encoding/json"
	"math"
	"time"
)

// Value is an indicator reading that may not be available yet.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some wraps a defined reading.
func Some(v float64) Value { return Value{Float64: v, Valid: true} }

// None is the "not yet available" reading.
var None = Value{}

// OrZero returns the reading, or 0 when it is not available.
func (v Value) OrZero() float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

// Greater reports whether both readings are defined and v > o.
func (v Value) Greater(o Value) bool {
	return v.Valid && o.Valid && v.Float64 > o.Float64
}

// Round returns the reading rounded to the given decimals.
func (v Value) Round(decimals int) Value {
	if !v.Valid {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return Some(math.Round(v.Float64*p) / p)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// MAVariant selects the moving-average window set.
type MAVariant int

const (
	Window3 MAVariant = 3 // MA5, MA10, MA20
	Window4 MAVariant = 4 // MA5, MA10, MA20, MA30
)

// Windows returns the moving-average periods of the variant.
func (v MAVariant) Windows() []int {
	if v == Window4 {
		return []int{5, 10, 20, 30}
	}
	return []int{5, 10, 20}
}

// MaxWindow returns the longest moving-average period of the variant.
func (v MAVariant) MaxWindow() int {
	w := v.Windows()
	return w[len(w)-1]
}

// IndicatorRow holds the indicators computed at one bar.
type IndicatorRow struct {
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`

	MA5  Value `json:"ma5"`
	MA10 Value `json:"ma10"`
	MA20 Value `json:"ma20"`
	MA30 Value `json:"ma30"`

	RSI        Value `json:"rsi"`
	MACD       Value `json:"macd"`
	MACDSignal Value `json:"macd_signal"`
	KDK        Value `json:"kd_k"`
	KDD        Value `json:"kd_d"`

	VolumeMA5  Value `json:"volume_ma5"`
	Volatility Value `json:"volatility"`
}

// MovingAverages returns the moving averages of the given variant, shortest first.
func (r IndicatorRow) MovingAverages(v MAVariant) []Value {
	if v == Window4 {
		return []Value{r.MA5, r.MA10, r.MA20, r.MA30}
	}
	return []Value{r.MA5, r.MA10, r.MA20}
}

// IndicatorTable is aligned 1:1 with the source PriceSeries.
type IndicatorTable struct {
	Symbol    string
	Variant   MAVariant
	Auxiliary bool
	Rows      []IndicatorRow
}

// Latest returns the most recent row.
func (t *IndicatorTable) Latest() IndicatorRow {
	return t.Rows[len(t.Rows)-1]
}
