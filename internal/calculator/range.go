package calculator

import (
	"fmt"
	"math"

	"SignalScout/internal/model"
)

// TrailingRange scans the most recent n bars and returns the lowest low and
// highest high. Fewer than n bars degrade to all available bars.
func TrailingRange(bars []model.OHLCV, n int) (low, high float64, err error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("%w: no bars provided", model.ErrDataInsufficient)
	}
	start := len(bars) - n
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return low, high, nil
}
