package model

import "time"

// Signal is the categorical trading decision.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
)

// PriceTargets holds the suggested entry/exit bands.
type PriceTargets struct {
	Support       float64 `json:"support"`
	Resistance    float64 `json:"resistance"`
	AvgPrice      float64 `json:"avg_price"`
	SuggestedBuy  float64 `json:"suggested_buy"`
	SuggestedSell float64 `json:"suggested_sell"`
	StopLoss      float64 `json:"stop_loss"`
	TakeProfit    float64 `json:"take_profit"`
}

// SignalResult is the output of a single-symbol evaluation.
type SignalResult struct {
	Symbol      string        `json:"symbol"`
	Signal      Signal        `json:"signal"`
	Variant     MAVariant     `json:"variant"`
	Latest      IndicatorRow  `json:"latest"`
	Targets     *PriceTargets `json:"targets,omitempty"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
}

// ScreenMode selects the screening rule set.
type ScreenMode string

const (
	ModeDayTrade ScreenMode = "daytrade"
	ModeSwing    ScreenMode = "swing"
)

// ScreeningCandidate is one surviving symbol of a screening run.
type ScreeningCandidate struct {
	Symbol      string `json:"symbol"`
	Score       int    `json:"score"`
	Signal      Signal `json:"signal"`
	Probability Value  `json:"probability"`
}

// SkippedSymbol records why a symbol dropped out before scoring.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ScreenReport is the result of one screening run.
type ScreenReport struct {
	RunID      string               `json:"run_id"`
	Mode       ScreenMode           `json:"mode"`
	Candidates []ScreeningCandidate `json:"candidates"`
	Skipped    []SkippedSymbol      `json:"skipped"`
	Evaluated  int                  `json:"evaluated"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}
