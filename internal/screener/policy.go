package screener

import (
	"fmt"
	"strings"

	"SignalScout/internal/model"
)

const (
	DefaultMaxCandidates = 5
	DefaultConcurrency   = 4
	DefaultRSIThreshold  = 50
	DefaultScoreCutoff   = 2
	DefaultMinVolatility = 0.02
)

// DefaultUniverse is the Taiwan watch list screened when no symbols are configured.
var DefaultUniverse = []string{
	"2330.TW", "2317.TW", "2454.TW", "2603.TW",
	"3008.TW", "3034.TW", "0050.TW", "00878.TW",
}

// Policy holds every tunable of a screening run.
type Policy struct {
	Mode          model.ScreenMode
	Symbols       []string
	Lookback      model.Lookback
	Variant       model.MAVariant
	RSIThreshold  float64 // RSI level counted by the momentum score
	ScoreCutoff   int     // day-trade: minimum score kept
	MaxCandidates int
	// SkipLiquidityGate turns off the day-trade volume and volatility gate.
	SkipLiquidityGate bool
	MinVolatility     float64
	Concurrency       int
}

// DayTradePolicy: 12-month history, liquidity gate, score >= 2 kept.
func DayTradePolicy() Policy {
	return Policy{
		Mode:          model.ModeDayTrade,
		Symbols:       append([]string(nil), DefaultUniverse...),
		Lookback:      model.Lookback12M,
		Variant:       model.Window3,
		RSIThreshold:  DefaultRSIThreshold,
		ScoreCutoff:   DefaultScoreCutoff,
		MaxCandidates: DefaultMaxCandidates,
		MinVolatility: DefaultMinVolatility,
		Concurrency:   DefaultConcurrency,
	}
}

// SwingPolicy: 6-month history, only BUY signals kept, ranked by score.
func SwingPolicy() Policy {
	return Policy{
		Mode:          model.ModeSwing,
		Symbols:       append([]string(nil), DefaultUniverse...),
		Lookback:      model.Lookback6M,
		Variant:       model.Window3,
		RSIThreshold:  DefaultRSIThreshold,
		MaxCandidates: DefaultMaxCandidates,
		Concurrency:   DefaultConcurrency,
	}
}

// PolicyFor returns the default policy of a mode.
func PolicyFor(mode model.ScreenMode) (Policy, error) {
	switch mode {
	case model.ModeDayTrade:
		return DayTradePolicy(), nil
	case model.ModeSwing:
		return SwingPolicy(), nil
	}
	return Policy{}, fmt.Errorf("unknown screen mode %q", mode)
}

// Validate checks a policy; zero fields are filled by withDefaults first.
func (p Policy) Validate() error {
	if p.Mode != model.ModeDayTrade && p.Mode != model.ModeSwing {
		return fmt.Errorf("unknown screen mode %q", p.Mode)
	}
	if p.Lookback != model.Lookback6M && p.Lookback != model.Lookback12M {
		return fmt.Errorf("lookback must be 6 or 12 months, got %d", p.Lookback)
	}
	if p.Variant != model.Window3 && p.Variant != model.Window4 {
		return fmt.Errorf("ma variant must be 3 or 4, got %d", p.Variant)
	}
	if p.RSIThreshold < 0 || p.RSIThreshold > 100 {
		return fmt.Errorf("rsi threshold %.2f out of range [0,100]", p.RSIThreshold)
	}
	if p.ScoreCutoff < 0 || p.ScoreCutoff > MaxScore {
		return fmt.Errorf("score cutoff %d out of range [0,%d]", p.ScoreCutoff, MaxScore)
	}
	if p.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive")
	}
	if p.MinVolatility < 0 {
		return fmt.Errorf("min volatility must not be negative")
	}
	return nil
}

func (p Policy) withDefaults() Policy {
	if p.Lookback == 0 {
		if p.Mode == model.ModeSwing {
			p.Lookback = model.Lookback6M
		} else {
			p.Lookback = model.Lookback12M
		}
	}
	if p.Variant == 0 {
		p.Variant = model.Window3
	}
	if p.RSIThreshold == 0 {
		p.RSIThreshold = DefaultRSIThreshold
	}
	if p.Mode == model.ModeDayTrade {
		if p.ScoreCutoff == 0 {
			p.ScoreCutoff = DefaultScoreCutoff
		}
		if p.MinVolatility == 0 {
			p.MinVolatility = DefaultMinVolatility
		}
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = DefaultMaxCandidates
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	return p
}

// uniqueSymbols trims, upper-cases and de-duplicates symbols, keeping first occurrence.
func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
