package screener

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"SignalScout/internal/calculator"
	"SignalScout/internal/collector"
	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
	"SignalScout/internal/predictor"
	"SignalScout/internal/strategy"
)

// MaxScore is the highest momentum score a symbol can reach.
const MaxScore = 3

// Skip reasons, also used as metric labels.
const (
	ReasonNotFound     = "not_found"
	ReasonFetchFailed  = "fetch_failed"
	ReasonInsufficient = "insufficient_data"
	ReasonMalformed    = "malformed_data"
	ReasonLiquidity    = "liquidity_gate"
)

// Screener ranks a symbol universe under one Policy.
type Screener struct {
	policy  Policy
	fetcher collector.Fetcher
	scorer  predictor.Scorer
	metrics *metrics.Metrics
}

type Option func(*Screener)

// WithScorer attaches an external probability to every candidate.
// The probability never changes which symbols are kept.
func WithScorer(s predictor.Scorer) Option {
	return func(sc *Screener) { sc.scorer = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(sc *Screener) { sc.metrics = m }
}

// New creates a Screener. Zero policy fields take their mode defaults.
func New(policy Policy, fetcher collector.Fetcher, opts ...Option) *Screener {
	s := &Screener{policy: policy.withDefaults(), fetcher: fetcher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the effective policy.
func (s *Screener) Policy() Policy { return s.policy }

func (s *Screener) gated() bool {
	return s.policy.Mode == model.ModeDayTrade && !s.policy.SkipLiquidityGate
}

// Score counts the bullish momentum conditions of a row, treating undefined
// readings as zero.
func Score(row model.IndicatorRow, rsiThreshold float64) int {
	score := 0
	if row.RSI.OrZero() > rsiThreshold {
		score++
	}
	if row.MACD.OrZero() > row.MACDSignal.OrZero() {
		score++
	}
	if row.KDK.OrZero() > row.KDD.OrZero() {
		score++
	}
	return score
}

// PassesLiquidityGate reports whether the latest bar trades at least its
// five-day average volume and moves at least minVolatility.
func PassesLiquidityGate(row model.IndicatorRow, minVolatility float64) bool {
	if row.Volume < row.VolumeMA5.OrZero() {
		return false
	}
	return row.Volatility.OrZero() >= minVolatility
}

type outcome struct {
	candidate *model.ScreeningCandidate
	skip      string
	evaluated bool
}

// Screen evaluates symbols (or the policy universe when symbols is empty)
// and returns at most MaxCandidates ranked candidates. Per-symbol failures
// are reported in Skipped; the run itself never fails.
func (s *Screener) Screen(ctx context.Context, symbols []string) *model.ScreenReport {
	if len(symbols) == 0 {
		symbols = s.policy.Symbols
	}
	symbols = uniqueSymbols(symbols)

	report := &model.ScreenReport{
		RunID:      uuid.NewString(),
		Mode:       s.policy.Mode,
		Candidates: []model.ScreeningCandidate{},
		Skipped:    []model.SkippedSymbol{},
		StartedAt:  time.Now(),
	}
	log.Info().
		Str("run_id", report.RunID).
		Str("mode", string(report.Mode)).
		Int("symbols", len(symbols)).
		Msg("screening started")

	outcomes := make([]outcome, len(symbols))
	var g errgroup.Group
	g.SetLimit(s.policy.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			outcomes[i] = s.evaluate(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if o.evaluated {
			report.Evaluated++
		}
		if o.skip != "" {
			report.Skipped = append(report.Skipped, model.SkippedSymbol{Symbol: symbols[i], Reason: o.skip})
			s.metrics.ObserveSkip(report.Mode, o.skip)
			continue
		}
		if o.candidate != nil {
			report.Candidates = append(report.Candidates, *o.candidate)
		}
	}

	sort.SliceStable(report.Candidates, func(a, b int) bool {
		return report.Candidates[a].Score > report.Candidates[b].Score
	})
	if len(report.Candidates) > s.policy.MaxCandidates {
		report.Candidates = report.Candidates[:s.policy.MaxCandidates]
	}
	report.FinishedAt = time.Now()
	s.metrics.ObserveScreen(report)

	log.Info().
		Str("run_id", report.RunID).
		Str("mode", string(report.Mode)).
		Int("evaluated", report.Evaluated).
		Int("skipped", len(report.Skipped)).
		Int("candidates", len(report.Candidates)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("screening finished")
	return report
}

func (s *Screener) evaluate(ctx context.Context, symbol string) outcome {
	series, err := s.fetcher.FetchDailyBars(ctx, symbol, s.policy.Lookback)
	if err != nil {
		reason := ReasonFetchFailed
		if errors.Is(err, model.ErrSymbolNotFound) {
			reason = ReasonNotFound
		}
		log.Warn().Err(err).Str("symbol", symbol).Str("reason", reason).Msg("symbol skipped")
		return outcome{skip: reason}
	}

	auxiliary := s.gated() || s.scorer != nil
	table, err := calculator.Compute(series, calculator.Options{Variant: s.policy.Variant, Auxiliary: auxiliary})
	if err != nil {
		reason := ReasonInsufficient
		if errors.Is(err, model.ErrMalformedSeries) {
			reason = ReasonMalformed
		}
		log.Warn().Err(err).Str("symbol", symbol).Str("reason", reason).Msg("symbol skipped")
		return outcome{skip: reason}
	}

	latest := table.Latest()
	if s.gated() && !PassesLiquidityGate(latest, s.policy.MinVolatility) {
		log.Debug().
			Str("symbol", symbol).
			Float64("volume", latest.Volume).
			Float64("volume_ma5", latest.VolumeMA5.OrZero()).
			Float64("volatility", latest.Volatility.OrZero()).
			Msg("liquidity gate rejected")
		return outcome{skip: ReasonLiquidity, evaluated: true}
	}

	score := Score(latest, s.policy.RSIThreshold)
	cand := &model.ScreeningCandidate{Symbol: symbol, Score: score, Signal: model.SignalHold}

	switch s.policy.Mode {
	case model.ModeSwing:
		if strategy.Evaluate(latest, s.policy.Variant) != model.SignalBuy {
			return outcome{evaluated: true}
		}
		cand.Signal = model.SignalBuy
	default:
		if score < s.policy.ScoreCutoff {
			return outcome{evaluated: true}
		}
		if score == MaxScore {
			cand.Signal = model.SignalBuy
		}
	}

	if s.scorer != nil {
		cand.Probability = s.probability(ctx, symbol, table)
	}
	return outcome{candidate: cand, evaluated: true}
}

func (s *Screener) probability(ctx context.Context, symbol string, table *model.IndicatorTable) model.Value {
	window, err := predictor.LatestWindow(table, predictor.WindowWidth)
	if err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("no feature window")
		return model.None
	}
	p, err := s.scorer.Score(ctx, symbol, window)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("scorer failed")
		return model.None
	}
	return model.Some(p)
}
