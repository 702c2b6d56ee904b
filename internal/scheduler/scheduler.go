package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SignalScout/internal/collector"
	"SignalScout/internal/model"
	"SignalScout/internal/notifier"
	"SignalScout/internal/screener"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the screening jobs and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Screeners map[model.ScreenMode]*screener.Screener
	Collector *collector.Collector
	Notifier  Sender // nil disables pushes
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, screeners map[model.ScreenMode]*screener.Screener, col *collector.Collector, n Sender) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Screeners: screeners,
		Collector: col,
		Notifier:  n,
		Ctx:       ctx,
	}
}

// RegisterAll registers the day-trade and swing screening jobs.
func (s *Scheduler) RegisterAll(dayTradeCron, swingCron string) error {
	if _, err := s.Cron.AddFunc(dayTradeCron, func() { s.screenTask(model.ModeDayTrade) }); err != nil {
		return fmt.Errorf("register daytrade task: %w", err)
	}
	if _, err := s.Cron.AddFunc(swingCron, func() { s.screenTask(model.ModeSwing) }); err != nil {
		return fmt.Errorf("register swing task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow screens a mode immediately and pushes the report.
func (s *Scheduler) RunNow(mode model.ScreenMode) *model.ScreenReport {
	return s.screenTask(mode)
}

func (s *Scheduler) screenTask(mode model.ScreenMode) *model.ScreenReport {
	sc, ok := s.Screeners[mode]
	if !ok {
		log.Error().Str("mode", string(mode)).Msg("no screener configured")
		return nil
	}
	log.Info().Str("mode", string(mode)).Msg("running screening task")
	report := sc.Screen(s.Ctx, nil)
	s.trySend(notifier.FormatScreenReport(report))
	return report
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Telegram appends @botname to commands in group chats.
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/screen", "當沖選股":
		return s.screenReply(ctx, model.ModeDayTrade)
	case "/swing", "波段選股":
		return s.screenReply(ctx, model.ModeSwing)
	case "/signal", "個股":
		if len(fields) < 2 {
			return "用法: /signal &lt;代號&gt;"
		}
		if s.Collector == nil {
			return unavailable("/signal")
		}
		res, err := s.Collector.Analyze(ctx, strings.ToUpper(fields[1]))
		if err != nil {
			return notifier.FormatError(fields[1], err)
		}
		return notifier.FormatSignalResult(res)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) screenReply(ctx context.Context, mode model.ScreenMode) string {
	sc, ok := s.Screeners[mode]
	if !ok {
		return unavailable(string(mode))
	}
	return notifier.FormatScreenReport(sc.Screen(ctx, nil))
}

func unavailable(what string) string {
	return fmt.Sprintf("⚠️ %s 未啟用", what)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Debug().Msg("notifier disabled, report not pushed")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification failed")
	}
}

// cronLogger routes cron's internal logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
