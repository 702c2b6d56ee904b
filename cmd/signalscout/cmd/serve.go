package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"SignalScout/internal/api"
	"SignalScout/internal/model"
	"SignalScout/internal/notifier"
	"SignalScout/internal/scheduler"
)

var (
	serveRunNow bool
	serveNoCron bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduled screens and the Telegram bot",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "run both screens once at startup")
	serveCmd.Flags().BoolVar(&serveNoCron, "no-cron", false, "disable scheduled screens")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info().Str("version", Version).Msg("SignalScout starting")

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, reports are not pushed")
	}

	sched := scheduler.NewScheduler(ctx, a.screeners, a.collector, sender)
	if !serveNoCron {
		if err := sched.RegisterAll(cfg.Schedule.DayTradeCron, cfg.Schedule.SwingCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(api.Config{
			Collector: a.collector,
			Screeners: a.screeners,
			Metrics:   a.metrics,
			Version:   Version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}
	if serveRunNow {
		g.Go(func() error {
			sched.RunNow(model.ModeDayTrade)
			sched.RunNow(model.ModeSwing)
			return nil
		})
	}

	log.Info().Msg("SignalScout is running. Press Ctrl+C to stop.")
	err = g.Wait()
	log.Info().Msg("SignalScout stopped")
	return err
}
