package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"SignalScout/internal/collector"
	"SignalScout/internal/model"
	"SignalScout/internal/screener"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recordingSender) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return r.err
}

func newTestScheduler(sender Sender) (*Scheduler, *collector.MockFetcher) {
	fetcher := &collector.MockFetcher{Price: 100}
	day := screener.DayTradePolicy()
	day.Symbols = []string{"AAA", "BBB"}
	swing := screener.SwingPolicy()
	swing.Symbols = []string{"AAA"}
	screeners := map[model.ScreenMode]*screener.Screener{
		model.ModeDayTrade: screener.New(day, fetcher),
		model.ModeSwing:    screener.New(swing, fetcher),
	}
	col := collector.NewCollector(fetcher, model.Window3, model.Lookback6M, nil)
	return NewScheduler(context.Background(), screeners, col, sender), fetcher
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(nil)
	if err := s.RegisterAll("0 30 8 * * 1-5", "0 0 14 * * 1-5"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("expected 2 jobs, got %d", n)
	}

	s, _ = newTestScheduler(nil)
	if err := s.RegisterAll("not a cron", "0 0 14 * * 1-5"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestRunNow_PushesReport(t *testing.T) {
	sender := &recordingSender{}
	s, fetcher := newTestScheduler(sender)

	report := s.RunNow(model.ModeDayTrade)
	if report == nil || report.Mode != model.ModeDayTrade {
		t.Fatalf("unexpected report %+v", report)
	}
	if fetcher.Calls("AAA") != 1 || fetcher.Calls("BBB") != 1 {
		t.Errorf("expected each symbol fetched once")
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "當沖選股") {
		t.Errorf("unexpected pushes %v", sender.sent)
	}

	// Push failures are logged, never fatal.
	sender.err = errors.New("telegram down")
	if s.RunNow(model.ModeSwing) == nil {
		t.Error("expected a swing report")
	}
}

func TestRunNow_UnknownMode(t *testing.T) {
	s, _ := newTestScheduler(nil)
	if s.RunNow("scalp") != nil {
		t.Error("expected nil report for unknown mode")
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(nil)
	ctx := context.Background()

	tests := []struct {
		command string
		want    string
	}{
		{"/screen", "當沖選股"},
		{"/screen@SignalScoutBot", "當沖選股"},
		{"波段選股", "波段選股"},
		{"/signal 2330.tw", "<b>2330.TW</b>"},
		{"/signal", "用法"},
		{"/unknown", "/help"},
		{"", "/help"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(ctx, tt.command); !strings.Contains(got, tt.want) {
			t.Errorf("%q: reply missing %q:\n%s", tt.command, tt.want, got)
		}
	}
}

func TestHandleCommand_SignalError(t *testing.T) {
	s, fetcher := newTestScheduler(nil)
	fetcher.Errs = map[string]error{"DOWN": errors.New("upstream timeout")}
	got := s.HandleCommand(context.Background(), "/signal down")
	if !strings.Contains(got, "失敗") || !strings.Contains(got, "upstream timeout") {
		t.Errorf("unexpected reply %s", got)
	}
}
