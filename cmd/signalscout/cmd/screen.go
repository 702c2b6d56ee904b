package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"SignalScout/internal/model"
	"SignalScout/internal/notifier"
)

var (
	screenMode    string
	screenSymbols []string
	screenJSON    bool
	screenNotify  bool
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Rank the symbol universe for day-trade or swing candidates",
	Example: `  signalscout screen --mode daytrade
  signalscout screen --mode swing --symbols 2330.TW,2317.TW --notify`,
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().StringVar(&screenMode, "mode", string(model.ModeDayTrade), "daytrade or swing")
	screenCmd.Flags().StringSliceVar(&screenSymbols, "symbols", nil, "override the configured universe")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "print JSON")
	screenCmd.Flags().BoolVar(&screenNotify, "notify", false, "push the report to Telegram")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := model.ScreenMode(strings.ToLower(screenMode))
	sc, ok := a.screeners[mode]
	if !ok {
		return fmt.Errorf("unknown mode %q (daytrade, swing)", screenMode)
	}
	report := sc.Screen(cmd.Context(), screenSymbols)

	out := cmd.OutOrStdout()
	if screenJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s screen %s: %d evaluated, %d skipped\n", report.Mode, report.RunID, report.Evaluated, len(report.Skipped))
		if len(report.Candidates) == 0 {
			fmt.Fprintln(out, "  no candidates")
		}
		for i, c := range report.Candidates {
			fmt.Fprintf(out, "  %d. %-10s score %d  %s", i+1, c.Symbol, c.Score, c.Signal)
			if c.Probability.Valid {
				fmt.Fprintf(out, "  p(up) %.2f", c.Probability.Float64)
			}
			fmt.Fprintln(out)
		}
		for _, s := range report.Skipped {
			fmt.Fprintf(out, "  skipped %s: %s\n", s.Symbol, s.Reason)
		}
	}

	if screenNotify {
		if !cfg.TelegramEnabled() {
			return fmt.Errorf("--notify needs telegram.bot_token and telegram.chat_id")
		}
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(cmd.Context(), notifier.FormatScreenReport(report), 3); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
	}
	return nil
}
