package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"SignalScout/internal/model"
)

var (
	analyzeVariant  int
	analyzeLookback int
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <SYMBOL>...",
	Short: "Evaluate the signal and price targets of symbols",
	Example: `  signalscout analyze 2330.TW
  signalscout analyze 2330.TW 2454.TW --variant 4 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeVariant, "variant", 3, "moving-average variant: 3 (MA5/10/20) or 4 (adds MA30)")
	analyzeCmd.Flags().IntVar(&analyzeLookback, "lookback", 6, "history in months: 6 or 12")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	variant := model.MAVariant(analyzeVariant)
	if variant != model.Window3 && variant != model.Window4 {
		return fmt.Errorf("--variant must be 3 or 4")
	}
	lookback := model.Lookback(analyzeLookback)
	if lookback != model.Lookback6M && lookback != model.Lookback12M {
		return fmt.Errorf("--lookback must be 6 or 12")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.collector.Lookback = lookback

	out := cmd.OutOrStdout()
	var failed int
	for _, symbol := range args {
		res, err := a.collector.AnalyzeVariant(cmd.Context(), symbol, variant)
		if err != nil {
			failed++
			log.Error().Err(err).Str("symbol", symbol).Msg("analyze failed")
			continue
		}
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		printSignal(out, res)
	}
	if failed == len(args) {
		return fmt.Errorf("no symbol could be analyzed")
	}
	return nil
}

func printSignal(w io.Writer, r *model.SignalResult) {
	row := r.Latest
	fmt.Fprintf(w, "%s  %s  close %.2f  (%s)\n", r.Symbol, r.Signal, row.Close, row.Time.Format("2006-01-02"))
	fmt.Fprintf(w, "  RSI %s  MACD %s/%s  KD %s/%s\n",
		fmtValue(row.RSI), fmtValue(row.MACD), fmtValue(row.MACDSignal), fmtValue(row.KDK), fmtValue(row.KDD))
	if t := r.Targets; t != nil {
		fmt.Fprintf(w, "  support %.2f  resistance %.2f\n", t.Support, t.Resistance)
		fmt.Fprintf(w, "  buy %.2f  sell %.2f  stop %.2f  take profit %.2f\n",
			t.SuggestedBuy, t.SuggestedSell, t.StopLoss, t.TakeProfit)
	}
}

func fmtValue(v model.Value) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
