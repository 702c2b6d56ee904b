package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalScout/internal/model"
)

var modeTitles = map[model.ScreenMode]string{
	model.ModeDayTrade: "當沖選股",
	model.ModeSwing:    "波段選股",
}

// FormatScreenReport formats a screening run into a Telegram message.
func FormatScreenReport(r *model.ScreenReport) string {
	var b strings.Builder

	title := modeTitles[r.Mode]
	if title == "" {
		title = string(r.Mode)
	}
	b.WriteString(fmt.Sprintf("🔥 <b>SignalScout %s</b> | %s\n\n", title, r.FinishedAt.Format("2006-01-02 15:04")))

	if len(r.Candidates) == 0 {
		b.WriteString("⚠️ 沒有符合條件的股票\n")
	} else {
		for i, c := range r.Candidates {
			b.WriteString(fmt.Sprintf("%d. <b>%s</b> %s 分數 %d/3", i+1, html.EscapeString(c.Symbol), signalIcon(c.Signal), c.Score))
			if c.Probability.Valid {
				b.WriteString(fmt.Sprintf(" | 上漲機率 %.0f%%", c.Probability.Float64*100))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(fmt.Sprintf("\n已評估 %d 檔", r.Evaluated))
	if len(r.Skipped) > 0 {
		names := make([]string, len(r.Skipped))
		for i, s := range r.Skipped {
			names[i] = fmt.Sprintf("%s(%s)", html.EscapeString(s.Symbol), s.Reason)
		}
		b.WriteString(fmt.Sprintf(" | 略過: %s", strings.Join(names, ", ")))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatSignalResult formats a single-symbol analysis.
func FormatSignalResult(r *model.SignalResult) string {
	var b strings.Builder
	row := r.Latest

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n", html.EscapeString(r.Symbol), signalIcon(r.Signal), r.EvaluatedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("收盤價: %.2f\n", row.Close))

	mas := row.MovingAverages(r.Variant)
	labels := []string{"MA5", "MA10", "MA20", "MA30"}
	parts := make([]string, 0, len(mas))
	for i, v := range mas {
		parts = append(parts, fmt.Sprintf("%s %s", labels[i], fmtValue(v)))
	}
	b.WriteString(strings.Join(parts, " | ") + "\n")
	b.WriteString(fmt.Sprintf("RSI: %s | MACD: %s / %s\n", fmtValue(row.RSI), fmtValue(row.MACD), fmtValue(row.MACDSignal)))
	b.WriteString(fmt.Sprintf("KD: %s / %s\n", fmtValue(row.KDK), fmtValue(row.KDD)))

	if t := r.Targets; t != nil {
		b.WriteString("\n💰 <b>價位建議:</b>\n")
		b.WriteString(fmt.Sprintf("  支撐 %.2f | 壓力 %.2f\n", t.Support, t.Resistance))
		b.WriteString(fmt.Sprintf("  買進 %.2f | 賣出 %.2f\n", t.SuggestedBuy, t.SuggestedSell))
		b.WriteString(fmt.Sprintf("  停損 %.2f | 停利 %.2f\n", t.StopLoss, t.TakeProfit))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>SignalScout 指令</b>\n\n" +
		"/screen - 當沖選股\n" +
		"/swing - 波段選股\n" +
		"/signal &lt;代號&gt; - 個股訊號與價位\n" +
		"/help - 顯示說明\n"
}

// FormatError formats a failed command.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s 失敗: %s", action, html.EscapeString(err.Error()))
}

func signalIcon(s model.Signal) string {
	if s == model.SignalBuy {
		return "🟢 BUY"
	}
	return "⚪ HOLD"
}

func fmtValue(v model.Value) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
