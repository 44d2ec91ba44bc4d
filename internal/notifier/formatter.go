package notifier

import (
	"fmt"
	"strings"

	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/model"
)

var recommendationIcons = map[model.Recommendation]string{
	model.StrongBuy:  "🟢🟢",
	model.Buy:        "🟢",
	model.Neutral:    "⚪",
	model.Sell:       "🔴",
	model.StrongSell: "🔴🔴",
}

func icon(r model.Recommendation) string {
	if s, ok := recommendationIcons[r]; ok {
		return s
	}
	return "⚪"
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatSnapshot formats a latest-values snapshot into a Telegram message.
func FormatSnapshot(symbol string, lv *model.LatestValues) string {
	var b strings.Builder

	date := "-"
	if lv.Price != nil {
		date = lv.Price.Date.Format("2006-01-02")
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", symbol, date))

	if lv.Price != nil {
		p := lv.Price
		b.WriteString(fmt.Sprintf("Close: %.2f (O %.2f H %.2f L %.2f)\n", p.Close, p.Open, p.High, p.Low))
		b.WriteString(fmt.Sprintf("Volume: %d\n\n", p.Volume))
	}

	b.WriteString(fmt.Sprintf("SMA20/50/200: %s / %s / %s\n", fmtOpt(lv.SMA.SMA20), fmtOpt(lv.SMA.SMA50), fmtOpt(lv.SMA.SMA200)))
	b.WriteString(fmt.Sprintf("EMA9/21: %s / %s\n", fmtOpt(lv.EMA.EMA9), fmtOpt(lv.EMA.EMA21)))

	rsi := fmtOpt(lv.RSI)
	if lv.RSI != nil {
		rsi += " (" + calculator.Interpret("rsi", *lv.RSI) + ")"
	}
	b.WriteString(fmt.Sprintf("RSI(14): %s\n", rsi))

	hist := fmtOpt(lv.MACD.Histogram)
	if lv.MACD.Histogram != nil {
		hist += " (" + calculator.Interpret("macd", *lv.MACD.Histogram) + ")"
	}
	b.WriteString(fmt.Sprintf("MACD: %s | signal %s | hist %s\n", fmtOpt(lv.MACD.Line), fmtOpt(lv.MACD.Signal), hist))
	b.WriteString(fmt.Sprintf("Bollinger: %s / %s / %s\n", fmtOpt(lv.BollingerBands.Upper), fmtOpt(lv.BollingerBands.Middle), fmtOpt(lv.BollingerBands.Lower)))
	b.WriteString(fmt.Sprintf("ATR(14): %s\n", fmtOpt(lv.ATR)))
	b.WriteString(fmt.Sprintf("Stochastic %%K/%%D: %s / %s\n\n", fmtOpt(lv.Stochastic.K), fmtOpt(lv.Stochastic.D)))

	sig := lv.Signals
	b.WriteString(fmt.Sprintf("%s <b>%s</b> (score %d/100)\n", icon(sig.Recommendation), sig.Recommendation, sig.Score))
	b.WriteString(formatBundle(sig.Signals))
	return b.String()
}

func formatBundle(sb model.SignalBundle) string {
	var parts []string
	if sb.Trend != nil {
		parts = append(parts, "trend "+string(*sb.Trend))
	}
	if sb.RSI != nil {
		parts = append(parts, "RSI "+string(*sb.RSI))
	}
	if sb.MACD != nil {
		parts = append(parts, "MACD "+string(*sb.MACD))
	}
	if sb.BollingerBands != nil {
		parts = append(parts, "BB "+string(*sb.BollingerBands))
	}
	if len(parts) == 0 {
		return "Not enough history for signals.\n"
	}
	return strings.Join(parts, " · ") + "\n"
}

// FormatRecommendationChange formats an alert for a changed recommendation.
func FormatRecommendationChange(symbol string, prev, cur model.RecommendationResult) string {
	return fmt.Sprintf("🔔 <b>%s</b> recommendation changed\n\n%s %s → %s %s (score %d → %d)\n%s",
		symbol,
		icon(prev.Recommendation), prev.Recommendation,
		icon(cur.Recommendation), cur.Recommendation,
		prev.Score, cur.Score,
		formatBundle(cur.Signals))
}

// FormatRefreshSummary formats the outcome of a scheduled refresh.
func FormatRefreshSummary(updated int, failed map[string]error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>Refresh complete</b>: %d updated", updated))
	if len(failed) == 0 {
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf(", %d failed\n", len(failed)))
	for sym, err := range failed {
		b.WriteString(fmt.Sprintf("• %s: %v\n", sym, err))
	}
	return b.String()
}
