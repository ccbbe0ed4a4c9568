package notifier

import (
	"fmt"
	"html"
	"strings"

	"TrendSentinel/internal/model"
)

const dateLayout = "2006-01-02"

// FormatTrendReport formats a computed report into a Telegram message.
func FormatTrendReport(rep *model.TrendReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s trendlines</b> | %s\n\n", html.EscapeString(rep.Symbol), rep.ComputedAt.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("Bars: %d since %s (%s)\n", rep.BarCount, rep.Start.Format(dateLayout), rep.Source))

	st := rep.Stats
	b.WriteString(fmt.Sprintf("Close: %.2f (%+.2f%%)\n", st.LastClose, st.ChangePct))
	if st.SMA50 > 0 || st.SMA200 > 0 {
		b.WriteString(fmt.Sprintf("SMA50: %.2f | SMA200: %.2f | RSI14: %.1f\n", st.SMA50, st.SMA200, st.RSI14))
	}
	if st.High52w > 0 {
		b.WriteString(fmt.Sprintf("52w range: %.2f - %.2f (%.0f%%)\n", st.Low52w, st.High52w, st.Position52w*100))
	}

	b.WriteString("\n📐 <b>Lines:</b>\n")
	if len(rep.Segments) == 0 {
		b.WriteString("  none (not enough data)\n")
	}
	for _, seg := range rep.Segments {
		b.WriteString(fmt.Sprintf("  #%d %s: %.2f → %.2f (%s → %s, slope %+.4f)\n",
			seg.Number, seg.TrendType, seg.StartPrice, seg.EndPrice,
			seg.StartDate.Format(dateLayout), seg.EndDate.Format(dateLayout), seg.Slope))
	}

	if sig := rep.Signal; sig != nil {
		b.WriteString(fmt.Sprintf("\n🎯 <b>Signal:</b> %s (%s)\n", sig.Type, sig.Label))
		if sig.Commentary != "" {
			b.WriteString(fmt.Sprintf("  %s\n", sig.Commentary))
		}
	}
	return b.String()
}

// FormatSignalAlert formats a short alert for an actionable signal.
func FormatSignalAlert(rep *model.TrendReport) string {
	sig := rep.Signal
	if sig == nil {
		return ""
	}

	icon := "🔔"
	level := sig.ResistanceLevel
	switch sig.Type {
	case model.SignalBreakout:
		icon = "🚀"
	case model.SignalBreakdown:
		icon = "⚠️"
		level = sig.SupportLevel
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b>\n", icon, html.EscapeString(rep.Symbol), sig.Type))
	b.WriteString(fmt.Sprintf("Close %.2f vs line %.2f (%+.2f%%, %s)\n", sig.Close, level, sig.DistancePct, sig.Label))
	if sig.Commentary != "" {
		b.WriteString(sig.Commentary)
		b.WriteString("\n")
	}
	return b.String()
}
