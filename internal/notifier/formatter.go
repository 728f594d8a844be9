package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/model"
)

// FormatForecastReport formats one asset forecast into a Telegram message.
func FormatForecastReport(asset *model.Asset, res *model.ForecastResult) string {
	var b strings.Builder

	name := res.AssetID
	if asset != nil && asset.Name != "" {
		name = asset.Name
	}
	b.WriteString(fmt.Sprintf("🔮 <b>%s</b> | %s\n\n", html.EscapeString(name), res.GeneratedAt.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Current: %.2f\n", res.CurrentPrice))
	b.WriteString(fmt.Sprintf("Predicted (%dd): %.2f (%+.1f%%)\n", res.HorizonDays, res.PredictedValue, res.ChangePercent()))
	b.WriteString(fmt.Sprintf("Confidence: %.0f%%\n\n", res.Confidence*100))

	f := res.Features
	b.WriteString("📈 <b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("  Trend: %s | RSI: %.1f\n", f.Trend, f.RSI))
	b.WriteString(fmt.Sprintf("  Volatility: %.1f%% | Data quality: %.0f%%\n\n", f.Volatility, f.DataQuality*100))

	b.WriteString("🧮 <b>Models:</b>\n")
	for _, m := range res.Models {
		b.WriteString(fmt.Sprintf("  %s: %.2f (×%.2f)\n", m.Name, m.Value, m.Weight))
	}

	if len(res.RiskFactors) > 0 {
		b.WriteString("\n⚠️ <b>Risks:</b>\n")
		for _, r := range res.RiskFactors {
			b.WriteString("  • " + html.EscapeString(r) + "\n")
		}
	}
	return b.String()
}

// FormatPortfolioSummary formats the portfolio totals for display.
func FormatPortfolioSummary(sum model.PortfolioSummary, currency string) string {
	var b strings.Builder
	b.WriteString("📦 <b>Portfolio</b>\n\n")
	b.WriteString(fmt.Sprintf("Assets: %d\n", sum.AssetCount))
	b.WriteString(fmt.Sprintf("Value: %s %s\n", sum.TotalValue.StringFixed(2), currency))
	b.WriteString(fmt.Sprintf("Cost: %s %s\n", sum.TotalCost.StringFixed(2), currency))
	b.WriteString(fmt.Sprintf("Gain: %s %s (%s%%)\n", signed(sum.TotalGain), currency, signed(sum.GainPercent)))

	if len(sum.ByCategory) > 0 {
		b.WriteString("\n<b>By category:</b>\n")
		for _, ct := range sum.ByCategory {
			b.WriteString(fmt.Sprintf("  %s: %s (%d)\n", ct.Category, ct.Value.StringFixed(2), ct.Count))
		}
	}
	return b.String()
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatLedgerReminders lists entries that are due soon or overdue. It
// returns "" when there is nothing to remind about.
func FormatLedgerReminders(reminders []ledger.Reminder, now time.Time) string {
	if len(reminders) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("⏰ <b>Ledger reminders</b>\n\n")
	for _, r := range reminders {
		e := r.Entry
		verb := "Repay"
		if r.Kind == model.LedgerLent {
			verb = "Collect"
		}
		status := fmt.Sprintf("due %s", e.EndDate.Format("2006-01-02"))
		if r.Overdue {
			days := int(now.Sub(e.EndDate).Hours() / 24)
			status = fmt.Sprintf("<b>overdue</b> by %dd", days)
		}
		line := fmt.Sprintf("• %s %s", verb, e.Amount.StringFixed(2))
		if e.Counterparty != "" {
			line += " · " + html.EscapeString(e.Counterparty)
		}
		if e.Purpose != "" {
			line += " (" + html.EscapeString(e.Purpose) + ")"
		}
		b.WriteString(line + ", " + status + "\n")
	}
	return b.String()
}

// FormatLedgerOverview shows the open totals of both collections.
func FormatLedgerOverview(borrowed, lent decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("📒 <b>Ledger</b>\n\n")
	b.WriteString(fmt.Sprintf("Borrowed (open): %s\n", borrowed.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Lent (open): %s\n", lent.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Net: %s\n", signed(lent.Sub(borrowed))))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>AssetSentinel</b>\n\n" +
		"/forecast &lt;assetId&gt; - forecast one asset\n" +
		"/portfolio - portfolio summary\n" +
		"/ledger - borrowed and lent totals\n" +
		"/help - this message\n"
}
