// Package display renders analyses, signals and collection results for the
// terminal.
package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stock-trader/internal/analysis"
	"stock-trader/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(80)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	bullishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	bearishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
)

func regimeStyle(s analysis.MarketSentiment) lipgloss.Style {
	switch s {
	case analysis.Bullish:
		return bullishStyle
	case analysis.Bearish:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + value + "\n"
}

func Analysis(a analysis.MarketAnalysis) string {
	sentiment := a.DeterminedMarketSentiment()

	var b strings.Builder
	b.WriteString(row("Date", a.Date().Format("2006-01-02")))
	b.WriteString(row("Score", fmt.Sprintf("%+.2f", a.SentimentScore())))
	b.WriteString(row("Regime", regimeStyle(sentiment).Render(string(sentiment))))
	b.WriteString(row("Strategy", string(a.RecommendedStrategy())))
	b.WriteString(row("Summary", a.Summary()))
	if sectors := a.PrimarySectors(); len(sectors) > 0 {
		b.WriteString(row("Sectors", strings.Join(sectors, ", ")))
	}
	for _, r := range a.Reasons() {
		b.WriteString(row("Reason", r))
	}
	if cited := a.CitedNewsIDs(); len(cited) > 0 {
		b.WriteString(row("Cited", fmt.Sprintf("%d articles", len(cited))))
	}

	return titleStyle.Render("Market Analysis") + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func Signals(signals []service.Signal) string {
	if len(signals) == 0 {
		return panelStyle.Render("No signals")
	}

	var b strings.Builder
	for _, s := range signals {
		mark := bearishStyle.Render("✗")
		if s.Satisfied {
			mark = bullishStyle.Render("✓")
		}
		fmt.Fprintf(&b, "%s %-16s close %-12.2f %s", mark, s.Symbol.String(), s.Close, s.Time.Format("2006-01-02"))
		if s.Regime != "" {
			fmt.Fprintf(&b, "  %s/%s", regimeStyle(s.Regime).Render(string(s.Regime)), s.Strategy)
		}
		b.WriteString("\n")

		ind := service.Indicators(s.Context)
		keys := make([]string, 0, len(ind))
		for k := range ind {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%.2f", k, ind[k]))
		}
		if len(parts) > 0 {
			b.WriteString(labelStyle.Render("  "+strings.Join(parts, " ")) + "\n")
		}
	}

	title := titleStyle.Render("Signals: " + signals[0].Condition)
	return title + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func CollectResult(job string, r service.CollectResult) string {
	var b strings.Builder
	b.WriteString(row("Succeeded", fmt.Sprint(r.SuccessCount)))
	b.WriteString(row("Failed", fmt.Sprint(r.FailedCount)))
	b.WriteString(row("Rows", fmt.Sprint(r.TotalRows)))
	if len(r.FailedSymbols) > 0 {
		b.WriteString(row("Symbols", bearishStyle.Render(strings.Join(r.FailedSymbols, ", "))))
	}
	return titleStyle.Render(job) + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
