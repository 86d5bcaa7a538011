package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/ui/components"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

// visibleItems is how many gallery rows are shown around the cursor.
const visibleItems = 8

// View renders the history tab.
func (m *Model) View() string {
	items := m.state.GetHistory()

	var sections []string
	sections = append(sections, m.renderHeader(len(items)))

	if m.confirmClear {
		sections = append(sections, m.renderClearConfirm(len(items)))
	}

	if len(items) == 0 {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections, m.renderGallery(items))
	}

	sections = append(sections, m.renderStats())

	if len(items) > 0 {
		sections = append(sections, m.renderWeekdays(items))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader(count int) string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	subtitle := fmt.Sprintf("%d saved %s", count, plural(count, "image", "images"))
	if m.stats != nil && !m.stats.LastGeneration.IsZero() {
		subtitle += " • last generation " + humanize.Time(m.stats.LastGeneration)
	}
	if m.loading {
		subtitle += " • refreshing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderEmpty() string {
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Gallery"),
		styles.HelpStyle.Render("No images yet."),
		styles.HelpStyle.Render("Your paper art will appear here after your first transformation."),
	))
}

// renderGallery renders a window of history items around the cursor.
func (m *Model) renderGallery(items []models.ImageHistoryItem) string {
	cardWidth := m.cardWidth()
	inner := cardWidth - 6

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Gallery"))

	start := max(0, m.cursor-visibleItems/2)
	end := min(len(items), start+visibleItems)
	start = max(0, end-visibleItems)

	if start > 0 {
		rows = append(rows, styles.MutedTextStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		rows = append(rows, m.renderItem(i, items[i], inner))
	}
	if end < len(items) {
		rows = append(rows, styles.MutedTextStyle.Render(fmt.Sprintf("  ↓ %d more", len(items)-end)))
	}

	if item, ok := m.selected(items); ok {
		rows = append(rows, "")
		rows = append(rows, styles.URLStyle.Render(ansi.Truncate(item.URL, inner, "…")))
		rows = append(rows, styles.MutedTextStyle.Width(inner).Render(ansi.Truncate(item.Prompt, inner*3, "…")))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderItem(i int, item models.ImageHistoryItem, width int) string {
	when := "unknown time"
	if t := item.CreatedAt(); !t.IsZero() {
		when = humanize.Time(t)
	}

	prefix := fmt.Sprintf("%2d. %-16s ", i+1, when)
	prompt := ansi.Truncate(strings.ReplaceAll(item.Prompt, "\n", " "), max(width-len(prefix)-2, 10), "…")

	if i == m.cursor {
		return styles.SelectedListItemStyle.Render("› " + prefix + prompt)
	}
	return styles.ListItemStyle.Render("  " + prefix + prompt)
}

// renderStats renders the generation log chart and totals.
func (m *Model) renderStats() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Daily Generations"))

	switch {
	case m.errorMsg != "":
		rows = append(rows, styles.ErrorTextStyle.Render("Error: ")+m.errorMsg)
	case m.stats == nil:
		rows = append(rows, styles.HelpStyle.Render("Statistics load when this tab is opened (r to refresh)"))
	default:
		chartWidth := max(cardWidth-12, 30)
		chart := components.RenderDailyChart(m.daily, chartWidth, 8)
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}
		rows = append(rows, "")
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "Succeeded", Color: styles.Success},
			{Label: "Failed", Color: styles.Error},
		}))
		rows = append(rows, "")
		rows = append(rows, m.renderTotals(*m.stats)...)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTotals(stats models.GenerationStats) []string {
	totals := make([]float64, len(m.daily))
	for i, d := range m.daily {
		totals[i] = float64(d.Succeeded + d.Failed)
	}

	avg := time.Duration(stats.AvgDurationMs * float64(time.Millisecond)).Round(100 * time.Millisecond)

	rows := []string{
		m.renderRow("Total", fmt.Sprintf("%d", stats.Total)),
		m.renderRow("Succeeded", styles.SuccessTextStyle.Render(fmt.Sprintf("%d", stats.Succeeded))),
		m.renderRow("Failed", styles.ErrorTextStyle.Render(fmt.Sprintf("%d", stats.Failed))),
		m.renderRow("Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate())),
		m.renderRow("Avg duration", avg.String()),
	}
	if spark := components.RenderSparkline(totals, len(totals)); spark != "" {
		rows = append(rows, m.renderRow("Trend", lipgloss.NewStyle().Foreground(styles.Primary).Render(spark)))
	}
	return rows
}

// renderWeekdays renders how the saved images spread over the week.
func (m *Model) renderWeekdays(items []models.ImageHistoryItem) string {
	cardWidth := m.cardWidth()

	counts := make([]float64, 7)
	labels := make([]string, 7)
	for d := range 7 {
		labels[d] = time.Weekday(d).String()[:3]
	}
	for _, item := range items {
		if t := item.CreatedAt(); !t.IsZero() {
			counts[t.Local().Weekday()]++
		}
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("By Weekday"))
	chart := components.RenderBarChart(counts, labels, max(cardWidth-12, 30))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderClearConfirm renders the clear history confirmation dialog.
func (m *Model) renderClearConfirm(count int) string {
	cardWidth := 50

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Clear History?"),
		"",
		fmt.Sprintf("This removes %d saved %s.", count, plural(count, "image", "images")),
		"",
		"This action cannot be undone.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(cardWidth).Render(content),
		m.width,
	)
}

func (m *Model) renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(14).
		Foreground(styles.TextMuted)

	return "  " + labelStyle.Render(label+":") + " " + value
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
