package studio

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/ui/components"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

const maxPromptWidth = 240

// View renders the studio tab.
func (m *Model) View() string {
	if !m.state.IsInitialized() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderCreditsCard())
	sections = append(sections, m.renderSettingsCard())
	sections = append(sections, m.renderGenerateCard())

	if res := m.state.GetLastResult(); res != nil {
		sections = append(sections, m.renderResultCard(*res))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(50, min(m.width-6, 80))
}

// renderTitle renders the studio title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Paper Art Studio")
	subtitle := styles.HelpStyle.Render("Transform a photo into layered paper art")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderCreditsCard renders the daily credit bar, and the countdown once the
// credits are gone.
func (m *Model) renderCreditsCard() string {
	cardWidth := m.cardWidth()
	inner := cardWidth - 6
	entry := m.state.GetCredits()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Daily Credits"))
	rows = append(rows, m.creditBar.View(entry.CreditsRemaining, entry.Limit(), inner))

	state := m.state.GetCreditState()
	stateStyle := styles.GetCreditsStyle(remainingPercent(entry), state == models.CreditsExhausted)
	rows = append(rows, "")
	rows = append(rows, m.renderRow("Status", stateStyle.Render(state.String())))
	rows = append(rows, m.renderRow("Used today", fmt.Sprintf("%d", entry.CreditsUsed)))

	if state == models.CreditsExhausted {
		countdown := m.state.GetCountdown()
		rows = append(rows, "")
		rows = append(rows, styles.CreditsExhaustedStyle.Render(app.NoCreditsMessage))
		rows = append(rows, "")
		rows = append(rows, styles.TimerStyle.Render(countdown.String())+"  "+
			styles.MutedTextStyle.Render("until credits reset"))
		rows = append(rows, components.TimeBar(countdownDuration(countdown), inner))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSettingsCard renders the image path and the generator settings.
func (m *Model) renderSettingsCard() string {
	cardWidth := m.cardWidth()
	prefs := m.state.GetPreferences()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Transformation"))

	var image string
	switch {
	case m.editing:
		image = m.pathInput.View()
	case m.path == "":
		image = styles.MutedTextStyle.Render("No image selected (press i)")
	default:
		image = styles.InfoTextStyle.Render(m.path)
	}
	rows = append(rows, m.renderRow("Image", image))
	rows = append(rows, m.renderRow("Paper style", renderIntensities(prefs.StyleIntensity)))

	opt := prefs.AspectRatio.Option()
	ratio := fmt.Sprintf("‹ %s ›", opt.Display())
	pos := styles.MutedTextStyle.Render(fmt.Sprintf("%d/%d", ratioIndex(opt.Ratio)+1, len(models.AspectRatios)))
	rows = append(rows, m.renderRow("Canvas", styles.SuccessTextStyle.Render(ratio)+" "+pos))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderIntensities(selected models.StyleIntensity) string {
	parts := make([]string, 0, len(models.StyleIntensities))
	for _, s := range models.StyleIntensities {
		if s == selected {
			parts = append(parts, styles.ButtonActiveStyle.Render(s.Label()))
		} else {
			parts = append(parts, styles.ButtonInactiveStyle.Render(s.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// renderGenerateCard renders the generate button, or the progress while a
// transformation runs.
func (m *Model) renderGenerateCard() string {
	cardWidth := m.cardWidth()
	progress := m.state.GetProgress()

	var rows []string
	if progress.Active {
		rows = append(rows, m.spinner.ViewWithLabel())
		rows = append(rows, "")
		rows = append(rows, m.genBar.View(progress.Percent, progress.Label, cardWidth-6))
	} else {
		rows = append(rows, m.renderButton())
		if !m.state.IsSignedIn() {
			rows = append(rows, "")
			rows = append(rows, styles.WarningTextStyle.Render("Sign in on the Account tab to start creating"))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderButton() string {
	if !m.canGenerate() {
		return styles.ButtonInactiveStyle.Render(styles.DisabledStyle.Render("Generate Paper Art"))
	}
	hint := styles.HelpStyle.Render("press g")
	return styles.ButtonActiveStyle.Render("Generate Paper Art") + " " + hint
}

// renderResultCard renders the most recent image of this session.
func (m *Model) renderResultCard(item models.ImageHistoryItem) string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Your Paper Art"))
	rows = append(rows, styles.URLStyle.Render(ansi.Truncate(item.URL, cardWidth-6, "…")))
	rows = append(rows, "")
	rows = append(rows, styles.MutedTextStyle.Width(cardWidth-6).Render(
		ansi.Truncate(strings.TrimSpace(item.Prompt), maxPromptWidth, "…")))
	rows = append(rows, "")
	rows = append(rows, m.renderFooter())

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFooter() string {
	parts := []string{
		styles.HelpKeyStyle.Render("d") + " download",
		styles.HelpKeyStyle.Render("c") + " copy link",
	}
	return strings.Join(parts, styles.HelpSeparatorStyle.Render(" | "))
}

// renderRow renders a label/value row.
func (m *Model) renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(14).
		Foreground(styles.TextMuted)

	return labelStyle.Render(label+":") + " " + value
}

func countdownDuration(c models.Countdown) time.Duration {
	return time.Duration(c.Hours)*time.Hour +
		time.Duration(c.Minutes)*time.Minute +
		time.Duration(c.Seconds)*time.Second
}
