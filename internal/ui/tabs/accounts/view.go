package accounts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/ui/components"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

// View renders the accounts tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())

	if sess := m.state.GetSession(); sess != nil {
		sections = append(sections, m.renderSession(*sess))
	} else {
		sections = append(sections, m.renderSignIn())
	}

	if m.confirm != confirmNone {
		sections = append(sections, m.renderConfirm())
	}

	sections = append(sections, m.renderProviders())
	sections = append(sections, m.renderStorage())
	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(50, min(m.width-6, 80))
}

// renderTitle renders the accounts tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Account")
	subtitle := styles.HelpStyle.Render("Sign in with a trusted email provider and manage local data")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderSession(sess models.UserSession) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Signed In"))
	rows = append(rows, m.renderRow("Email", styles.InfoTextStyle.Render(sess.Email)))
	rows = append(rows, m.renderRow("Provider", sess.Provider))
	if t, err := time.Parse(time.RFC3339, sess.SignedIn); err == nil {
		rows = append(rows, m.renderRow("Since", humanize.Time(t)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSignIn renders the email form with its live validation message.
func (m *Model) renderSignIn() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Sign In"))

	inputStyle := styles.BlurredBorderStyle
	if m.editing {
		inputStyle = styles.FocusedBorderStyle
	}
	rows = append(rows, inputStyle.Render(m.emailInput.View()))

	if msg := m.validationMessage(); msg != "" {
		rows = append(rows, msg)
	}

	rows = append(rows, "")
	if m.editing {
		rows = append(rows, styles.HelpStyle.Render("Enter: sign in | Esc: cancel"))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Press e to enter your email"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) validationMessage() string {
	res := m.result
	width := m.cardWidth() - 6
	switch {
	case res.IsAllowed:
		return styles.ValidationStyle(true).Render("✓ " + res.Provider + " is a trusted provider")
	case res.Error != "":
		return styles.ValidationStyle(false).Width(width).Render("✗ " + res.Error)
	}
	return ""
}

// renderProviders renders the allow-listed providers.
func (m *Model) renderProviders() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Trusted Providers"))
	rows = append(rows, m.table.View())

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderStorage renders the local store usage.
func (m *Model) renderStorage() string {
	info := m.state.GetStorageInfo()
	inner := m.cardWidth() - 6

	used := humanize.Bytes(uint64(max(info.Used, 0)))
	total := humanize.Bytes(uint64(max(info.Total, 0)))

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Local Storage"))
	rows = append(rows, m.renderRow("Used", fmt.Sprintf("%s of %s (%d%%)", used, total, info.Percentage)))
	rows = append(rows, m.renderRow("Images", fmt.Sprintf("%d", m.state.HistoryCount())))
	rows = append(rows, components.RenderGradientBar(float64(100-info.Percentage), inner)+" "+
		styles.MutedTextStyle.Render("free"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfirm renders the confirmation dialog for destructive actions.
func (m *Model) renderConfirm() string {
	cardWidth := 50

	title, body := "Clear User Data?", "Removes your images, session and credits. Preferences are kept."
	if m.confirm == confirmFactoryReset {
		title, body = "Factory Reset?", "Removes everything stored by Paper Art, including preferences."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render(title),
		"",
		lipgloss.NewStyle().Width(cardWidth-6).Align(lipgloss.Center).Render(body),
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

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	switch {
	case m.editing:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case m.confirm != confirmNone:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		if m.state.IsSignedIn() {
			shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("o")+" sign out")
		} else {
			shortcuts = append(shortcuts, styles.HelpKeyStyle.Render("e")+" sign in")
		}
		shortcuts = append(shortcuts,
			styles.HelpKeyStyle.Render("x")+" export",
			styles.HelpKeyStyle.Render("C")+" clear data",
			styles.HelpKeyStyle.Render("R")+" reset",
		)
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}

// renderRow renders a label/value row.
func (m *Model) renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(12).
		Foreground(styles.TextMuted)

	return labelStyle.Render(label+":") + " " + value
}
