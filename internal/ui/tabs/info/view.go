package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/paperart-tui/internal/ui/styles"
	"github.com/j-veylop/paperart-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderServicesCard())
	sections = append(sections, m.renderAboutCard())

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

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Data Directory", m.config.DataDir))
		rows = append(rows, m.renderConfigRow("Store", fmt.Sprintf("%s (%s)", m.config.StorePath, m.config.StoreBackend)))
		rows = append(rows, m.renderConfigRow("Database", m.config.DatabasePath))
		rows = append(rows, m.renderConfigRow("Downloads", m.config.DownloadDir))
		rows = append(rows, m.renderConfigRow("Log File", m.config.LogPath))
		rows = append(rows, m.renderConfigRow("Log Level", m.config.LogLevel))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Press 'c' to copy the store path, 'C' for the database"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderServicesCard renders the outbound endpoints and credit settings.
func (m *Model) renderServicesCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Services"))
	rows = append(rows, "")

	if m.config != nil {
		apiKey := styles.ErrorTextStyle.Render("missing")
		if m.config.GeminiAPIKey != "" {
			apiKey = styles.SuccessTextStyle.Render("set")
		}
		notifications := "off"
		if m.config.Notifications {
			notifications = "on"
		}

		rows = append(rows, m.renderConfigRow("Vision Model", m.config.GeminiModel))
		rows = append(rows, m.renderConfigRow("Vision Endpoint", m.config.GeminiEndpoint))
		rows = append(rows, m.renderConfigRow("Gemini API Key", apiKey))
		rows = append(rows, m.renderConfigRow("Image Endpoint", m.config.ImageEndpoint))
		rows = append(rows, m.renderConfigRow("Image Model", m.config.ImageModel))
		rows = append(rows, m.renderConfigRow("HTTP Timeout", m.config.HTTPTimeout.String()))
		rows = append(rows, m.renderConfigRow("Daily Credits", fmt.Sprintf("%d (cost %d)", m.config.DailyCreditLimit, m.config.CreditCost)))
		rows = append(rows, m.renderConfigRow("Storage Quota", humanize.Bytes(uint64(m.config.StorageQuotaBytes))))
		rows = append(rows, m.renderConfigRow("Notifications", notifications))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Paper Art"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	rows = append(rows, fmt.Sprintf("Images: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", m.state.HistoryCount()))))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
