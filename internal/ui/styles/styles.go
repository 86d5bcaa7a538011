// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the paper theme.
var (
	Primary = lipgloss.Color("209") // Coral
	Subtle  = lipgloss.Color("240") // Gray

	// Paper tones for the countdown badge
	PaperLight = lipgloss.Color("230") // Cream
	PaperDark  = lipgloss.Color("173") // Tan

	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(Primary).
	Bold(true).
	SetString("> ")

// CreditsHighStyle for a comfortable balance (>50%).
var CreditsHighStyle = lipgloss.NewStyle().
	Foreground(Success)

// CreditsMediumStyle for a shrinking balance (20-50%).
var CreditsMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// CreditsLowStyle for an almost spent balance (<20%).
var CreditsLowStyle = lipgloss.NewStyle().
	Foreground(Error)

// CreditsExhaustedStyle when nothing is left today.
var CreditsExhaustedStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true).
	Italic(true)

// TimerStyle renders the reset countdown.
var TimerStyle = lipgloss.NewStyle().
	Foreground(PaperLight).
	Background(PaperDark).
	Bold(true).
	Padding(0, 2)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// MutedTextStyle for secondary captions.
var MutedTextStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// ModalContentStyle styles modal content.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 2).
	Background(BgDark)

// ButtonStyle is the base button style.
var ButtonStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1)

// ButtonActiveStyle styles active/focused buttons.
var ButtonActiveStyle = ButtonStyle.
	Background(Primary).
	Foreground(lipgloss.Color("229")).
	Bold(true)

// ButtonInactiveStyle styles unfocused buttons.
var ButtonInactiveStyle = ButtonStyle.
	Background(BgLight).
	Foreground(TextSecondary)

// DisabledStyle dims controls that cannot be used right now.
var DisabledStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Strikethrough(true)

// URLStyle renders links.
var URLStyle = lipgloss.NewStyle().
	Foreground(Info).
	Underline(true)

// GetCreditsStyle returns the style for a remaining-credits percentage.
func GetCreditsStyle(percent float64, exhausted bool) lipgloss.Style {
	if exhausted {
		return CreditsExhaustedStyle
	}
	switch {
	case percent > 50:
		return CreditsHighStyle
	case percent > 20:
		return CreditsMediumStyle
	default:
		return CreditsLowStyle
	}
}

// ValidationStyle returns the style for an email field message.
func ValidationStyle(ok bool) lipgloss.Style {
	if ok {
		return SuccessTextStyle
	}
	return ErrorTextStyle
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
