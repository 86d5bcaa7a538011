// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

// Gradient endpoints shared by the bars.
const (
	gradientEmpty = "#ff6b6b"
	gradientFull  = "#51cf66"
	paperFrom     = "#f5e6c8"
	paperTo       = "#d98c5f"
)

// AnimationTickMsg drives the credit bar easing.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// CreditBar renders the remaining daily credits as a progress bar.
type CreditBar struct {
	progress       progress.Model
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewCreditBar creates a credit bar with a red-to-green gradient.
func NewCreditBar(width int) CreditBar {
	if width <= 0 {
		width = 30
	}
	p := progress.New(
		progress.WithScaledGradient(gradientEmpty, gradientFull),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return CreditBar{progress: p}
}

// Percent returns the percentage currently drawn.
func (c CreditBar) Percent() float64 {
	return c.currentPercent
}

// Update eases the drawn percentage toward the target.
func (c CreditBar) Update(msg tea.Msg) (CreditBar, tea.Cmd) {
	if _, ok := msg.(AnimationTickMsg); !ok || !c.isAnimating {
		return c, nil
	}

	diff := c.targetPercent - c.currentPercent
	if diff == 0 {
		c.isAnimating = false
		return c, nil
	}

	step := diff / 10
	if step > 0 && step < 0.5 {
		step = 0.5
	} else if step < 0 && step > -0.5 {
		step = -0.5
	}
	c.currentPercent += step
	if (step > 0 && c.currentPercent > c.targetPercent) || (step < 0 && c.currentPercent < c.targetPercent) {
		c.currentPercent = c.targetPercent
	}
	return c, animationTick()
}

// SetPercent starts animating toward percent.
func (c *CreditBar) SetPercent(percent float64) tea.Cmd {
	c.targetPercent = clampPercent(percent)
	if c.isAnimating {
		return nil
	}
	c.isAnimating = true
	return animationTick()
}

// Jump sets the percentage without animation.
func (c *CreditBar) Jump(percent float64) {
	c.targetPercent = clampPercent(percent)
	c.currentPercent = c.targetPercent
	c.isAnimating = false
}

// View renders "label [bar] remaining/limit".
func (c CreditBar) View(remaining, limit, width int) string {
	const labelWidth = 10
	const countWidth = 8

	barWidth := width - labelWidth - countWidth - 2
	if barWidth < 10 {
		barWidth = 10
	}
	c.progress.Width = barWidth

	percent := 0.0
	if limit > 0 {
		percent = float64(remaining) / float64(limit) * 100
	}

	label := styles.ProgressLabelStyle.Width(labelWidth).Render("Credits")
	count := styles.GetCreditsStyle(percent, remaining <= 0).
		Width(countWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d/%d", remaining, limit))

	return lipgloss.JoinHorizontal(lipgloss.Center,
		label,
		c.progress.ViewAs(c.currentPercent/100),
		" ",
		count,
	)
}

// GenerationBar shows how far a transformation has progressed.
type GenerationBar struct {
	progress progress.Model
}

// NewGenerationBar creates a bar tinted in paper tones.
func NewGenerationBar() GenerationBar {
	return GenerationBar{
		progress: progress.New(
			progress.WithScaledGradient(paperFrom, paperTo),
			progress.WithWidth(30),
		),
	}
}

// View renders the bar with its stage label underneath.
func (g GenerationBar) View(percent int, label string, width int) string {
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	g.progress.Width = barWidth

	return lipgloss.JoinVertical(lipgloss.Left,
		g.progress.ViewAs(clampPercent(float64(percent))/100),
		styles.MutedTextStyle.Render(label),
	)
}

// TimeBar fills up as the daily reset approaches.
func TimeBar(untilReset time.Duration, width int) string {
	const day = 24 * time.Hour
	percent := 1 - float64(untilReset)/float64(day)
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	if width < 10 {
		width = 10
	}
	return renderBarChars(percent, width, paperFrom, paperTo)
}

// RenderGradientBar renders a red-to-green bar for percent in [0,100].
func RenderGradientBar(percent float64, width int) string {
	return renderBarChars(clampPercent(percent)/100, width, gradientEmpty, gradientFull)
}

func renderBarChars(fraction float64, width int, from, to string) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * fraction)
	filled = max(0, min(filled, width))

	var b strings.Builder
	empty := lipgloss.NewStyle().Foreground(styles.Subtle)
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(from, to, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(empty.Render("░"))
		}
	}
	return b.String()
}

// RenderShimmer draws an indeterminate bar for the given animation frame.
func RenderShimmer(width, frame int) string {
	if width < 10 {
		width = 10
	}

	const cycle = 100
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	pos := int(eased * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		dist := pos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
