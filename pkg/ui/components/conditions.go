package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConditionsView holds the market factors for display.
type ConditionsView struct {
	Sentiment         string
	VolatilityIndex   float64
	LiquidityFactor   float64
	SpreadFactor      float64
	NetworkCongestion float64
}

// ConditionsComponent renders the current market conditions.
type ConditionsComponent struct {
	view ConditionsView
	set  bool
}

// NewConditionsComponent creates a new conditions component.
func NewConditionsComponent() *ConditionsComponent {
	return &ConditionsComponent{}
}

// Update replaces the displayed conditions.
func (c *ConditionsComponent) Update(view ConditionsView) {
	c.view = view
	c.set = true
}

// View renders the conditions component.
func (c *ConditionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	if !c.set {
		return headerStyle.Render("MARKET CONDITIONS") + "\n" +
			mutedStyle.Render("Waiting for first period...")
	}

	sentimentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	switch c.view.Sentiment {
	case "bullish":
		sentimentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	case "bearish":
		sentimentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("MARKET CONDITIONS"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  Sentiment:   %s\n", sentimentStyle.Render(c.view.Sentiment)))
	sb.WriteString(fmt.Sprintf("  Volatility:  %s %.2f\n", gauge(c.view.VolatilityIndex, 1.0), c.view.VolatilityIndex))
	sb.WriteString(fmt.Sprintf("  Liquidity:   %s %.2f\n", gauge(c.view.LiquidityFactor, 2.0), c.view.LiquidityFactor))
	sb.WriteString(fmt.Sprintf("  Spread:      %s %.2f\n", gauge(c.view.SpreadFactor, 2.0), c.view.SpreadFactor))
	sb.WriteString(fmt.Sprintf("  Congestion:  %s %.2f", gauge(c.view.NetworkCongestion, 1.0), c.view.NetworkCongestion))

	return sb.String()
}

// gauge renders a 10-cell bar for a value on [0, max].
func gauge(value, max float64) string {
	filled := int(value / max * 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}
