package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds run statistics for display.
type Stats struct {
	PeriodsRun      int
	PeriodsInvested int
	TotalInvested   float64
	RealizedProfit  float64
	PortfolioValue  float64
	Errors          int
}

// StatsComponent renders run statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	investRate := float64(0)
	if s.stats.PeriodsRun > 0 {
		investRate = float64(s.stats.PeriodsInvested) / float64(s.stats.PeriodsRun) * 100
	}

	profitDisplay := profitStyle.Render(fmt.Sprintf("%.2f", s.stats.RealizedProfit))
	if s.stats.RealizedProfit < 0 {
		profitDisplay = errorStyle.Render(fmt.Sprintf("%.2f", s.stats.RealizedProfit))
	}

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("RUN STATS") + "\n" +
		fmt.Sprintf("Periods: %s  │  Invested periods: %s (%.0f%%)  │  Errors: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.PeriodsRun)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.PeriodsInvested)),
			investRate,
			errorsDisplay,
		) +
		fmt.Sprintf("Total invested: %s  │  Realized profit: %s  │  Portfolio value: %s",
			valueStyle.Render(fmt.Sprintf("%.2f", s.stats.TotalInvested)),
			profitDisplay,
			valueStyle.Render(fmt.Sprintf("%.2f", s.stats.PortfolioValue)),
		)
}
