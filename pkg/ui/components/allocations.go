// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// AllocationRow represents one allocated opportunity in the list.
type AllocationRow struct {
	Period         int
	Cycle          string
	Amount         float64
	Source         string
	ExpectedProfit float64
	ProfitPct      float64
	Confidence     float64
}

// AllocationsComponent renders the allocation history.
type AllocationsComponent struct {
	rows    []AllocationRow
	maxRows int
	offset  int
}

// NewAllocationsComponent creates a new allocations component.
func NewAllocationsComponent(maxRows int) *AllocationsComponent {
	return &AllocationsComponent{
		rows:    make([]AllocationRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a new allocation.
func (a *AllocationsComponent) Add(row AllocationRow) {
	a.rows = append([]AllocationRow{row}, a.rows...)
	if len(a.rows) > a.maxRows {
		a.rows = a.rows[:a.maxRows]
	}
}

// Clear clears all allocations.
func (a *AllocationsComponent) Clear() {
	a.rows = make([]AllocationRow, 0)
	a.offset = 0
}

// ScrollUp moves the view window up.
func (a *AllocationsComponent) ScrollUp() {
	if a.offset > 0 {
		a.offset--
	}
}

// ScrollDown moves the view window down.
func (a *AllocationsComponent) ScrollDown() {
	if a.offset < len(a.rows)-1 {
		a.offset++
	}
}

// View renders the allocations component.
func (a *AllocationsComponent) View() string {
	if len(a.rows) == 0 {
		return "No allocations yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	result := headerStyle.Render("ALLOCATIONS\n")
	result += "┌────────┬──────────────────┬────────────┬──────────────┬────────┬──────┐\n"
	result += "│ Period │      Cycle       │   Amount   │    Profit    │   %    │ Conf │\n"
	result += "├────────┼──────────────────┼────────────┼──────────────┼────────┼──────┤\n"

	visible := a.rows[a.offset:]
	for _, row := range visible {
		result += fmt.Sprintf("│%7d │ %-16s │%11.2f │ %s │%7.3f │ %.2f │\n",
			row.Period,
			row.Cycle,
			row.Amount,
			profitStyle.Render(fmt.Sprintf("%12.2f", row.ExpectedProfit)),
			row.ProfitPct*100,
			row.Confidence,
		)
	}

	result += "└────────┴──────────────────┴────────────┴──────────────┴────────┴──────┘"

	return result
}
