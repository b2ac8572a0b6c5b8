// Package ui provides the Bubble Tea TUI for the allocator.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/triarb-allocator/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	conditions  *components.ConditionsComponent
	allocations *components.AllocationsComponent
	stats       *components.StatsComponent
	keys        KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready       bool
	quitting    bool
	runComplete bool
	width       int
	height      int
	lastUpdate  time.Time
	errors      []ErrorEntry // Persistent error panel (last 3)
	logs        []string     // Recent log messages

	// Run tracking
	periodsRun      int
	periodsInvested int
	totalInvested   float64
	initialValue    float64
	portfolioValue  float64
}

// New creates a new TUI model.
func New() Model {
	return Model{
		conditions:   components.NewConditionsComponent(),
		allocations:  components.NewAllocationsComponent(50),
		stats:        components.NewStatsComponent(),
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the dashboard
		if m.phase == PhaseWelcome {
			m.phase = PhaseDashboard
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartRun != nil {
				go OnStartRun()
			}
			return m, tickCmd()
		}
		// Normal key handling
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.allocations.Clear()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.allocations.ScrollUp()
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.allocations.ScrollDown()
			return m, nil
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseDashboard
			if OnStartRun != nil {
				go OnStartRun()
			}
		}
		return m, tickCmd()

	case ConditionsMsg:
		m.conditions.Update(components.ConditionsView{
			Sentiment:         msg.Sentiment,
			VolatilityIndex:   msg.VolatilityIndex,
			LiquidityFactor:   msg.LiquidityFactor,
			SpreadFactor:      msg.SpreadFactor,
			NetworkCongestion: msg.NetworkCongestion,
		})
		m.lastUpdate = time.Now()

	case AllocationMsg:
		m.allocations.Add(components.AllocationRow{
			Period:         msg.Period,
			Cycle:          msg.Cycle,
			Amount:         msg.Amount,
			Source:         msg.Source,
			ExpectedProfit: msg.ExpectedProfit,
			ProfitPct:      msg.ProfitRate,
			Confidence:     msg.Confidence,
		})
		m.lastUpdate = time.Now()

	case PeriodMsg:
		m.periodsRun++
		if msg.Invested > 0 {
			m.periodsInvested++
			m.totalInvested += msg.Invested
		}
		m.refreshStats()
		m.lastUpdate = time.Now()

	case PortfolioMsg:
		if m.initialValue == 0 {
			m.initialValue = msg.TotalValue - msg.RealizedProfit
		}
		m.portfolioValue = msg.TotalValue
		m.refreshStats()
		m.lastUpdate = time.Now()

	case RunCompleteMsg:
		m.runComplete = true
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
		m.refreshStats()

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

func (m *Model) refreshStats() {
	m.stats.Update(components.Stats{
		PeriodsRun:      m.periodsRun,
		PeriodsInvested: m.periodsInvested,
		TotalInvested:   m.totalInvested,
		RealizedProfit:  m.portfolioValue - m.initialValue,
		PortfolioValue:  m.portfolioValue,
		Errors:          len(m.errors),
	})
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	title := TitleStyle.Render(" Triangular Arbitrage Allocator ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Main content: conditions on left, allocations on right
	leftCol := m.conditions.View()
	rightCol := m.allocations.View()

	if m.width > 110 {
		left := BoxStyle.Width(m.width/3 - 2).Render(leftCol)
		right := BoxStyle.Width(2*m.width/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	helpParts := make([]string, 0, 4)
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		helpParts = append(helpParts, h.Key+": "+h.Desc)
	}
	helpText := strings.Join(helpParts, " • ")
	if m.runComplete {
		doneStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
		b.WriteString(doneStyle.Render("✓ RUN COMPLETE"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(helpText))

	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	mutedStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	greenStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
   ████████╗██████╗ ██╗     █████╗ ██████╗ ██████╗
   ╚══██╔══╝██╔══██╗██║    ██╔══██╗██╔══██╗██╔══██╗
      ██║   ██████╔╝██║    ███████║██████╔╝██████╔╝
      ██║   ██╔══██╗██║    ██╔══██║██╔══██╗██╔══██╗
      ██║   ██║  ██║██║    ██║  ██║██║  ██║██████╔╝
      ╚═╝   ╚═╝  ╚═╝╚═╝    ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "        A L L O C A T I O N   O P T I M I Z E R"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Period: %d", m.periodsRun))

	if m.portfolioValue > 0 {
		valueStyle := PositiveValue
		if m.portfolioValue < m.initialValue {
			valueStyle = NegativeValue
		}
		parts = append(parts, valueStyle.Render(fmt.Sprintf("Portfolio: %.2f", m.portfolioValue)))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartRun is called when the welcome screen completes and the optimization
// run should begin. This is set by main.go.
var OnStartRun func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartRunMsg); ok && OnStartRun != nil {
		OnStartRun()
	}
}
