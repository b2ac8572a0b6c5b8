package ui

// Message types for TUI updates

// ConditionsMsg is sent when a period's market conditions are drawn.
type ConditionsMsg struct {
	Sentiment         string
	VolatilityIndex   float64
	LiquidityFactor   float64
	SpreadFactor      float64
	NetworkCongestion float64
}

// AllocationMsg is sent for each opportunity funded in a period.
type AllocationMsg struct {
	Period         int
	Cycle          string
	Amount         float64
	Source         string
	ExpectedProfit float64
	ProfitRate     float64
	Confidence     float64
}

// PeriodMsg is sent when a period completes, invested or not.
type PeriodMsg struct {
	Period         int
	Status         string
	Invested       float64
	ExpectedProfit float64
	RiskLevel      string
}

// PortfolioMsg is sent after an allocation settles into the portfolio.
type PortfolioMsg struct {
	TotalValue     float64
	RealizedProfit float64
}

// RunCompleteMsg signals that the multi-period run finished.
type RunCompleteMsg struct{}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartRunMsg signals that the optimization run should start.
type StartRunMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}
