package infra

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/triarb-allocator/business/optimizer/app"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/pkg/ui"
)

// TUIReporter implements Reporter for the Bubble Tea TUI. It translates
// period results into UI messages; the program itself is owned by main.
type TUIReporter struct {
	send func(tea.Msg)
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{
		send: ui.Send,
	}
}

// Start is a no-op; the Bubble Tea program is started by the caller.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// ReportPeriod sends one period's conditions and allocations to the TUI.
func (r *TUIReporter) ReportPeriod(pr *app.PeriodResult) {
	r.send(ui.ConditionsMsg{
		Sentiment:         string(pr.Conditions.Sentiment),
		VolatilityIndex:   pr.Conditions.VolatilityIndex,
		LiquidityFactor:   pr.Conditions.LiquidityFactor,
		SpreadFactor:      pr.Conditions.SpreadFactor,
		NetworkCongestion: pr.Conditions.NetworkCongestion,
	})

	if pr.Err != nil {
		r.send(ui.ErrorMsg{Error: pr.Err})
	}

	result := pr.Result
	if result.Status == domain.StatusOptimal {
		for _, inv := range result.Investments {
			r.send(ui.AllocationMsg{
				Period:         pr.Period,
				Cycle:          cycleLabel(inv.OpportunityID, pr.Opportunities),
				Amount:         inv.Amount,
				Source:         inv.Source,
				ExpectedProfit: inv.ExpectedProfit,
				ProfitRate:     inv.ProfitRate,
				Confidence:     inv.Confidence,
			})
		}
	}

	riskLevel := ""
	if pr.Risk != nil {
		riskLevel = string(pr.Risk.Level)
	}
	r.send(ui.PeriodMsg{
		Period:         pr.Period,
		Status:         string(result.Status),
		Invested:       result.TotalInvestment,
		ExpectedProfit: result.ExpectedProfit,
		RiskLevel:      riskLevel,
	})

	// Apply credits Amount * ProfitRate per investment, so the figure shown
	// next to the portfolio value is the plan's realized profit, not the
	// confidence-weighted expectation.
	realized := 0.0
	if pr.Plan != nil {
		realized = pr.Plan.TotalRealizedProfit()
	}
	r.send(ui.PortfolioMsg{
		TotalValue:     pr.PortfolioValue,
		RealizedProfit: realized,
	})
}

// Stop is a no-op; the Bubble Tea program is stopped by the caller.
func (r *TUIReporter) Stop() error {
	return nil
}

func cycleLabel(id string, opps []*domain.Opportunity) string {
	for _, opp := range opps {
		if opp.ID == id {
			return strings.Join(opp.Cycle[:], "→")
		}
	}
	return id
}
