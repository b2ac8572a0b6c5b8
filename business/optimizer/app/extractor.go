package app

import (
	"fmt"
	"math"

	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/apperror"
)

// Extractor validates raw solver output and post-processes it into a typed
// allocation result and, for non-degenerate optima, an execution plan.
type Extractor struct {
	// Epsilon absorbs solver numerical noise: values in [-Epsilon, 0) clamp
	// to zero, values further out of bounds reject the solution.
	Epsilon float64

	// ProfitTolerance bounds the drift allowed between an entry's recomputed
	// realized profit and the declared per-unit rate times the amount.
	ProfitTolerance float64
}

// NewExtractor creates an Extractor with the given tolerances.
func NewExtractor(epsilon, profitTolerance float64) *Extractor {
	return &Extractor{Epsilon: epsilon, ProfitTolerance: profitTolerance}
}

// Extract builds an AllocationResult from a raw solution. For any status
// other than Optimal the result carries only the status. For an Optimal
// status every variable value is range-checked against its declared bounds
// before totals and utilization ratios are computed.
func (e *Extractor) Extract(raw *domain.RawSolution, m *domain.Model, opps []*domain.Opportunity) (*domain.AllocationResult, error) {
	result := &domain.AllocationResult{Status: raw.Status}
	if raw.Status != domain.StatusOptimal {
		return result, nil
	}

	if len(raw.Values) != m.NumVars() {
		return &domain.AllocationResult{Status: domain.StatusSolverError},
			apperror.Validation(apperror.CodeSolverError,
				fmt.Sprintf("solver returned %d values for %d variables", len(raw.Values), m.NumVars()))
	}

	values := make([]float64, len(raw.Values))
	for i, v := range raw.Values {
		switch {
		case v < -e.Epsilon || math.IsNaN(v):
			return &domain.AllocationResult{Status: domain.StatusSolverError},
				apperror.Validation(apperror.CodeSolutionOutOfBounds,
					fmt.Sprintf("%s = %g below zero", m.VarIDs[i], v))
		case v < 0:
			values[i] = 0
		case v > opps[i].MaxPosition+e.Epsilon:
			return &domain.AllocationResult{Status: domain.StatusSolverError},
				apperror.Validation(apperror.CodeSolutionOutOfBounds,
					fmt.Sprintf("%s = %g above position cap %g", m.VarIDs[i], v, opps[i].MaxPosition))
		default:
			values[i] = v
		}
	}

	for i, opp := range opps {
		if values[i] <= e.Epsilon {
			continue
		}
		result.Investments = append(result.Investments, domain.Investment{
			OpportunityID:  opp.ID,
			Source:         opp.Source(),
			Amount:         values[i],
			ProfitRate:     opp.ProfitRate(),
			Confidence:     opp.Confidence,
			ExpectedProfit: values[i] * opp.ProfitRate() * opp.Confidence,
		})
		result.TotalInvestment += values[i]
		result.ExpectedProfit += values[i] * opp.ProfitRate() * opp.Confidence
	}

	result.Utilization = e.utilization(m, values)

	return result, nil
}

// utilization reports used/available per balance, liquidity and risk row.
func (e *Extractor) utilization(m *domain.Model, values []float64) map[string]domain.Utilization {
	out := make(map[string]domain.Utilization)
	for _, row := range m.Rows {
		switch row.Kind {
		case domain.RowBalance, domain.RowLiquidity, domain.RowRisk:
		default:
			continue
		}

		var used float64
		for i, c := range row.Coeffs {
			used += c * values[i]
		}

		u := domain.Utilization{Kind: row.Kind, Used: used, Capacity: row.RHS}
		if row.RHS != 0 {
			u.Ratio = used / row.RHS
		}
		out[row.Name] = u
	}
	return out
}

// BuildPlan synthesizes the ordered execution plan for an optimal allocation
// with positive total investment: one leg per currency transition, each leg's
// output feeding the next leg's input. The final output is checked against
// the declared profit rate; a mismatch indicates a modeling bug, not a
// recoverable market condition.
func (e *Extractor) BuildPlan(result *domain.AllocationResult, opps []*domain.Opportunity) (*domain.ExecutionPlan, error) {
	if result.Status != domain.StatusOptimal {
		return nil, apperror.Validation(apperror.CodeResultNotOptimal, string(result.Status))
	}

	byID := make(map[string]*domain.Opportunity, len(opps))
	for _, opp := range opps {
		byID[opp.ID] = opp
	}

	plan := &domain.ExecutionPlan{}
	for _, inv := range result.Investments {
		opp, ok := byID[inv.OpportunityID]
		if !ok {
			return nil, apperror.Validation(apperror.CodeInvalidState,
				"investment references unknown opportunity "+inv.OpportunityID)
		}
		if inv.Amount <= e.Epsilon {
			continue
		}

		entry := domain.PlanEntry{
			OpportunityID:  inv.OpportunityID,
			Amount:         inv.Amount,
			ExpectedProfit: inv.ExpectedProfit,
		}

		input := inv.Amount
		for i, leg := range opp.Legs() {
			output := input * (1 - leg.Fee) * leg.Rate
			entry.Legs[i] = domain.PlanLeg{
				From:   leg.From,
				To:     leg.To,
				Rate:   leg.Rate,
				Fee:    leg.Fee,
				Input:  input,
				Output: output,
			}
			input = output
		}
		entry.RealizedProfit = input - inv.Amount

		declared := inv.ProfitRate * inv.Amount
		if math.Abs(entry.RealizedProfit-declared) > e.ProfitTolerance*(1+math.Abs(declared)) {
			return nil, apperror.Validation(apperror.CodePlanInconsistent,
				fmt.Sprintf("%s: realized %g vs declared %g", opp.ID, entry.RealizedProfit, declared))
		}

		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}
