package domain

// Investment is one funded opportunity inside an allocation.
type Investment struct {
	OpportunityID  string
	Source         string  // currency the investment is drawn from
	Amount         float64 // invested amount in source-currency units
	ProfitRate     float64
	Confidence     float64
	ExpectedProfit float64 // Amount * ProfitRate * Confidence
}

// Utilization reports how much of one constraint's capacity an allocation
// consumes. A zero-capacity constraint with zero usage reports ratio 0.
type Utilization struct {
	Kind     RowKind
	Used     float64
	Capacity float64
	Ratio    float64
}

// AllocationResult is the outcome of one optimization pass. Derived fields
// (investments, totals, utilization) are only meaningful when Status is
// StatusOptimal; callers must branch on Status before reading them.
type AllocationResult struct {
	Status          SolveStatus
	Investments     []Investment // input order preserved
	TotalInvestment float64
	ExpectedProfit  float64
	Utilization     map[string]Utilization // keyed by row name
}

// Amount returns the invested amount for an opportunity, zero if unfunded.
func (r *AllocationResult) Amount(opportunityID string) float64 {
	for _, inv := range r.Investments {
		if inv.OpportunityID == opportunityID {
			return inv.Amount
		}
	}
	return 0
}

// PlanLeg is one conversion step of an execution plan, fee-adjusted.
type PlanLeg struct {
	From   string
	To     string
	Rate   float64
	Fee    float64
	Input  float64
	Output float64 // Input * (1 - Fee) * Rate
}

// PlanEntry is the ordered leg sequence realizing one funded opportunity.
type PlanEntry struct {
	OpportunityID  string
	Amount         float64
	Legs           [3]PlanLeg
	RealizedProfit float64 // final output minus invested amount
	ExpectedProfit float64 // confidence-weighted, from the allocation
}

// ExecutionPlan is a read-only view over a non-degenerate optimal allocation.
type ExecutionPlan struct {
	Entries []PlanEntry
}

// TotalRealizedProfit sums realized profit across all entries.
func (p *ExecutionPlan) TotalRealizedProfit() float64 {
	var total float64
	for _, e := range p.Entries {
		total += e.RealizedProfit
	}
	return total
}
