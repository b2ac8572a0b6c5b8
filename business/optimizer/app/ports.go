package app

import (
	"context"

	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

// Solver submits a built model to an external LP routine and returns a
// normalized status plus variable values. Numerical failures and budget
// expiry surface as StatusSolverError with a non-nil error; no retry happens
// at this layer, that is the caller's decision.
type Solver interface {
	Solve(ctx context.Context, m *domain.Model) (*domain.RawSolution, error)
}

// OpportunitySource supplies candidate opportunity records for one period.
// Records must satisfy the Opportunity invariants; how they are fabricated or
// fetched is outside the optimizer.
type OpportunitySource interface {
	Opportunities(ctx context.Context, n int) ([]*domain.Opportunity, error)
}

// ConditionSource supplies the market conditions for the current period and
// advances its internal state between periods.
type ConditionSource interface {
	Current() marketDomain.Conditions
	Advance()
}

// PlanScorer assesses the execution risk of a plan under given conditions.
type PlanScorer interface {
	ScorePlan(plan *domain.ExecutionPlan, cond marketDomain.Conditions) marketDomain.RiskAssessment
}

// Reporter receives per-period results for display.
type Reporter interface {
	Start(ctx context.Context) error
	ReportPeriod(pr *PeriodResult)
	Stop() error
}

// PassRecorder records pass-level metrics.
type PassRecorder interface {
	RecordPass(ctx context.Context, status domain.SolveStatus, seconds, invested float64)
}
