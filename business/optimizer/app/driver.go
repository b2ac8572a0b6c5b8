package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/apm"
	"github.com/fd1az/triarb-allocator/internal/apperror"
	"github.com/fd1az/triarb-allocator/internal/logger"
)

// PeriodResult is the recorded outcome of one period's pass.
type PeriodResult struct {
	Period         int
	Conditions     marketDomain.Conditions
	Opportunities  []*domain.Opportunity
	Result         *domain.AllocationResult
	Plan           *domain.ExecutionPlan        // nil unless Optimal with positive investment
	Risk           *marketDomain.RiskAssessment // nil when Plan is nil
	PortfolioValue float64                      // total portfolio value after settlement
	Err            error                        // non-fatal pass error, recorded for reporting
}

// DriverConfig holds configuration for the multi-period driver.
type DriverConfig struct {
	Params                 ModelParams
	SolveBudget            time.Duration
	OpportunitiesPerPeriod int
}

// Driver runs sequential optimization passes against one exclusively-owned
// portfolio state, feeding each period's realized allocation into the next
// period's balances. Periods cannot run concurrently against a shared state;
// the sequential dependency is the point.
type Driver struct {
	solver        Solver
	extractor     *Extractor
	opportunities OpportunitySource
	conditions    ConditionSource
	scorer        PlanScorer
	reporter      Reporter
	recorder      PassRecorder
	config        DriverConfig
	logger        logger.LoggerInterface
	tracer        apm.Tracer
}

// NewDriver creates a Driver. scorer, reporter and recorder may be nil.
func NewDriver(
	solver Solver,
	extractor *Extractor,
	opportunities OpportunitySource,
	conditions ConditionSource,
	scorer PlanScorer,
	reporter Reporter,
	recorder PassRecorder,
	config DriverConfig,
	log logger.LoggerInterface,
) *Driver {
	return &Driver{
		solver:        solver,
		extractor:     extractor,
		opportunities: opportunities,
		conditions:    conditions,
		scorer:        scorer,
		reporter:      reporter,
		recorder:      recorder,
		config:        config,
		logger:        log,
		tracer:        apm.NewTracer("optimizer"),
	}
}

// Run executes n sequential periods. A period whose pass ends non-Optimal is
// recorded as a zero-return period and the loop continues; a configuration
// error aborts the whole run because it indicates a caller programming error,
// not a market condition. The returned slice holds every completed period in
// order, including on early abort.
func (d *Driver) Run(ctx context.Context, state *domain.PortfolioState, periods int) ([]PeriodResult, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	results := make([]PeriodResult, 0, periods)

	for period := 1; period <= periods; period++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		pr, err := d.runPeriod(ctx, state, period)
		if err != nil {
			if apperror.IsConfiguration(err) {
				return results, err
			}
			// Solver-side failures yield a zero-effect period.
			d.logger.Warn(ctx, "period pass failed", "period", period, "error", err)
			pr.Err = err
		}

		results = append(results, pr)
		if d.reporter != nil {
			d.reporter.ReportPeriod(&pr)
		}

		if period < periods {
			d.conditions.Advance()
		}
	}

	return results, nil
}

func (d *Driver) runPeriod(ctx context.Context, state *domain.PortfolioState, period int) (pr PeriodResult, err error) {
	ctx, span := d.tracer.StartSpanFromContext(ctx, "optimizer.period")
	defer span.End()
	span.SetAttribute(attribute.Int("period", period))

	defer func() {
		pr.PortfolioValue = state.TotalValue().InexactFloat64()
	}()

	cond := d.conditions.Current()
	pr = PeriodResult{
		Period:     period,
		Conditions: cond,
		Result:     &domain.AllocationResult{Status: domain.StatusSolverError},
	}

	opps, err := d.opportunities.Opportunities(ctx, d.config.OpportunitiesPerPeriod)
	if err != nil {
		span.NoticeError(err)
		return pr, err
	}
	pr.Opportunities = opps

	started := time.Now()
	result, plan, err := d.runPass(ctx, state, opps, cond)
	elapsed := time.Since(started)

	if result != nil {
		pr.Result = result
	}
	if d.recorder != nil {
		d.recorder.RecordPass(ctx, pr.Result.Status, elapsed.Seconds(), pr.Result.TotalInvestment)
	}
	if err != nil {
		span.NoticeError(err)
		return pr, err
	}
	pr.Plan = plan

	if plan != nil && d.scorer != nil {
		risk := d.scorer.ScorePlan(plan, cond)
		pr.Risk = &risk
	}

	if result.Status == domain.StatusOptimal && result.TotalInvestment > 0 {
		if err := state.Apply(result); err != nil {
			span.NoticeError(err)
			return pr, err
		}
		d.logger.Info(ctx, "allocation applied",
			"period", period,
			"invested", result.TotalInvestment,
			"expected_profit", result.ExpectedProfit,
			"opportunities", len(result.Investments),
		)
	} else {
		d.logger.Info(ctx, "zero-return period",
			"period", period,
			"status", string(result.Status),
		)
	}

	return pr, nil
}

// runPass performs one optimization pass: adjust, build, solve, extract.
func (d *Driver) runPass(ctx context.Context, state *domain.PortfolioState, opps []*domain.Opportunity, cond marketDomain.Conditions) (*domain.AllocationResult, *domain.ExecutionPlan, error) {
	if err := state.Validate(); err != nil {
		return nil, nil, err
	}

	base := BaseConstraints(state, opps)
	adjusted, err := AdjustConstraints(base, cond)
	if err != nil {
		return nil, nil, err
	}

	model, err := BuildModel(opps, adjusted, d.config.Params)
	if err != nil {
		return nil, nil, err
	}

	solveCtx := ctx
	if d.config.SolveBudget > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, d.config.SolveBudget)
		defer cancel()
	}

	raw, err := d.solver.Solve(solveCtx, model)
	if err != nil {
		return &domain.AllocationResult{Status: domain.StatusSolverError}, nil, err
	}

	result, err := d.extractor.Extract(raw, model, opps)
	if err != nil {
		return result, nil, err
	}

	if result.Status != domain.StatusOptimal || result.TotalInvestment <= d.extractor.Epsilon {
		return result, nil, nil
	}

	plan, err := d.extractor.BuildPlan(result, opps)
	if err != nil {
		return result, nil, err
	}

	return result, plan, nil
}
