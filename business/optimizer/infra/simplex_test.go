package infra

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb-allocator/business/optimizer/app"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/logger"
)

func testSolver(t *testing.T) *SimplexSolver {
	t.Helper()
	return NewSimplexSolver(0, logger.New(io.Discard, logger.LevelInfo, "test", nil))
}

func singleRow(name string, kind domain.RowKind, coeff float64, sense domain.Sense, rhs float64) domain.Row {
	return domain.Row{Name: name, Kind: kind, Coeffs: []float64{coeff}, Sense: sense, RHS: rhs}
}

func TestSolve_MostRestrictiveBoundBinds(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		risk    float64
		cap     float64
		want    float64
	}{
		{"risk budget binds", 10_000, 5_000, 20_000, 5_000},
		{"balance binds", 3_000, 5_000, 20_000, 3_000},
		{"position cap binds", 10_000, 5_000, 2_000, 2_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &domain.Model{
				VarIDs:    []string{"a"},
				Objective: []float64{0.005},
				Rows: []domain.Row{
					singleRow("balance:USDT", domain.RowBalance, 1, domain.SenseLE, tt.balance),
					singleRow("risk", domain.RowRisk, 1, domain.SenseLE, tt.risk),
					singleRow("position:a", domain.RowPosition, 1, domain.SenseLE, tt.cap),
				},
			}

			raw, err := testSolver(t).Solve(context.Background(), m)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if raw.Status != domain.StatusOptimal {
				t.Fatalf("status = %s, want Optimal", raw.Status)
			}
			if math.Abs(raw.Values[0]-tt.want) > 1e-6 {
				t.Errorf("x = %g, want %g", raw.Values[0], tt.want)
			}
			if want := 0.005 * tt.want; math.Abs(raw.Objective-want) > 1e-6 {
				t.Errorf("objective = %g, want %g", raw.Objective, want)
			}
		})
	}
}

func TestSolve_BuiltModel(t *testing.T) {
	// Full pipeline: a single profitable cycle against a risk budget half the
	// balance. The risk row binds and the solver invests exactly the budget.
	opp, err := domain.NewOpportunity("a",
		[3]string{"USDT", "BTC", "ETH"},
		[3]float64{50_000, 0.067, 0.0003},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{1e9, 1e9, 1e9},
		1.0, 20_000)
	if err != nil {
		t.Fatalf("NewOpportunity: %v", err)
	}
	opps := []*domain.Opportunity{opp}

	state, err := domain.NewPortfolioState(
		map[string]decimal.Decimal{"USDT": decimal.NewFromInt(10_000)},
		nil,
		decimal.NewFromInt(10_000),
		0.5,
	)
	if err != nil {
		t.Fatalf("NewPortfolioState: %v", err)
	}

	cs := app.BaseConstraints(state, opps)
	m, err := app.BuildModel(opps, cs, app.DefaultModelParams())
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	raw, err := testSolver(t).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusOptimal {
		t.Fatalf("status = %s, want Optimal", raw.Status)
	}

	if math.Abs(raw.Values[0]-5_000) > 1e-6 {
		t.Errorf("x = %g, want 5000", raw.Values[0])
	}
	if want := 5_000 * opp.ProfitRate(); math.Abs(raw.Objective-want) > 1e-6 {
		t.Errorf("objective = %g, want %g", raw.Objective, want)
	}
}

func TestSolve_PrefersHigherWeightedProfit(t *testing.T) {
	// Two cycles compete for one risk budget; the better edge takes it all.
	m := &domain.Model{
		VarIDs:    []string{"a", "b"},
		Objective: []float64{0.004, 0.002},
		Rows: []domain.Row{
			{Name: "balance:USDT", Kind: domain.RowBalance, Coeffs: []float64{1, 1}, Sense: domain.SenseLE, RHS: 10_000},
			{Name: "risk", Kind: domain.RowRisk, Coeffs: []float64{1, 1}, Sense: domain.SenseLE, RHS: 5_000},
			{Name: "position:a", Kind: domain.RowPosition, Coeffs: []float64{1, 0}, Sense: domain.SenseLE, RHS: 20_000},
			{Name: "position:b", Kind: domain.RowPosition, Coeffs: []float64{0, 1}, Sense: domain.SenseLE, RHS: 20_000},
		},
	}

	raw, err := testSolver(t).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusOptimal {
		t.Fatalf("status = %s, want Optimal", raw.Status)
	}
	if math.Abs(raw.Values[0]-5_000) > 1e-6 || math.Abs(raw.Values[1]) > 1e-6 {
		t.Errorf("values = %v, want [5000 0]", raw.Values)
	}
}

func TestSolve_ObjectiveScaleInvariance(t *testing.T) {
	// Scaling every profit rate by a positive constant scales the objective
	// but leaves the allocation untouched.
	rows := []domain.Row{
		{Name: "balance:USDT", Kind: domain.RowBalance, Coeffs: []float64{1, 1}, Sense: domain.SenseLE, RHS: 8_000},
		{Name: "position:a", Kind: domain.RowPosition, Coeffs: []float64{1, 0}, Sense: domain.SenseLE, RHS: 6_000},
		{Name: "position:b", Kind: domain.RowPosition, Coeffs: []float64{0, 1}, Sense: domain.SenseLE, RHS: 6_000},
	}
	const k = 3.0

	base := &domain.Model{VarIDs: []string{"a", "b"}, Objective: []float64{0.004, 0.002}, Rows: rows}
	scaled := &domain.Model{VarIDs: []string{"a", "b"}, Objective: []float64{0.004 * k, 0.002 * k}, Rows: rows}

	solver := testSolver(t)
	rawBase, err := solver.Solve(context.Background(), base)
	if err != nil {
		t.Fatalf("Solve base: %v", err)
	}
	rawScaled, err := solver.Solve(context.Background(), scaled)
	if err != nil {
		t.Fatalf("Solve scaled: %v", err)
	}

	if rawBase.Status != domain.StatusOptimal || rawScaled.Status != domain.StatusOptimal {
		t.Fatalf("status = %s / %s, want Optimal", rawBase.Status, rawScaled.Status)
	}
	for i := range rawBase.Values {
		if math.Abs(rawBase.Values[i]-rawScaled.Values[i]) > 1e-6 {
			t.Errorf("values diverge at %d: %g vs %g", i, rawBase.Values[i], rawScaled.Values[i])
		}
	}
	if want := k * rawBase.Objective; math.Abs(rawScaled.Objective-want) > 1e-6 {
		t.Errorf("scaled objective = %g, want %g", rawScaled.Objective, want)
	}
}

func TestSolve_NegativeEdgeStaysOut(t *testing.T) {
	m := &domain.Model{
		VarIDs:    []string{"a"},
		Objective: []float64{-0.001},
		Rows: []domain.Row{
			singleRow("balance:USDT", domain.RowBalance, 1, domain.SenseLE, 1_000),
		},
	}

	raw, err := testSolver(t).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusOptimal {
		t.Fatalf("status = %s, want Optimal", raw.Status)
	}
	if math.Abs(raw.Values[0]) > 1e-9 {
		t.Errorf("x = %g, want 0", raw.Values[0])
	}
	if math.Abs(raw.Objective) > 1e-9 {
		t.Errorf("objective = %g, want 0", raw.Objective)
	}
}

func TestSolve_Infeasible(t *testing.T) {
	// A floor above the cap cannot be satisfied.
	m := &domain.Model{
		VarIDs:    []string{"a"},
		Objective: []float64{0.005},
		Rows: []domain.Row{
			singleRow("position:a", domain.RowPosition, 1, domain.SenseLE, 5),
			singleRow("min_holding:USDT", domain.RowMinHolding, 1, domain.SenseGE, 10),
		},
	}

	raw, err := testSolver(t).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusInfeasible {
		t.Errorf("status = %s, want Infeasible", raw.Status)
	}
}

func TestSolve_Unbounded(t *testing.T) {
	// Only a lower bound on a profitable variable: no cap, no optimum.
	m := &domain.Model{
		VarIDs:    []string{"a"},
		Objective: []float64{0.005},
		Rows: []domain.Row{
			singleRow("min_holding:USDT", domain.RowMinHolding, 1, domain.SenseGE, 1),
		},
	}

	raw, err := testSolver(t).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusUnbounded {
		t.Errorf("status = %s, want Unbounded", raw.Status)
	}
}

func TestSolve_EmptyModel(t *testing.T) {
	raw, err := testSolver(t).Solve(context.Background(), &domain.Model{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if raw.Status != domain.StatusOptimal {
		t.Errorf("status = %s, want Optimal", raw.Status)
	}
	if len(raw.Values) != 0 {
		t.Errorf("values = %v, want empty", raw.Values)
	}
}

// Benchmark for the per-pass solve path
func BenchmarkSolve(b *testing.B) {
	const n = 10
	m := &domain.Model{
		VarIDs:    make([]string, n),
		Objective: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		m.VarIDs[i] = string(rune('a' + i))
		m.Objective[i] = 0.001 + 0.0005*float64(i)

		coeffs := make([]float64, n)
		coeffs[i] = 1
		m.Rows = append(m.Rows, domain.Row{
			Name: "position:" + m.VarIDs[i], Kind: domain.RowPosition,
			Coeffs: coeffs, Sense: domain.SenseLE, RHS: 20_000,
		})
	}
	shared := make([]float64, n)
	for i := range shared {
		shared[i] = 1
	}
	m.Rows = append(m.Rows,
		domain.Row{Name: "balance:USDT", Kind: domain.RowBalance, Coeffs: shared, Sense: domain.SenseLE, RHS: 50_000},
		domain.Row{Name: "risk", Kind: domain.RowRisk, Coeffs: shared, Sense: domain.SenseLE, RHS: 25_000},
	)

	solver := NewSimplexSolver(0, logger.New(io.Discard, logger.LevelInfo, "bench", nil))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(ctx, m); err != nil {
			b.Fatal(err)
		}
	}
}

func TestSolve_NoRows(t *testing.T) {
	tests := []struct {
		name      string
		objective []float64
		want      domain.SolveStatus
	}{
		{"profitable variable runs away", []float64{0.005}, domain.StatusUnbounded},
		{"losing variable stays at zero", []float64{-0.005}, domain.StatusOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &domain.Model{VarIDs: []string{"a"}, Objective: tt.objective}
			raw, err := testSolver(t).Solve(context.Background(), m)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if raw.Status != tt.want {
				t.Errorf("status = %s, want %s", raw.Status, tt.want)
			}
			if tt.want == domain.StatusOptimal && raw.Values[0] != 0 {
				t.Errorf("x = %g, want 0", raw.Values[0])
			}
		})
	}
}
