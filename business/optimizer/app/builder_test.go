package app

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

func mustOpportunity(t testing.TB, id string, cycle [3]string, rates, fees, liquidity [3]float64, confidence, maxPosition float64) *domain.Opportunity {
	t.Helper()
	opp, err := domain.NewOpportunity(id, cycle, rates, fees, liquidity, confidence, maxPosition)
	if err != nil {
		t.Fatalf("NewOpportunity(%s): %v", id, err)
	}
	return opp
}

func mustState(t testing.TB, bals, floors map[string]float64, totalValue, riskTolerance float64) *domain.PortfolioState {
	t.Helper()
	b := make(map[string]decimal.Decimal, len(bals))
	for sym, v := range bals {
		b[sym] = decimal.NewFromFloat(v)
	}
	f := make(map[string]decimal.Decimal, len(floors))
	for sym, v := range floors {
		f[sym] = decimal.NewFromFloat(v)
	}
	state, err := domain.NewPortfolioState(b, f, decimal.NewFromFloat(totalValue), riskTolerance)
	if err != nil {
		t.Fatalf("NewPortfolioState: %v", err)
	}
	return state
}

func findRow(t *testing.T, m *domain.Model, name string) domain.Row {
	t.Helper()
	for _, row := range m.Rows {
		if row.Name == name {
			return row
		}
	}
	t.Fatalf("model has no row %q", name)
	return domain.Row{}
}

func hasRow(m *domain.Model, name string) bool {
	for _, row := range m.Rows {
		if row.Name == name {
			return true
		}
	}
	return false
}

func TestBaseConstraints(t *testing.T) {
	state := mustState(t,
		map[string]float64{"USDT": 10_000, "BTC": 0.5},
		map[string]float64{"USDT": 1_000},
		100_000, 0.25)

	oppA := mustOpportunity(t, "a",
		[3]string{"USDT", "BTC", "ETH"},
		[3]float64{1.0 / 50_000, 15, 3_400},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{400_000, 8, 120},
		0.9, 20_000)
	oppB := mustOpportunity(t, "b",
		[3]string{"USDT", "BTC", "LTC"},
		[3]float64{1.0 / 50_000, 300, 170},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{600_000, 8, 120},
		0.9, 20_000)

	cs := BaseConstraints(state, []*domain.Opportunity{oppA, oppB})

	if cs.Balances["USDT"] != 10_000 {
		t.Errorf("USDT balance cap = %g, want 10000", cs.Balances["USDT"])
	}
	if cs.MinHoldings["USDT"] != 1_000 {
		t.Errorf("USDT floor = %g, want 1000", cs.MinHoldings["USDT"])
	}
	if cs.RiskTolerance != 0.25 {
		t.Errorf("risk tolerance = %g, want 0.25", cs.RiskTolerance)
	}
	if cs.TotalValue != 100_000 {
		t.Errorf("total value = %g, want 100000", cs.TotalValue)
	}
	// Pair caps take the deepest quote seen across opportunities.
	if got := cs.PairLiquidity["USDT/BTC"]; got != 600_000 {
		t.Errorf("USDT/BTC cap = %g, want 600000", got)
	}
}

func TestBuildModel_RowFamilies(t *testing.T) {
	// Both opportunities share the USDT/BTC pair; the first quotes a shallower
	// cap there than the second, so only the first gets a per-leg row.
	oppA := mustOpportunity(t, "a",
		[3]string{"USDT", "BTC", "ETH"},
		[3]float64{1.0 / 50_000, 15, 3_400},
		[3]float64{0.001, 0.002, 0.001},
		[3]float64{400_000, 8, 120},
		0.9, 20_000)
	oppB := mustOpportunity(t, "b",
		[3]string{"USDT", "BTC", "LTC"},
		[3]float64{1.0 / 50_000, 300, 170},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{600_000, 8, 120},
		0.8, 15_000)
	opps := []*domain.Opportunity{oppA, oppB}

	state := mustState(t,
		map[string]float64{"USDT": 10_000},
		map[string]float64{"USDT": 1_000},
		100_000, 0.25)
	cs := BaseConstraints(state, opps)
	params := DefaultModelParams()

	m, err := BuildModel(opps, cs, params)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	if m.NumVars() != 2 {
		t.Fatalf("NumVars() = %d, want 2", m.NumVars())
	}
	for i, opp := range opps {
		want := opp.ProfitRate() * opp.Confidence
		if math.Abs(m.Objective[i]-want) > 1e-12 {
			t.Errorf("objective[%d] = %g, want %g", i, m.Objective[i], want)
		}
	}

	t.Run("balance row caps both variables at the raw balance", func(t *testing.T) {
		row := findRow(t, m, "balance:USDT")
		if row.Sense != domain.SenseLE || row.RHS != 10_000 {
			t.Errorf("row = %+v, want LE 10000", row)
		}
		if row.Coeffs[0] != 1 || row.Coeffs[1] != 1 {
			t.Errorf("coeffs = %v, want [1 1]", row.Coeffs)
		}
	})

	t.Run("aggregate liquidity row uses fee-scaled consumption", func(t *testing.T) {
		row := findRow(t, m, "liquidity:USDT/BTC")
		if row.RHS != 600_000 {
			t.Errorf("RHS = %g, want 600000", row.RHS)
		}
		wantAlpha := params.ConsumptionFactor(0.001) // 0.1 + 10*0.001
		for i := range opps {
			if math.Abs(row.Coeffs[i]-wantAlpha) > 1e-12 {
				t.Errorf("coeffs[%d] = %g, want %g", i, row.Coeffs[i], wantAlpha)
			}
		}
	})

	t.Run("per-leg row only where the leg cap is below the pair cap", func(t *testing.T) {
		row := findRow(t, m, "liquidity:USDT/BTC:a")
		if row.RHS != 400_000 || row.Sense != domain.SenseLE {
			t.Errorf("row = %+v, want LE 400000", row)
		}
		if row.Coeffs[1] != 0 {
			t.Errorf("leg row touches the wrong variable: %v", row.Coeffs)
		}
		if hasRow(m, "liquidity:USDT/BTC:b") {
			t.Error("deepest quote got a redundant per-leg row")
		}
	})

	t.Run("min-holding row nets flows against the floor", func(t *testing.T) {
		row := findRow(t, m, "min_holding:USDT")
		if row.Sense != domain.SenseGE {
			t.Errorf("sense = %v, want GE", row.Sense)
		}
		if want := 1_000.0 - 10_000.0; row.RHS != want {
			t.Errorf("RHS = %g, want %g", row.RHS, want)
		}
		for i, opp := range opps {
			want := opp.NetFlows()["USDT"]
			if math.Abs(row.Coeffs[i]-want) > 1e-12 {
				t.Errorf("coeffs[%d] = %g, want %g", i, row.Coeffs[i], want)
			}
		}
	})

	t.Run("risk row bounds total exposure", func(t *testing.T) {
		row := findRow(t, m, "risk")
		if want := 0.25 * 100_000; row.RHS != want {
			t.Errorf("RHS = %g, want %g", row.RHS, want)
		}
		if row.Coeffs[0] != 1 || row.Coeffs[1] != 1 {
			t.Errorf("coeffs = %v, want [1 1]", row.Coeffs)
		}
	})

	t.Run("position rows carry per-opportunity caps", func(t *testing.T) {
		if row := findRow(t, m, "position:a"); row.RHS != 20_000 {
			t.Errorf("position:a RHS = %g, want 20000", row.RHS)
		}
		if row := findRow(t, m, "position:b"); row.RHS != 15_000 {
			t.Errorf("position:b RHS = %g, want 15000", row.RHS)
		}
	})
}

func TestBuildModel_LegRowsScaleWithLiquidity(t *testing.T) {
	// A shifted liquidity factor must move both liquidity row families; the
	// minimum-of-two policy compares like with like.
	oppA := mustOpportunity(t, "a",
		[3]string{"USDT", "BTC", "ETH"},
		[3]float64{1.0 / 50_000, 15, 3_400},
		[3]float64{0.001, 0.002, 0.001},
		[3]float64{400_000, 8, 120},
		0.9, 20_000)
	oppB := mustOpportunity(t, "b",
		[3]string{"USDT", "BTC", "LTC"},
		[3]float64{1.0 / 50_000, 300, 170},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{600_000, 8, 120},
		0.8, 15_000)
	opps := []*domain.Opportunity{oppA, oppB}

	state := mustState(t,
		map[string]float64{"USDT": 10_000},
		map[string]float64{"USDT": 1_000},
		100_000, 0.25)

	for _, factor := range []float64{0.5, 2} {
		t.Run(fmt.Sprintf("factor %g", factor), func(t *testing.T) {
			cs, err := AdjustConstraints(BaseConstraints(state, opps), marketDomain.Conditions{
				LiquidityFactor: factor,
			})
			if err != nil {
				t.Fatalf("AdjustConstraints: %v", err)
			}

			m, err := BuildModel(opps, cs, DefaultModelParams())
			if err != nil {
				t.Fatalf("BuildModel: %v", err)
			}

			pair := findRow(t, m, "liquidity:USDT/BTC")
			if want := 600_000 * factor; math.Abs(pair.RHS-want) > 1e-9 {
				t.Errorf("pair RHS = %g, want %g", pair.RHS, want)
			}
			leg := findRow(t, m, "liquidity:USDT/BTC:a")
			if want := 400_000 * factor; math.Abs(leg.RHS-want) > 1e-9 {
				t.Errorf("leg RHS = %g, want %g", leg.RHS, want)
			}
			// The deepest quote stays redundant at every scale.
			if hasRow(m, "liquidity:USDT/BTC:b") {
				t.Error("deepest quote got a redundant per-leg row")
			}
		})
	}
}

func TestBuildModel_SkipsUntouchedFloors(t *testing.T) {
	opp := mustOpportunity(t, "a",
		[3]string{"USDT", "BTC", "ETH"},
		[3]float64{1.0 / 50_000, 15, 3_400},
		[3]float64{0.001, 0.001, 0.001},
		[3]float64{400_000, 8, 120},
		0.9, 20_000)

	// DAI has a floor but no cycle touches it.
	state := mustState(t,
		map[string]float64{"USDT": 10_000, "DAI": 5_000},
		map[string]float64{"USDT": 1_000, "DAI": 500},
		100_000, 0.25)
	cs := BaseConstraints(state, []*domain.Opportunity{opp})

	m, err := BuildModel([]*domain.Opportunity{opp}, cs, DefaultModelParams())
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	if hasRow(m, "min_holding:DAI") {
		t.Error("untouched currency got a min-holding row")
	}
	if !hasRow(m, "min_holding:USDT") {
		t.Error("touched currency lost its min-holding row")
	}
}

func TestBuildModel_EmptyOpportunities(t *testing.T) {
	state := mustState(t, map[string]float64{"USDT": 10_000}, nil, 100_000, 0.25)
	cs := BaseConstraints(state, nil)

	m, err := BuildModel(nil, cs, DefaultModelParams())
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	if m.NumVars() != 0 {
		t.Errorf("NumVars() = %d, want 0", m.NumVars())
	}
	if len(m.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(m.Rows))
	}
}

func benchmarkOpportunities(tb testing.TB, n int) []*domain.Opportunity {
	tb.Helper()
	intermediates := []string{"BTC", "ETH", "ADA", "DOT", "LINK"}
	quotes := []string{"XRP", "LTC", "BTC", "ETH", "ADA"}

	opps := make([]*domain.Opportunity, 0, n)
	for i := 0; i < n; i++ {
		a := intermediates[i%len(intermediates)]
		b := quotes[(i+1)%len(quotes)]
		if a == b {
			b = "LTC"
		}
		opps = append(opps, mustOpportunity(tb, fmt.Sprintf("opp-%d", i),
			[3]string{"USDT", a, b},
			[3]float64{1.0 / 50_000, 15, 3_400},
			[3]float64{0.001, 0.0015, 0.001},
			[3]float64{400_000, 8, 120},
			0.9, 20_000))
	}
	return opps
}

// Benchmark for the per-pass model construction path
func BenchmarkBuildModel(b *testing.B) {
	opps := benchmarkOpportunities(b, 10)
	state := mustState(b,
		map[string]float64{"USDT": 50_000},
		map[string]float64{"USDT": 5_000},
		100_000, 0.25)
	cs := BaseConstraints(state, opps)
	params := DefaultModelParams()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildModel(opps, cs, params); err != nil {
			b.Fatal(err)
		}
	}
}

func TestModelParams_ConsumptionFactor(t *testing.T) {
	params := DefaultModelParams()
	if got, want := params.ConsumptionFactor(0.001), 0.11; math.Abs(got-want) > 1e-12 {
		t.Errorf("ConsumptionFactor(0.001) = %g, want %g", got, want)
	}
	if got, want := params.ConsumptionFactor(0), 0.1; math.Abs(got-want) > 1e-12 {
		t.Errorf("ConsumptionFactor(0) = %g, want %g", got, want)
	}
}
