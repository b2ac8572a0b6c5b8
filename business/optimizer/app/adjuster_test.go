package app

import (
	"math"
	"testing"

	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/apperror"
)

func baseSet() domain.ConstraintSet {
	return domain.ConstraintSet{
		Balances:       map[string]float64{"USDT": 10_000},
		MinHoldings:    map[string]float64{"USDT": 1_000, "BTC": 0.1},
		PairLiquidity:  map[string]float64{"USDT/BTC": 500_000, "BTC/ETH": 80},
		LiquidityScale: 1,
		RiskTolerance:  0.25,
		TotalValue:     100_000,
	}
}

func TestAdjustConstraints(t *testing.T) {
	tests := []struct {
		name          string
		cond          marketDomain.Conditions
		wantRisk      float64
		wantLiquidity float64 // for USDT/BTC
		wantHolding   float64 // for USDT
	}{
		{
			name:          "calm market leaves the set unchanged",
			cond:          marketDomain.Conditions{VolatilityIndex: 0, LiquidityFactor: 1},
			wantRisk:      0.25,
			wantLiquidity: 500_000,
			wantHolding:   1_000,
		},
		{
			name:          "moderate volatility",
			cond:          marketDomain.Conditions{VolatilityIndex: 0.5, LiquidityFactor: 1},
			wantRisk:      0.25 * 0.85, // 1 - 0.3*0.5
			wantLiquidity: 500_000,
			wantHolding:   1_000 * 1.25, // 1 + 0.5*0.5
		},
		{
			name: "maximum volatility keeps the linear scaling",
			cond: marketDomain.Conditions{VolatilityIndex: 1, LiquidityFactor: 1},
			// 1 - 0.3 = 0.7: the tolerance shrinks, it does not floor out.
			wantRisk:      0.25 * 0.7,
			wantLiquidity: 500_000,
			wantHolding:   1_000 * 1.5,
		},
		{
			name:          "thin liquidity scales pair caps",
			cond:          marketDomain.Conditions{VolatilityIndex: 0, LiquidityFactor: 0.6},
			wantRisk:      0.25,
			wantLiquidity: 300_000,
			wantHolding:   1_000,
		},
		{
			name:          "deep liquidity scales pair caps up",
			cond:          marketDomain.Conditions{VolatilityIndex: 0, LiquidityFactor: 1.4},
			wantRisk:      0.25,
			wantLiquidity: 700_000,
			wantHolding:   1_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, err := AdjustConstraints(baseSet(), tt.cond)
			if err != nil {
				t.Fatalf("AdjustConstraints: %v", err)
			}

			if math.Abs(adj.RiskTolerance-tt.wantRisk) > 1e-12 {
				t.Errorf("risk tolerance = %g, want %g", adj.RiskTolerance, tt.wantRisk)
			}
			if got := adj.PairLiquidity["USDT/BTC"]; math.Abs(got-tt.wantLiquidity) > 1e-9 {
				t.Errorf("USDT/BTC liquidity = %g, want %g", got, tt.wantLiquidity)
			}
			// Leg caps are scaled at build time through the same factor.
			if got := adj.LiquidityScale; math.Abs(got-tt.cond.LiquidityFactor) > 1e-12 {
				t.Errorf("liquidity scale = %g, want %g", got, tt.cond.LiquidityFactor)
			}
			if got := adj.MinHoldings["USDT"]; math.Abs(got-tt.wantHolding) > 1e-9 {
				t.Errorf("USDT floor = %g, want %g", got, tt.wantHolding)
			}
			// Balances are never volatility-adjusted.
			if got := adj.Balances["USDT"]; got != 10_000 {
				t.Errorf("USDT balance = %g, want 10000", got)
			}
		})
	}
}

func TestAdjustConstraints_InvalidConditions(t *testing.T) {
	tests := []struct {
		name string
		cond marketDomain.Conditions
	}{
		{"volatility above one", marketDomain.Conditions{VolatilityIndex: 1.2, LiquidityFactor: 1}},
		{"negative volatility", marketDomain.Conditions{VolatilityIndex: -0.1, LiquidityFactor: 1}},
		{"zero liquidity factor", marketDomain.Conditions{VolatilityIndex: 0.5, LiquidityFactor: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AdjustConstraints(baseSet(), tt.cond)
			if got := apperror.GetCode(err); got != apperror.CodeInvalidMarketFactor {
				t.Errorf("error code = %s, want %s", got, apperror.CodeInvalidMarketFactor)
			}
		})
	}
}

func TestAdjustConstraints_DoesNotMutateBase(t *testing.T) {
	base := baseSet()
	cond := marketDomain.Conditions{VolatilityIndex: 0.8, LiquidityFactor: 0.5}

	if _, err := AdjustConstraints(base, cond); err != nil {
		t.Fatalf("AdjustConstraints: %v", err)
	}

	if base.RiskTolerance != 0.25 {
		t.Errorf("base risk tolerance mutated: %g", base.RiskTolerance)
	}
	if base.PairLiquidity["USDT/BTC"] != 500_000 {
		t.Errorf("base pair liquidity mutated: %g", base.PairLiquidity["USDT/BTC"])
	}
	if base.MinHoldings["USDT"] != 1_000 {
		t.Errorf("base floor mutated: %g", base.MinHoldings["USDT"])
	}
}
