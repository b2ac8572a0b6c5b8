// Package app contains the optimization services for the optimizer context.
package app

import (
	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

// Volatility sensitivity of the adjusted parameters. Risk tolerance shrinks
// and minimum holdings grow as volatility rises; liquidity scales with the
// market-wide liquidity factor. No other parameter is volatility-sensitive.
const (
	riskVolatilityCoeff    = 0.3
	holdingVolatilityCoeff = 0.5
)

// AdjustConstraints maps a base constraint set and current market conditions
// to the constraint set used for one pass. It is a pure function: the base
// set is cloned, never mutated. Out-of-range conditions are a configuration
// error; callers validate or clamp market inputs before reaching this point.
func AdjustConstraints(base domain.ConstraintSet, cond marketDomain.Conditions) (domain.ConstraintSet, error) {
	if err := cond.Validate(); err != nil {
		return domain.ConstraintSet{}, err
	}

	adj := base.Clone()

	adj.RiskTolerance = base.RiskTolerance * (1 - riskVolatilityCoeff*cond.VolatilityIndex)
	if adj.RiskTolerance < 0 {
		// A zero risk budget is legal and simply forces all investments to
		// zero; it is not an error.
		adj.RiskTolerance = 0
	}

	for pair, cap := range adj.PairLiquidity {
		adj.PairLiquidity[pair] = cap * cond.LiquidityFactor
	}
	if adj.LiquidityScale == 0 {
		adj.LiquidityScale = 1
	}
	adj.LiquidityScale *= cond.LiquidityFactor

	for sym, floor := range adj.MinHoldings {
		adj.MinHoldings[sym] = floor * (1 + holdingVolatilityCoeff*cond.VolatilityIndex)
	}

	return adj, nil
}
