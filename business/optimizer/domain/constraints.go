package domain

// ConstraintSet carries the constraint parameters for one optimization pass.
// A set is rebuilt per pass; adjustment for market conditions produces a new
// value rather than mutating the base.
type ConstraintSet struct {
	// Balances are raw per-currency balance caps. Minimum-holding floors are
	// enforced by separate rows, not subtracted here.
	Balances map[string]float64

	// MinHoldings are per-currency floors that must remain after allocation.
	MinHoldings map[string]float64

	// PairLiquidity caps total depth consumption per trading pair.
	PairLiquidity map[string]float64

	// LiquidityScale multiplies per-leg liquidity caps at model build time.
	// Pair caps are stored already scaled, so both row families track the
	// same market liquidity factor. The zero value means unscaled.
	LiquidityScale float64

	// RiskTolerance bounds total investment to RiskTolerance * TotalValue.
	RiskTolerance float64

	// TotalValue is the portfolio value backing the risk budget.
	TotalValue float64
}

// Clone returns a deep copy so an adjustment pass never aliases the base maps.
func (c ConstraintSet) Clone() ConstraintSet {
	out := ConstraintSet{
		Balances:       make(map[string]float64, len(c.Balances)),
		MinHoldings:    make(map[string]float64, len(c.MinHoldings)),
		PairLiquidity:  make(map[string]float64, len(c.PairLiquidity)),
		LiquidityScale: c.LiquidityScale,
		RiskTolerance:  c.RiskTolerance,
		TotalValue:     c.TotalValue,
	}
	for k, v := range c.Balances {
		out.Balances[k] = v
	}
	for k, v := range c.MinHoldings {
		out.MinHoldings[k] = v
	}
	for k, v := range c.PairLiquidity {
		out.PairLiquidity[k] = v
	}
	return out
}
