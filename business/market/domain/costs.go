package domain

// Execution cost parameters.
const (
	baseFeeRate        = 0.001
	baseSpreadRate     = 0.0005
	baseSlippageRate   = 0.0002
	congestionFeeCoeff = 2.0
	volatilitySlipCoef = 0.5
)

// ExecutionCost breaks down the estimated cost of filling one trade under a
// given set of conditions. All components are denominated in the trade's
// currency.
type ExecutionCost struct {
	TransactionFee   float64
	SpreadCost       float64
	SlippageCost     float64
	TotalCost        float64
	EffectiveFeeRate float64
}

// EstimateExecutionCost prices a trade of the given size. Congestion inflates
// the transaction fee, spread widens with the spread factor, and slippage
// grows with volatility.
func EstimateExecutionCost(amount float64, cond Conditions) ExecutionCost {
	if amount <= 0 {
		return ExecutionCost{}
	}

	feeMultiplier := 1.0 + cond.NetworkCongestion*congestionFeeCoeff
	slipMultiplier := 1.0 + cond.VolatilityIndex*volatilitySlipCoef

	fee := amount * baseFeeRate * feeMultiplier
	spread := amount * baseSpreadRate * cond.SpreadFactor
	slippage := amount * baseSlippageRate * slipMultiplier
	total := fee + spread + slippage

	return ExecutionCost{
		TransactionFee:   fee,
		SpreadCost:       spread,
		SlippageCost:     slippage,
		TotalCost:        total,
		EffectiveFeeRate: total / amount,
	}
}
