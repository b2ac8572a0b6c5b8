package app

import (
	"fmt"
	"sort"

	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/apperror"
)

// ModelParams are the fixed parameters of the liquidity consumption model.
// They are model constants, not market-derived: gamma captures the empirical
// correlation between fee level and shallow liquidity.
type ModelParams struct {
	BetaBase float64 // base depth consumed per unit invested
	Gamma    float64 // additional consumption per unit of leg fee
}

// DefaultModelParams returns the standard consumption parameters.
func DefaultModelParams() ModelParams {
	return ModelParams{BetaBase: 0.1, Gamma: 10}
}

// ConsumptionFactor is the depth one unit of investment consumes on a leg.
func (p ModelParams) ConsumptionFactor(fee float64) float64 {
	return p.BetaBase + p.Gamma*fee
}

// BaseConstraints derives the pre-adjustment constraint set for one pass from
// the live portfolio state and the opportunity set. Pair-level liquidity caps
// take the deepest leg cap quoted for each pair across all opportunities.
func BaseConstraints(state *domain.PortfolioState, opps []*domain.Opportunity) domain.ConstraintSet {
	cs := domain.ConstraintSet{
		Balances:       make(map[string]float64),
		MinHoldings:    make(map[string]float64),
		PairLiquidity:  make(map[string]float64),
		LiquidityScale: 1,
		RiskTolerance:  state.RiskTolerance(),
		TotalValue:     state.TotalValue().InexactFloat64(),
	}

	for _, sym := range state.Currencies() {
		cs.Balances[sym] = state.Balance(sym).InexactFloat64()
		cs.MinHoldings[sym] = state.MinHolding(sym).InexactFloat64()
	}

	for _, opp := range opps {
		for _, leg := range opp.Legs() {
			if leg.LiquidityCap > cs.PairLiquidity[leg.Pair()] {
				cs.PairLiquidity[leg.Pair()] = leg.LiquidityCap
			}
		}
	}

	return cs
}

// BuildModel constructs the linear program for one pass: one non-negative
// continuous variable per opportunity (the model is a relaxation; partial
// investment is legal), objective maximize sum p_i * c_i * x_i, and one row
// family per constraint type. A zero-length opportunity sequence yields a
// trivially optimal empty model, not an infeasible one.
func BuildModel(opps []*domain.Opportunity, cs domain.ConstraintSet, params ModelParams) (*domain.Model, error) {
	n := len(opps)
	m := &domain.Model{
		VarIDs:    make([]string, n),
		Objective: make([]float64, n),
	}

	for i, opp := range opps {
		if opp.Cycle[0] == opp.Cycle[1] || opp.Cycle[1] == opp.Cycle[2] || opp.Cycle[2] == opp.Cycle[0] {
			return nil, apperror.Validation(apperror.CodeDegenerateCycle,
				fmt.Sprintf("opportunity %s", opp.ID))
		}
		m.VarIDs[i] = opp.ID
		m.Objective[i] = opp.ProfitRate() * opp.Confidence
	}
	if n == 0 {
		return m, nil
	}

	m.Rows = append(m.Rows, balanceRows(opps, cs)...)
	m.Rows = append(m.Rows, liquidityRows(opps, cs, params)...)
	m.Rows = append(m.Rows, minHoldingRows(opps, cs)...)
	m.Rows = append(m.Rows, riskRow(opps, cs))
	m.Rows = append(m.Rows, positionRows(opps)...)

	return m, nil
}

// balanceRows cap the total drawn from each source currency at its raw
// balance. Floors are enforced separately by the min-holding rows.
func balanceRows(opps []*domain.Opportunity, cs domain.ConstraintSet) []domain.Row {
	bySource := make(map[string][]int)
	for i, opp := range opps {
		bySource[opp.Source()] = append(bySource[opp.Source()], i)
	}

	var rows []domain.Row
	for _, sym := range sortedKeys(bySource) {
		coeffs := make([]float64, len(opps))
		for _, i := range bySource[sym] {
			coeffs[i] = 1
		}
		rows = append(rows, domain.Row{
			Name:   "balance:" + sym,
			Kind:   domain.RowBalance,
			Coeffs: coeffs,
			Sense:  domain.SenseLE,
			RHS:    cs.Balances[sym],
		})
	}
	return rows
}

// liquidityRows bound depth consumption per trading pair, with a tighter
// single-opportunity row wherever a leg's scaled cap is below the pair cap
// (the conservative minimum-of-two policy). Leg caps carry the same
// liquidity scale the adjuster applied to the pair caps.
func liquidityRows(opps []*domain.Opportunity, cs domain.ConstraintSet, params ModelParams) []domain.Row {
	pairCoeffs := make(map[string][]float64)
	var legRows []domain.Row

	scale := cs.LiquidityScale
	if scale == 0 {
		scale = 1
	}

	for i, opp := range opps {
		for _, leg := range opp.Legs() {
			pair := leg.Pair()
			alpha := params.ConsumptionFactor(leg.Fee)

			if _, ok := pairCoeffs[pair]; !ok {
				pairCoeffs[pair] = make([]float64, len(opps))
			}
			pairCoeffs[pair][i] += alpha

			legCap := leg.LiquidityCap * scale
			if pairCap, ok := cs.PairLiquidity[pair]; ok && legCap < pairCap {
				coeffs := make([]float64, len(opps))
				coeffs[i] = alpha
				legRows = append(legRows, domain.Row{
					Name:   fmt.Sprintf("liquidity:%s:%s", pair, opp.ID),
					Kind:   domain.RowLegLiquidity,
					Coeffs: coeffs,
					Sense:  domain.SenseLE,
					RHS:    legCap,
				})
			}
		}
	}

	var rows []domain.Row
	for _, pair := range sortedKeys(pairCoeffs) {
		rows = append(rows, domain.Row{
			Name:   "liquidity:" + pair,
			Kind:   domain.RowLiquidity,
			Coeffs: pairCoeffs[pair],
			Sense:  domain.SenseLE,
			RHS:    cs.PairLiquidity[pair],
		})
	}
	return append(rows, legRows...)
}

// minHoldingRows require balance plus the linearized net cash-flow to stay
// above each currency's adjusted floor.
func minHoldingRows(opps []*domain.Opportunity, cs domain.ConstraintSet) []domain.Row {
	var rows []domain.Row
	for _, sym := range sortedKeys(cs.MinHoldings) {
		coeffs := make([]float64, len(opps))
		touched := false
		for i, opp := range opps {
			if flow, ok := opp.NetFlows()[sym]; ok {
				coeffs[i] = flow
				touched = true
			}
		}
		if !touched {
			// Nothing moves this currency; the floor holds iff it already
			// holds, which is a portfolio validation concern, not a row.
			continue
		}
		rows = append(rows, domain.Row{
			Name:   "min_holding:" + sym,
			Kind:   domain.RowMinHolding,
			Coeffs: coeffs,
			Sense:  domain.SenseGE,
			RHS:    cs.MinHoldings[sym] - cs.Balances[sym],
		})
	}
	return rows
}

// riskRow bounds total exposure at the adjusted fraction of portfolio value.
func riskRow(opps []*domain.Opportunity, cs domain.ConstraintSet) domain.Row {
	coeffs := make([]float64, len(opps))
	for i := range coeffs {
		coeffs[i] = 1
	}
	return domain.Row{
		Name:   "risk",
		Kind:   domain.RowRisk,
		Coeffs: coeffs,
		Sense:  domain.SenseLE,
		RHS:    cs.RiskTolerance * cs.TotalValue,
	}
}

func positionRows(opps []*domain.Opportunity) []domain.Row {
	rows := make([]domain.Row, 0, len(opps))
	for i, opp := range opps {
		coeffs := make([]float64, len(opps))
		coeffs[i] = 1
		rows = append(rows, domain.Row{
			Name:   "position:" + opp.ID,
			Kind:   domain.RowPosition,
			Coeffs: coeffs,
			Sense:  domain.SenseLE,
			RHS:    opp.MaxPosition,
		})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
