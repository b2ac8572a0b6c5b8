// Package domain contains the core domain types for the optimizer context.
package domain

import (
	"fmt"
	"math"

	"github.com/fd1az/triarb-allocator/internal/apperror"
)

// Leg is one currency conversion inside a triangular cycle.
type Leg struct {
	From         string
	To           string
	Rate         float64 // units of To received per unit of From, before fees
	Fee          float64 // fraction of the input consumed, in [0,1)
	LiquidityCap float64 // depth available on this leg, >= 0
}

// Pair returns the trading-pair label for this leg.
func (l Leg) Pair() string {
	return l.From + "/" + l.To
}

// Opportunity is a validated, immutable triangular arbitrage chain
// A -> B -> C -> A. Derived quantities are computed once at construction.
type Opportunity struct {
	ID          string
	Cycle       [3]string // currency symbols (A, B, C)
	Confidence  float64   // in [0,1]
	MaxPosition float64   // per-opportunity position cap, >= 0

	legs            [3]Leg
	grossMultiplier float64
	profitRate      float64
}

// NewOpportunity validates the inputs and builds an Opportunity. The three
// rates, fees and liquidity caps are given in cycle order: A->B, B->C, C->A.
func NewOpportunity(id string, cycle [3]string, rates, fees, liquidity [3]float64, confidence, maxPosition float64) (*Opportunity, error) {
	if cycle[0] == cycle[1] || cycle[1] == cycle[2] || cycle[2] == cycle[0] {
		return nil, apperror.Validation(apperror.CodeDegenerateCycle,
			fmt.Sprintf("opportunity %s: cycle %s->%s->%s", id, cycle[0], cycle[1], cycle[2]))
	}

	for i := range rates {
		if !(rates[i] > 0) || math.IsInf(rates[i], 0) {
			return nil, apperror.Validation(apperror.CodeInvalidRate,
				fmt.Sprintf("opportunity %s leg %d: rate %g", id, i, rates[i]))
		}
		if fees[i] < 0 || fees[i] >= 1 || math.IsNaN(fees[i]) {
			return nil, apperror.Validation(apperror.CodeInvalidFee,
				fmt.Sprintf("opportunity %s leg %d: fee %g", id, i, fees[i]))
		}
		if liquidity[i] < 0 || math.IsNaN(liquidity[i]) {
			return nil, apperror.Validation(apperror.CodeInvalidLiquidity,
				fmt.Sprintf("opportunity %s leg %d: liquidity %g", id, i, liquidity[i]))
		}
	}

	if confidence < 0 || confidence > 1 || math.IsNaN(confidence) {
		return nil, apperror.Validation(apperror.CodeInvalidConfidence,
			fmt.Sprintf("opportunity %s: confidence %g", id, confidence))
	}
	if maxPosition < 0 || math.IsNaN(maxPosition) {
		return nil, apperror.Validation(apperror.CodeInvalidInput,
			fmt.Sprintf("opportunity %s: max position %g", id, maxPosition))
	}

	o := &Opportunity{
		ID:          id,
		Cycle:       cycle,
		Confidence:  confidence,
		MaxPosition: maxPosition,
	}

	for i := 0; i < 3; i++ {
		o.legs[i] = Leg{
			From:         cycle[i],
			To:           cycle[(i+1)%3],
			Rate:         rates[i],
			Fee:          fees[i],
			LiquidityCap: liquidity[i],
		}
	}

	o.grossMultiplier = (1 - fees[0]) * rates[0] * (1 - fees[1]) * rates[1] * (1 - fees[2]) * rates[2]
	o.profitRate = o.grossMultiplier - 1

	return o, nil
}

// Source returns the currency the cycle is funded from.
func (o *Opportunity) Source() string {
	return o.Cycle[0]
}

// Legs returns the three conversion legs in cycle order.
func (o *Opportunity) Legs() [3]Leg {
	return o.legs
}

// GrossMultiplier returns the fee-adjusted product of the three leg rates.
func (o *Opportunity) GrossMultiplier() float64 {
	return o.grossMultiplier
}

// ProfitRate returns the expected profit per unit invested (gross multiplier
// minus one). A non-positive rate is legal: the solver drives such an
// opportunity's allocation to zero rather than the model excluding it.
func (o *Opportunity) ProfitRate() float64 {
	return o.profitRate
}

// NetFlows returns the net signed cash-flow per unit invested for every
// currency the cycle touches: negative for amounts spent, positive for
// amounts received. Intermediate currencies net to zero because the cycle
// spends exactly what the previous leg delivered.
func (o *Opportunity) NetFlows() map[string]float64 {
	flows := make(map[string]float64, 3)

	in := 1.0
	for _, leg := range o.legs {
		flows[leg.From] -= in
		in = in * (1 - leg.Fee) * leg.Rate
		flows[leg.To] += in
	}

	return flows
}
