package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb-allocator/internal/apperror"
)

// PortfolioState holds per-currency balances and minimum-holding floors plus
// the total portfolio value and base risk tolerance. It persists across
// periods and is mutated exactly once per period, by Apply, after a solution
// is accepted. The state is exclusively owned by its driver for the duration
// of a pass.
type PortfolioState struct {
	balances      map[string]decimal.Decimal
	minHoldings   map[string]decimal.Decimal
	totalValue    decimal.Decimal
	riskTolerance float64
}

// NewPortfolioState validates and builds a PortfolioState. Balances and floors
// are copied; the caller's maps are not retained.
func NewPortfolioState(balances, minHoldings map[string]decimal.Decimal, totalValue decimal.Decimal, riskTolerance float64) (*PortfolioState, error) {
	if !totalValue.IsPositive() {
		return nil, apperror.Validation(apperror.CodeInvalidPortfolio,
			fmt.Sprintf("total value %s", totalValue))
	}
	if !(riskTolerance > 0) || riskTolerance > 1 {
		return nil, apperror.Validation(apperror.CodeInvalidRiskTolerance,
			fmt.Sprintf("risk tolerance %g", riskTolerance))
	}

	p := &PortfolioState{
		balances:      make(map[string]decimal.Decimal, len(balances)),
		minHoldings:   make(map[string]decimal.Decimal, len(minHoldings)),
		totalValue:    totalValue,
		riskTolerance: riskTolerance,
	}
	for sym, bal := range balances {
		if bal.IsNegative() {
			return nil, apperror.Validation(apperror.CodeNegativeBalance,
				fmt.Sprintf("%s: %s", sym, bal))
		}
		p.balances[sym] = bal
	}
	for sym, floor := range minHoldings {
		if floor.IsNegative() {
			return nil, apperror.Validation(apperror.CodeInvalidPortfolio,
				fmt.Sprintf("%s: negative floor %s", sym, floor))
		}
		p.minHoldings[sym] = floor
	}

	return p, nil
}

// Validate re-checks the invariants the optimizer relies on when reading the
// state. It exists because Apply runs between passes and the state must be
// rejected, not clamped, if an invariant no longer holds.
func (p *PortfolioState) Validate() error {
	if !p.totalValue.IsPositive() {
		return apperror.Validation(apperror.CodeInvalidPortfolio,
			fmt.Sprintf("total value %s", p.totalValue))
	}
	for sym, bal := range p.balances {
		if bal.IsNegative() {
			return apperror.Validation(apperror.CodeNegativeBalance,
				fmt.Sprintf("%s: %s", sym, bal))
		}
	}
	return nil
}

// Balance returns the current balance for a currency, zero if unknown.
func (p *PortfolioState) Balance(symbol string) decimal.Decimal {
	return p.balances[symbol]
}

// MinHolding returns the base minimum-holding floor for a currency.
func (p *PortfolioState) MinHolding(symbol string) decimal.Decimal {
	return p.minHoldings[symbol]
}

// TotalValue returns the total portfolio value.
func (p *PortfolioState) TotalValue() decimal.Decimal {
	return p.totalValue
}

// RiskTolerance returns the base risk tolerance in (0,1].
func (p *PortfolioState) RiskTolerance() float64 {
	return p.riskTolerance
}

// Currencies returns the held currency symbols in sorted order.
func (p *PortfolioState) Currencies() []string {
	syms := make([]string, 0, len(p.balances))
	for sym := range p.balances {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// Apply mutates the state with a realized allocation: each investment debits
// its source currency and credits the terminal currency with the invested
// amount times (1 + profit rate). For a triangular cycle the terminal currency
// is the source, so the net effect is the realized profit. The total value
// grows by exactly the summed realized profit.
func (p *PortfolioState) Apply(result *AllocationResult) error {
	if result.Status != StatusOptimal {
		return apperror.Validation(apperror.CodeResultNotOptimal, string(result.Status))
	}

	for _, inv := range result.Investments {
		amount := decimal.NewFromFloat(inv.Amount)
		realized := decimal.NewFromFloat(inv.Amount * inv.ProfitRate)

		debited := p.balances[inv.Source].Sub(amount)
		credited := debited.Add(amount).Add(realized)
		if credited.IsNegative() {
			return apperror.Validation(apperror.CodeNegativeBalance,
				fmt.Sprintf("%s after applying %s", inv.Source, inv.OpportunityID))
		}
		p.balances[inv.Source] = credited
		p.totalValue = p.totalValue.Add(realized)
	}

	return nil
}
