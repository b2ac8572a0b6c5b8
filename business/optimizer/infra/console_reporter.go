// Package infra contains infrastructure adapters for the optimizer context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"

	marketDomain "github.com/fd1az/triarb-allocator/business/market/domain"
	"github.com/fd1az/triarb-allocator/business/optimizer/app"
	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Triangular Arbitrage Allocator Started")
	fmt.Fprintln(r.out, "======================================")
	return nil
}

// ReportPeriod prints one period's allocation to the console.
func (r *ConsoleReporter) ReportPeriod(pr *app.PeriodResult) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "PERIOD %d\n", pr.Period)
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "MARKET CONDITIONS")
	fmt.Fprintf(r.out, "  Sentiment:      %s\n", pr.Conditions.Sentiment)
	fmt.Fprintf(r.out, "  Volatility:     %.2f\n", pr.Conditions.VolatilityIndex)
	fmt.Fprintf(r.out, "  Liquidity:      %.2f\n", pr.Conditions.LiquidityFactor)
	fmt.Fprintf(r.out, "  Congestion:     %.2f\n", pr.Conditions.NetworkCongestion)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")

	if pr.Err != nil {
		fmt.Fprintf(r.out, "PASS FAILED: %v\n", pr.Err)
		fmt.Fprintln(r.out, "================================================================================")
		return
	}

	result := pr.Result
	fmt.Fprintf(r.out, "STATUS: %s\n", result.Status)
	if result.Status != domain.StatusOptimal || len(result.Investments) == 0 {
		fmt.Fprintln(r.out, "  No capital allocated this period")
		fmt.Fprintln(r.out, "================================================================================")
		return
	}

	fmt.Fprintln(r.out, "ALLOCATIONS")
	for _, inv := range result.Investments {
		fmt.Fprintf(r.out, "  %-20s %12.2f %s  profit %8.2f (%.3f%%)  conf %.2f\n",
			inv.OpportunityID, inv.Amount, inv.Source,
			inv.ExpectedProfit, inv.ProfitRate*100, inv.Confidence)
	}
	if pr.Plan != nil {
		fmt.Fprintln(r.out, "ESTIMATED EXECUTION COSTS")
		for _, entry := range pr.Plan.Entries {
			var cost marketDomain.ExecutionCost
			for _, leg := range entry.Legs {
				c := marketDomain.EstimateExecutionCost(leg.Input, pr.Conditions)
				cost.TransactionFee += c.TransactionFee
				cost.SpreadCost += c.SpreadCost
				cost.SlippageCost += c.SlippageCost
				cost.TotalCost += c.TotalCost
			}
			fmt.Fprintf(r.out, "  %-20s fees %8.2f  spread %8.2f  slippage %8.2f  total %8.2f\n",
				entry.OpportunityID, cost.TransactionFee, cost.SpreadCost, cost.SlippageCost, cost.TotalCost)
		}
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "  Total invested:   %.2f\n", result.TotalInvestment)
	fmt.Fprintf(r.out, "  Expected profit:  %.2f\n", result.ExpectedProfit)
	if pr.Risk != nil {
		fmt.Fprintf(r.out, "  Execution risk:   %s (p=%.2f)\n", pr.Risk.Level, pr.Risk.ExecutionProbability)
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Triangular Arbitrage Allocator Stopped")
	return nil
}
