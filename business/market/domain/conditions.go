// Package domain contains the core domain types for the market context.
package domain

import (
	"fmt"

	"github.com/fd1az/triarb-allocator/internal/apperror"
)

// Sentiment labels the prevailing market mood. It is informational only and
// has no numeric effect on constraint adjustment.
type Sentiment string

// Market sentiments.
const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Conditions are the scalar market inputs parameterizing one optimization
// pass. VolatilityIndex and LiquidityFactor feed the constraint adjustment;
// SpreadFactor and NetworkCongestion feed execution-cost and risk scoring.
type Conditions struct {
	VolatilityIndex   float64 // in [0,1]
	LiquidityFactor   float64 // > 0, scales available liquidity
	SpreadFactor      float64 // scales bid-ask spreads
	NetworkCongestion float64 // in [0,1], scales fees and execution risk
	Sentiment         Sentiment
}

// Validate checks the ranges the optimizer's adjuster relies on.
func (c Conditions) Validate() error {
	if c.VolatilityIndex < 0 || c.VolatilityIndex > 1 {
		return apperror.Validation(apperror.CodeInvalidMarketFactor,
			fmt.Sprintf("volatility index %g", c.VolatilityIndex))
	}
	if !(c.LiquidityFactor > 0) {
		return apperror.Validation(apperror.CodeInvalidMarketFactor,
			fmt.Sprintf("liquidity factor %g", c.LiquidityFactor))
	}
	return nil
}

// RiskLevel bands a plan's aggregate execution risk.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment scores the execution risk of an execution plan under the
// conditions it was produced for.
type RiskAssessment struct {
	TotalRiskScore       float64
	ExecutionProbability float64
	AverageLegRisk       float64
	Level                RiskLevel
}
