package app

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb-allocator/business/market/domain"
	optimizerDomain "github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

// Per-leg execution risk weights.
const (
	marketRiskWeight    = 0.3
	liquidityRiskWeight = 0.2
	congestionWeight    = 0.1

	sentimentFlipChance = 0.1
)

// RiskProfile selects the band a portfolio's risk tolerance is drawn from.
type RiskProfile string

const (
	ProfileConservative RiskProfile = "conservative"
	ProfileModerate     RiskProfile = "moderate"
	ProfileAggressive   RiskProfile = "aggressive"
)

// Simulator produces market conditions and synthetic portfolios, and walks
// the conditions forward between optimization periods.
type Simulator struct {
	rng        *rand.Rand
	conditions domain.Conditions
}

// NewSimulator creates a Simulator with an initial set of conditions drawn
// from a random sentiment. seed zero draws a time-based seed.
func NewSimulator(seed uint64) *Simulator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &Simulator{rng: rand.New(rand.NewPCG(seed, seed))}
	s.conditions = s.drawConditions()
	return s
}

// Current returns the conditions in effect for the current period.
func (s *Simulator) Current() domain.Conditions {
	return s.conditions
}

// Advance steps the conditions with a bounded random walk. Sentiment flips
// occasionally and on its own; it does not feed the numeric factors once the
// initial conditions are drawn.
func (s *Simulator) Advance() {
	c := &s.conditions
	c.VolatilityIndex = clip(c.VolatilityIndex+s.uniform(-0.1, 0.1), 0.1, 0.9)
	c.LiquidityFactor = clip(c.LiquidityFactor+s.uniform(-0.2, 0.2), 0.5, 2.0)
	c.SpreadFactor = clip(c.SpreadFactor+s.uniform(-0.1, 0.1), 0.5, 2.0)
	c.NetworkCongestion = clip(c.NetworkCongestion+s.uniform(-0.1, 0.1), 0.0, 1.0)

	if s.rng.Float64() < sentimentFlipChance {
		sentiments := []domain.Sentiment{domain.SentimentBullish, domain.SentimentBearish, domain.SentimentNeutral}
		c.Sentiment = sentiments[s.rng.IntN(len(sentiments))]
	}
}

func (s *Simulator) drawConditions() domain.Conditions {
	sentiments := []domain.Sentiment{domain.SentimentBullish, domain.SentimentBearish, domain.SentimentNeutral}
	sentiment := sentiments[s.rng.IntN(len(sentiments))]

	var volatility, liquidity, spread float64
	switch sentiment {
	case domain.SentimentBullish:
		volatility = s.uniform(0.2, 0.6)
		liquidity = s.uniform(1.1, 1.5)
		spread = s.uniform(0.8, 1.0)
	case domain.SentimentBearish:
		volatility = s.uniform(0.6, 0.9)
		liquidity = s.uniform(0.6, 0.9)
		spread = s.uniform(1.2, 1.8)
	default:
		volatility = s.uniform(0.3, 0.5)
		liquidity = s.uniform(0.9, 1.1)
		spread = s.uniform(0.9, 1.1)
	}

	return domain.Conditions{
		VolatilityIndex:   volatility,
		LiquidityFactor:   liquidity,
		SpreadFactor:      spread,
		NetworkCongestion: s.uniform(0.1, 0.8),
		Sentiment:         sentiment,
	}
}

// GeneratePortfolio builds a synthetic portfolio worth totalValue, split
// across stablecoins and majors with a smaller tail, and with minimum
// holdings set as a fraction of each balance. Stablecoins keep higher floors.
func (s *Simulator) GeneratePortfolio(totalValue float64, profile RiskProfile) (*optimizerDomain.PortfolioState, error) {
	weights := map[string]float64{
		"USDT": s.uniform(0.15, 0.25),
		"USDC": s.uniform(0.10, 0.20),
		"DAI":  s.uniform(0.05, 0.15),
		"BTC":  s.uniform(0.25, 0.35),
		"ETH":  s.uniform(0.15, 0.25),
	}

	assigned := 0.0
	for _, w := range weights {
		assigned += w
	}
	tail := []string{"ADA", "DOT", "LINK", "XRP", "LTC"}
	s.rng.Shuffle(len(tail), func(i, j int) { tail[i], tail[j] = tail[j], tail[i] })
	picked := tail[:1+s.rng.IntN(3)]
	for _, c := range picked {
		weights[c] = (1.0 - assigned) / float64(len(picked))
	}

	prices := map[string]float64{
		"USDT": 1.0, "USDC": 1.0, "DAI": 1.0,
		"BTC": 45_000, "ETH": 3_000,
		"ADA": 1.2, "DOT": 25, "LINK": 15, "XRP": 0.6, "LTC": 150,
	}

	balances := make(map[string]decimal.Decimal, len(weights))
	minHoldings := make(map[string]decimal.Decimal, len(weights))
	for currency, weight := range weights {
		balance := totalValue * weight / prices[currency]

		floorRatio := s.uniform(0.05, 0.2)
		if stablecoins[currency] {
			floorRatio = s.uniform(0.1, 0.3)
		}

		balances[currency] = decimal.NewFromFloat(balance)
		minHoldings[currency] = decimal.NewFromFloat(balance * floorRatio)
	}

	return optimizerDomain.NewPortfolioState(
		balances,
		minHoldings,
		decimal.NewFromFloat(totalValue),
		s.riskTolerance(profile),
	)
}

// PositionCaps samples per-currency position caps sized against the total
// portfolio value. Stablecoins support larger positions.
func (s *Simulator) PositionCaps(totalValue float64, currencies []string) map[string]float64 {
	caps := make(map[string]float64, len(currencies))
	for _, currency := range currencies {
		ratio := s.uniform(0.2, 0.5)
		if stablecoins[currency] {
			ratio = s.uniform(0.4, 0.8)
		}
		caps[currency] = totalValue * ratio
	}
	return caps
}

func (s *Simulator) riskTolerance(profile RiskProfile) float64 {
	switch profile {
	case ProfileConservative:
		return s.uniform(0.05, 0.15)
	case ProfileAggressive:
		return s.uniform(0.35, 0.60)
	case ProfileModerate:
		return s.uniform(0.15, 0.35)
	default:
		return 0.25
	}
}

// ScorePlan estimates how likely an execution plan is to complete as priced.
// Each leg carries a risk drawn from volatility, thin liquidity and network
// congestion; legs compound, so long plans in rough markets score high risk.
func (s *Simulator) ScorePlan(plan *optimizerDomain.ExecutionPlan, cond domain.Conditions) domain.RiskAssessment {
	legRisk := cond.VolatilityIndex*marketRiskWeight +
		(2.0-cond.LiquidityFactor)*liquidityRiskWeight +
		cond.NetworkCongestion*congestionWeight

	legs := 0
	for _, entry := range plan.Entries {
		legs += len(entry.Legs)
	}

	totalRisk := legRisk * float64(legs)
	probability := 1.0
	for i := 0; i < legs; i++ {
		probability *= 1.0 - legRisk
	}

	assessment := domain.RiskAssessment{
		TotalRiskScore:       totalRisk,
		ExecutionProbability: probability,
		Level:                domain.RiskLow,
	}
	if legs > 0 {
		assessment.AverageLegRisk = totalRisk / float64(legs)
	}
	switch {
	case totalRisk > 0.6:
		assessment.Level = domain.RiskHigh
	case totalRisk > 0.3:
		assessment.Level = domain.RiskMedium
	}
	return assessment
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
