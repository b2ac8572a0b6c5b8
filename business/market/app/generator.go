package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	optimizerDomain "github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/logger"
)

const (
	rateVariation      = 0.002
	minArbitrageMargin = 0.008
	maxArbitrageMargin = 0.025
	minLegFee          = 0.0008
	maxLegFee          = 0.002
	minConfidence      = 0.70
	maxConfidence      = 0.95

	// Fallback position cap for source currencies without an explicit cap.
	defaultPositionCap = 20_000
)

var stablecoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
}

// marketCapUSD feeds synthetic cross rates for pairs without a quoted price.
var marketCapUSD = map[string]float64{
	"BTC":  800_000_000_000,
	"ETH":  360_000_000_000,
	"USDT": 80_000_000_000,
	"XRP":  40_000_000_000,
	"ADA":  35_000_000_000,
	"DOT":  30_000_000_000,
	"LINK": 15_000_000_000,
	"LTC":  12_000_000_000,
}

// liquidityRangeUSD bounds the depth sampled for a leg, keyed by its input
// currency.
var liquidityRangeUSD = map[string][2]float64{
	"BTC":  {1_000_000, 10_000_000},
	"ETH":  {500_000, 5_000_000},
	"USDT": {2_000_000, 20_000_000},
	"ADA":  {100_000, 1_000_000},
	"DOT":  {150_000, 1_500_000},
	"LINK": {100_000, 1_000_000},
	"XRP":  {200_000, 2_000_000},
	"LTC":  {80_000, 800_000},
}

// Generator fabricates triangular cycles with an engineered profit margin.
// It stands in for an external arbitrage analyzer feed: the closing rate of
// each cycle is set below its theoretical value so the cycle nets a small
// gain before fees.
type Generator struct {
	rng        *rand.Rand
	currencies []string
	stables    []string
	baseRates  map[string]float64
	caps       map[string]float64
	previous   []*optimizerDomain.Opportunity
	seq        int
	logger     logger.LoggerInterface
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithPositionCaps sets per-currency position caps applied to opportunities
// by their source currency.
func WithPositionCaps(caps map[string]float64) GeneratorOption {
	return func(g *Generator) {
		g.caps = make(map[string]float64, len(caps))
		for k, v := range caps {
			g.caps[k] = v
		}
	}
}

// NewGenerator creates a Generator. seed zero draws a time-based seed.
func NewGenerator(seed uint64, log logger.LoggerInterface, opts ...GeneratorOption) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g := &Generator{
		rng:        rand.New(rand.NewPCG(seed, seed)),
		currencies: []string{"BTC", "ETH", "USDT", "ADA", "DOT", "LINK", "XRP", "LTC"},
		stables:    []string{"USDT"},
		caps:       map[string]float64{},
		logger:     log,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.baseRates = g.seedBaseRates()
	return g
}

func (g *Generator) seedBaseRates() map[string]float64 {
	return map[string]float64{
		"USDT/BTC":  1.0 / (45_000 + g.uniform(-5_000, 5_000)),
		"USDT/ETH":  1.0 / (3_000 + g.uniform(-500, 500)),
		"USDT/ADA":  1.0 / (1.2 + g.uniform(-0.3, 0.3)),
		"USDT/DOT":  1.0 / (25 + g.uniform(-5, 5)),
		"USDT/LINK": 1.0 / (15 + g.uniform(-3, 3)),
		"USDT/XRP":  1.0 / (0.6 + g.uniform(-0.2, 0.2)),
		"USDT/LTC":  1.0 / (150 + g.uniform(-30, 30)),
		"BTC/ETH":   1.0 / (0.067 + g.uniform(-0.01, 0.01)),
	}
}

// Opportunities returns up to n profitable cycles ranked by expected profit
// rate weighted by confidence. The first call fabricates a fresh batch; later
// calls perturb the surviving batch and top it up, so opportunities drift and
// decay across periods the way a live feed would.
func (g *Generator) Opportunities(ctx context.Context, n int) ([]*optimizerDomain.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := g.perturb(g.previous)
	for len(batch) < n {
		opp, err := g.fabricate()
		if err != nil {
			return nil, err
		}
		if opp != nil {
			batch = append(batch, opp)
		}
	}

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].ProfitRate()*batch[i].Confidence > batch[j].ProfitRate()*batch[j].Confidence
	})
	if len(batch) > n {
		batch = batch[:n]
	}

	g.previous = batch
	g.logger.Debug(ctx, "opportunity batch ready", "count", len(batch))
	return batch, nil
}

// fabricate builds one cycle starting from a stablecoin. It returns nil when
// the engineered margin does not survive the sampled fees.
func (g *Generator) fabricate() (*optimizerDomain.Opportunity, error) {
	source := g.stables[g.rng.IntN(len(g.stables))]
	intermediate := g.pickOther(source)
	quote := g.pickOther(source, intermediate)
	cycle := [3]string{source, intermediate, quote}

	r1 := g.quotedRate(source, intermediate)
	r2 := g.quotedRate(intermediate, quote)
	margin := g.uniform(minArbitrageMargin, maxArbitrageMargin)
	r3 := 1.0 / (r1 * r2 * (1.0 - margin))
	rates := [3]float64{r1, r2, r3}

	var fees, liquidity [3]float64
	for i := 0; i < 3; i++ {
		fees[i] = g.uniform(minLegFee, maxLegFee)
		liquidity[i] = g.legLiquidity(cycle[i], rates, i)
	}

	confidence := g.uniform(minConfidence, maxConfidence)
	g.seq++
	id := fmt.Sprintf("%s-%s-%s-%d", source, intermediate, quote, g.seq)

	opp, err := optimizerDomain.NewOpportunity(
		id, cycle, rates, fees, liquidity, confidence, g.positionCap(source),
	)
	if err != nil {
		return nil, err
	}
	if opp.ProfitRate() <= 0 {
		return nil, nil
	}
	return opp, nil
}

// perturb applies a small random walk to the rates and liquidity of existing
// opportunities and drops the ones whose edge no longer survives fees.
func (g *Generator) perturb(opps []*optimizerDomain.Opportunity) []*optimizerDomain.Opportunity {
	kept := make([]*optimizerDomain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		legs := opp.Legs()
		drift := g.uniform(0.995, 1.005)

		var rates, fees, liquidity [3]float64
		for i, leg := range legs {
			rates[i] = leg.Rate * drift * g.uniform(0.998, 1.002)
			fees[i] = leg.Fee
			liquidity[i] = leg.LiquidityCap * g.uniform(0.9, 1.1)
		}
		confidence := min(opp.Confidence*g.uniform(0.95, 1.05), 1.0)

		updated, err := optimizerDomain.NewOpportunity(
			opp.ID, opp.Cycle, rates, fees, liquidity, confidence, opp.MaxPosition,
		)
		if err != nil || updated.ProfitRate() <= 0 {
			continue
		}
		kept = append(kept, updated)
	}
	return kept
}

func (g *Generator) pickOther(exclude ...string) string {
	for {
		c := g.currencies[g.rng.IntN(len(g.currencies))]
		excluded := false
		for _, e := range exclude {
			if c == e {
				excluded = true
				break
			}
		}
		if !excluded {
			return c
		}
	}
}

// quotedRate returns the conversion rate from one currency to another, using
// the quoted table where available and a market-cap ratio otherwise.
func (g *Generator) quotedRate(from, to string) float64 {
	if base, ok := g.baseRates[from+"/"+to]; ok {
		return base * (1 + g.uniform(-rateVariation, rateVariation))
	}
	if base, ok := g.baseRates[to+"/"+from]; ok {
		return 1.0 / (base * (1 + g.uniform(-rateVariation, rateVariation)))
	}
	fromCap, ok := marketCapUSD[from]
	if !ok {
		fromCap = 1_000_000_000
	}
	toCap, ok := marketCapUSD[to]
	if !ok {
		toCap = 1_000_000_000
	}
	return (fromCap / toCap) * g.uniform(0.8, 1.2)
}

// legLiquidity samples pool depth for a leg in units of its input currency.
// The USD ranges are converted through the cycle's cumulative rate so deep
// books stay deep regardless of the leg's denomination.
func (g *Generator) legLiquidity(inputCurrency string, rates [3]float64, legIndex int) float64 {
	bounds, ok := liquidityRangeUSD[inputCurrency]
	if !ok {
		bounds = [2]float64{100_000, 1_000_000}
	}
	depthUSD := g.uniform(bounds[0], bounds[1]) * g.uniform(0.5, 1.5)

	// Source legs are quoted in the stablecoin already.
	if legIndex == 0 {
		return depthUSD
	}
	conversion := 1.0
	for i := 0; i < legIndex; i++ {
		conversion *= rates[i]
	}
	return depthUSD * conversion
}

func (g *Generator) positionCap(source string) float64 {
	if cap, ok := g.caps[source]; ok {
		return cap
	}
	return defaultPositionCap
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
