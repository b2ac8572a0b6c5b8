// Package market implements the market bounded context: simulated conditions
// and the synthetic opportunity feed.
package market

import (
	"context"

	"github.com/fd1az/triarb-allocator/business/market/app"
	marketDI "github.com/fd1az/triarb-allocator/business/market/di"
	"github.com/fd1az/triarb-allocator/internal/config"
	"github.com/fd1az/triarb-allocator/internal/di"
	"github.com/fd1az/triarb-allocator/internal/logger"
	"github.com/fd1az/triarb-allocator/internal/monolith"
)

// Currencies the synthetic market trades in.
var universe = []string{"BTC", "ETH", "USDT", "USDC", "DAI", "ADA", "DOT", "LINK", "XRP", "LTC"}

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Simulator (public - conditions, portfolios, risk scoring)
	di.RegisterToken(c, marketDI.Simulator, func(sr di.ServiceRegistry) *app.Simulator {
		cfg := sr.Get("config").(*config.Config)
		return app.NewSimulator(cfg.Market.Seed)
	})

	// Register Generator (public - the opportunity feed)
	di.RegisterToken(c, marketDI.Generator, func(sr di.ServiceRegistry) *app.Generator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		sim := marketDI.GetSimulator(sr)

		// Offset the seed so the feed does not mirror the condition walk.
		seed := cfg.Market.Seed
		if seed != 0 {
			seed++
		}
		caps := sim.PositionCaps(cfg.Portfolio.TotalValue, universe)
		return app.NewGenerator(seed, log, app.WithPositionCaps(caps))
	})

	return nil
}

// Startup initializes the market module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	sim := marketDI.GetSimulator(mono.Services())
	cond := sim.Current()
	log.Info(ctx, "market module started",
		"sentiment", string(cond.Sentiment),
		"volatility", cond.VolatilityIndex,
		"liquidity", cond.LiquidityFactor,
	)
	return nil
}
