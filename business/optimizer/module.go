// Package optimizer implements the optimizer bounded context: model building,
// solving and multi-period allocation.
package optimizer

import (
	"context"

	"github.com/fd1az/triarb-allocator/business/market/di"
	"github.com/fd1az/triarb-allocator/business/optimizer/app"
	optimizerDI "github.com/fd1az/triarb-allocator/business/optimizer/di"
	"github.com/fd1az/triarb-allocator/business/optimizer/infra"
	"github.com/fd1az/triarb-allocator/internal/config"
	internalDI "github.com/fd1az/triarb-allocator/internal/di"
	"github.com/fd1az/triarb-allocator/internal/logger"
	"github.com/fd1az/triarb-allocator/internal/monolith"
)

// Module implements the optimizer bounded context.
type Module struct{}

// RegisterServices registers all optimizer services with the DI container.
func (m *Module) RegisterServices(c internalDI.Container) error {
	// Register Solver (private)
	internalDI.RegisterToken(c, optimizerDI.Solver, func(sr internalDI.ServiceRegistry) app.Solver {
		log := sr.Get("logger").(logger.LoggerInterface)
		return infra.NewSimplexSolver(0, log)
	})

	// Register Extractor (private)
	internalDI.RegisterToken(c, optimizerDI.Extractor, func(sr internalDI.ServiceRegistry) *app.Extractor {
		cfg := sr.Get("config").(*config.Config)
		return app.NewExtractor(cfg.Model.Epsilon, cfg.Model.ProfitTolerance)
	})

	// Register Reporter (private)
	internalDI.RegisterToken(c, optimizerDI.Reporter, func(sr internalDI.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Simulation.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	// Register Driver (public - exposed to main)
	internalDI.RegisterToken(c, optimizerDI.Driver, func(sr internalDI.ServiceRegistry) *app.Driver {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		solver := optimizerDI.GetSolver(sr)
		extractor := optimizerDI.GetExtractor(sr)
		reporter := optimizerDI.GetReporter(sr)
		generator := di.GetGenerator(sr)
		simulator := di.GetSimulator(sr)

		var recorder app.PassRecorder
		if cfg.Telemetry.Enabled {
			metrics, err := infra.NewPassMetrics()
			if err != nil {
				panic("failed to create pass metrics: " + err.Error())
			}
			recorder = metrics
		}

		driverCfg := app.DriverConfig{
			Params: app.ModelParams{
				BetaBase: cfg.Model.BetaBase,
				Gamma:    cfg.Model.Gamma,
			},
			SolveBudget:            cfg.Model.SolveBudget,
			OpportunitiesPerPeriod: cfg.Market.OpportunityCount,
		}

		return app.NewDriver(
			solver,
			extractor,
			generator,
			simulator,
			simulator,
			reporter,
			recorder,
			driverCfg,
			log,
		)
	})

	return nil
}

// Startup initializes the optimizer module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	reporter := optimizerDI.GetReporter(mono.Services())
	if err := reporter.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "optimizer module started")
	return nil
}
