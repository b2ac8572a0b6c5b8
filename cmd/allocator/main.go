// Package main is the entry point for the triangular arbitrage allocator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/triarb-allocator/business/market"
	marketApp "github.com/fd1az/triarb-allocator/business/market/app"
	marketDI "github.com/fd1az/triarb-allocator/business/market/di"
	"github.com/fd1az/triarb-allocator/business/optimizer"
	optimizerDI "github.com/fd1az/triarb-allocator/business/optimizer/di"
	"github.com/fd1az/triarb-allocator/internal/apm"
	"github.com/fd1az/triarb-allocator/internal/config"
	"github.com/fd1az/triarb-allocator/internal/health"
	"github.com/fd1az/triarb-allocator/internal/logger"
	"github.com/fd1az/triarb-allocator/internal/metrics"
	"github.com/fd1az/triarb-allocator/internal/monolith"
	"github.com/fd1az/triarb-allocator/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("triarb-allocator %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.Simulation.TUIMode = tuiMode

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting triangular arbitrage allocator",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}
		if cfg.Telemetry.OTLPHeaders != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.OTLPHeaders)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // Must be first - provides conditions and the feed
		&optimizer.Module{}, // Depends on market
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return runAllocation(ctx, cfg, mono, log)
		}
		return runTUI(ctx, startFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return runCLI(ctx, cfg, mono, log)
}

// runAllocation builds the synthetic portfolio and drives the multi-period run.
func runAllocation(ctx context.Context, cfg *config.Config, mono monolith.Monolith, log logger.LoggerInterface) error {
	simulator := marketDI.GetSimulator(mono.Services())
	driver := optimizerDI.GetDriver(mono.Services())

	state, err := simulator.GeneratePortfolio(
		cfg.Portfolio.TotalValue,
		marketApp.RiskProfile(cfg.Portfolio.RiskProfile),
	)
	if err != nil {
		return fmt.Errorf("failed to generate portfolio: %w", err)
	}

	log.Info(ctx, "portfolio generated",
		"total_value", cfg.Portfolio.TotalValue,
		"risk_profile", cfg.Portfolio.RiskProfile,
		"risk_tolerance", state.RiskTolerance(),
		"currencies", len(state.Currencies()),
	)

	results, err := driver.Run(ctx, state, cfg.Simulation.Periods)
	if err != nil {
		return fmt.Errorf("allocation run failed: %w", err)
	}

	invested := 0
	failed := 0
	totalInvested := 0.0
	for _, pr := range results {
		if pr.Err != nil {
			failed++
		}
		if pr.Result.TotalInvestment > 0 {
			invested++
			totalInvested += pr.Result.TotalInvestment
		}
	}

	finalValue := state.TotalValue()
	log.Info(ctx, "allocation run complete",
		"periods", len(results),
		"invested_periods", invested,
		"failed_periods", failed,
		"total_invested", totalInvested,
		"final_value", finalValue.InexactFloat64(),
		"profit", finalValue.InexactFloat64()-cfg.Portfolio.TotalValue,
	)
	return nil
}

func runCLI(ctx context.Context, cfg *config.Config, mono monolith.Monolith, log logger.LoggerInterface) error {
	log.Info(ctx, "all modules started, beginning allocation run")

	if err := runAllocation(ctx, cfg, mono, log); err != nil {
		return err
	}

	reporter := optimizerDI.GetReporter(mono.Services())
	if err := reporter.Stop(); err != nil {
		log.Error(ctx, "error stopping reporter", "error", err)
	}

	return nil
}

func runTUI(ctx context.Context, startFunc func() error) error {
	// Channel to receive StartRunMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartRun = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run the allocation in the background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		ui.Send(ui.RunCompleteMsg{})
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for run errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
