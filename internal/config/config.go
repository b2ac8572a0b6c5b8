// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Portfolio  PortfolioConfig  `mapstructure:"portfolio"`
	Market     MarketConfig     `mapstructure:"market"`
	Model      ModelConfig      `mapstructure:"model"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// PortfolioConfig holds the synthetic portfolio parameters.
type PortfolioConfig struct {
	TotalValue  float64 `mapstructure:"total_value"`
	RiskProfile string  `mapstructure:"risk_profile"`
}

// MarketConfig holds the opportunity feed and market walk parameters.
type MarketConfig struct {
	Seed             uint64 `mapstructure:"seed"`
	OpportunityCount int    `mapstructure:"opportunity_count"`
}

// ModelConfig holds the optimization model parameters.
type ModelConfig struct {
	BetaBase        float64       `mapstructure:"beta_base"`
	Gamma           float64       `mapstructure:"gamma"`
	Epsilon         float64       `mapstructure:"epsilon"`
	ProfitTolerance float64       `mapstructure:"profit_tolerance"`
	SolveBudget     time.Duration `mapstructure:"solve_budget"`
}

// SimulationConfig holds the multi-period run parameters.
type SimulationConfig struct {
	Periods int  `mapstructure:"periods"`
	TUIMode bool `mapstructure:"-"` // Set at runtime, not from config file
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ALLOC")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ALLOC_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ALLOC_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ALLOC_LOG_LEVEL", "LOG_LEVEL")

	// Portfolio
	v.BindEnv("portfolio.total_value", "ALLOC_PORTFOLIO_VALUE")
	v.BindEnv("portfolio.risk_profile", "ALLOC_RISK_PROFILE")

	// Market
	v.BindEnv("market.seed", "ALLOC_MARKET_SEED")
	v.BindEnv("market.opportunity_count", "ALLOC_OPPORTUNITY_COUNT")

	// Model
	v.BindEnv("model.solve_budget", "ALLOC_SOLVE_BUDGET")

	// Simulation
	v.BindEnv("simulation.periods", "ALLOC_PERIODS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ALLOC_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ALLOC_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ALLOC_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "ALLOC_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "triarb-allocator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Portfolio defaults
	v.SetDefault("portfolio.total_value", 100_000)
	v.SetDefault("portfolio.risk_profile", "moderate")

	// Market defaults
	v.SetDefault("market.seed", 0) // 0 draws a time-based seed
	v.SetDefault("market.opportunity_count", 10)

	// Model defaults
	v.SetDefault("model.beta_base", 0.1)
	v.SetDefault("model.gamma", 10.0)
	v.SetDefault("model.epsilon", 1e-6)
	v.SetDefault("model.profit_tolerance", 1e-6)
	v.SetDefault("model.solve_budget", "5s")

	// Simulation defaults
	v.SetDefault("simulation.periods", 5)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "triarb-allocator")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Portfolio.TotalValue <= 0 {
		return fmt.Errorf("portfolio.total_value must be positive")
	}
	switch c.Portfolio.RiskProfile {
	case "conservative", "moderate", "aggressive":
	default:
		return fmt.Errorf("invalid portfolio.risk_profile: %s", c.Portfolio.RiskProfile)
	}
	if c.Market.OpportunityCount <= 0 {
		return fmt.Errorf("market.opportunity_count must be positive")
	}
	if c.Model.Epsilon <= 0 {
		return fmt.Errorf("model.epsilon must be positive")
	}
	if c.Simulation.Periods <= 0 {
		return fmt.Errorf("simulation.periods must be positive")
	}
	return nil
}
