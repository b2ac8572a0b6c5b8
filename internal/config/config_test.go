package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test-app\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("app name = %q, want test-app", cfg.App.Name)
	}
	if cfg.Portfolio.TotalValue != 100_000 {
		t.Errorf("total value = %g, want 100000", cfg.Portfolio.TotalValue)
	}
	if cfg.Portfolio.RiskProfile != "moderate" {
		t.Errorf("risk profile = %q, want moderate", cfg.Portfolio.RiskProfile)
	}
	if cfg.Model.SolveBudget != 5*time.Second {
		t.Errorf("solve budget = %v, want 5s", cfg.Model.SolveBudget)
	}
	if cfg.Simulation.Periods != 5 {
		t.Errorf("periods = %d, want 5", cfg.Simulation.Periods)
	}
}

func TestLoad_TelemetrySection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telemetry:
  enabled: true
  service_name: allocator-dev
  otlp_endpoint: collector:4317
  otlp_headers: api-key=abc123
  prometheus_port: 9191
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tel := cfg.Telemetry
	if !tel.Enabled {
		t.Error("telemetry not enabled")
	}
	if tel.OTLPEndpoint != "collector:4317" {
		t.Errorf("endpoint = %q, want collector:4317", tel.OTLPEndpoint)
	}
	if tel.OTLPHeaders != "api-key=abc123" {
		t.Errorf("headers = %q, want api-key=abc123", tel.OTLPHeaders)
	}
	if tel.PrometheusPort != 9191 {
		t.Errorf("prometheus port = %d, want 9191", tel.PrometheusPort)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ALLOC_OTEL_HEADERS", "api-key=from-env")
	t.Setenv("ALLOC_PERIODS", "12")

	cfg, err := Load(writeConfig(t, "telemetry:\n  otlp_headers: api-key=from-file\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Telemetry.OTLPHeaders != "api-key=from-env" {
		t.Errorf("headers = %q, want api-key=from-env", cfg.Telemetry.OTLPHeaders)
	}
	if cfg.Simulation.Periods != 12 {
		t.Errorf("periods = %d, want 12", cfg.Simulation.Periods)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-positive periods", "simulation:\n  periods: 0\n"},
		{"unknown risk profile", "portfolio:\n  risk_profile: reckless\n"},
		{"non-positive epsilon", "model:\n  epsilon: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load accepted an invalid config")
			}
		})
	}
}
