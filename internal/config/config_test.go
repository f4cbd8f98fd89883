package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.QuoteCurrency != "USDT" {
		t.Errorf("expected USDT default, got %q", cfg.Scan.QuoteCurrency)
	}
	if cfg.Scan.TopNVolume != 50 || cfg.Scan.MinStreak != 3 {
		t.Errorf("unexpected scan defaults: %+v", cfg.Scan)
	}
	if len(cfg.Scan.Timeframes) != 8 {
		t.Errorf("expected 8 default timeframes, got %v", cfg.Scan.Timeframes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scan:
  quote_currency: USDC
  top_n_volume: 20
  timeframes: ["1h", "4h"]
cache:
  dir: /tmp/radar-cache
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOP_N_VOLUME", "70")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.QuoteCurrency != "USDC" {
		t.Errorf("yaml value not applied: %q", cfg.Scan.QuoteCurrency)
	}
	if cfg.Scan.TopNVolume != 70 {
		t.Errorf("env override not applied: %d", cfg.Scan.TopNVolume)
	}
	if len(cfg.Scan.Timeframes) != 2 {
		t.Errorf("unexpected timeframes: %v", cfg.Scan.Timeframes)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Scan.CandleWindow = 3
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for tiny candle window")
	}
}
