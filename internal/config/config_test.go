package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.Symbol != "HK.09988" {
		t.Errorf("symbol default: got %q", cfg.Strategy.Symbol)
	}
	if cfg.Strategy.Budget != 1000000 {
		t.Errorf("budget default: got %v", cfg.Strategy.Budget)
	}
	if cfg.Strategy.HorizonDays != 30 {
		t.Errorf("horizon default: got %d", cfg.Strategy.HorizonDays)
	}
	if cfg.Strategy.PriceTolerance != 0.05 {
		t.Errorf("tolerance default: got %v", cfg.Strategy.PriceTolerance)
	}
	if cfg.Gateway.Host != "127.0.0.1" || cfg.Gateway.Port != 11111 {
		t.Errorf("gateway default: got %s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "strategy:\n  symbol: HK.00700\n  budget: 500000\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYMBOL", "HK.03690")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.Symbol != "HK.03690" {
		t.Errorf("env must override file, got %q", cfg.Strategy.Symbol)
	}
	if cfg.Strategy.Budget != 500000 {
		t.Errorf("file value must survive, got %v", cfg.Strategy.Budget)
	}
}
