package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Gateway struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`
	Strategy struct {
		Symbol         string  `yaml:"symbol"`
		Budget         float64 `yaml:"budget"`
		HorizonDays    int     `yaml:"horizon_days"`
		Tick           float64 `yaml:"tick"`
		PriceTolerance float64 `yaml:"price_tolerance"`
		LotFallback    int64   `yaml:"lot_fallback"`
		BarCount       int     `yaml:"bar_count"`
		CleanupStale   bool    `yaml:"cleanup_stale"`
	} `yaml:"strategy"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GATEWAY_HOST"); v != "" {
		cfg.Gateway.Host = v
	}
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Strategy.Symbol = v
	}
	if v := os.Getenv("BUDGET"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strategy.Budget = budget
		}
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.File = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_CYCLE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 11111
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 30
	}
	if cfg.Strategy.Symbol == "" {
		cfg.Strategy.Symbol = "HK.09988"
	}
	if cfg.Strategy.Budget == 0 {
		cfg.Strategy.Budget = 1000000
	}
	if cfg.Strategy.HorizonDays == 0 {
		cfg.Strategy.HorizonDays = 30
	}
	if cfg.Strategy.Tick == 0 {
		cfg.Strategy.Tick = 0.1
	}
	if cfg.Strategy.PriceTolerance == 0 {
		cfg.Strategy.PriceTolerance = 0.05
	}
	if cfg.Strategy.LotFallback == 0 {
		cfg.Strategy.LotFallback = 100
	}
	if cfg.Strategy.BarCount == 0 {
		cfg.Strategy.BarCount = 260
	}
	if cfg.State.File == "" {
		cfg.State.File = "data/run_state.json"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 */30 9-16 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all required fields are sane.
func (c *Config) Validate() error {
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.Budget <= 0 {
		return fmt.Errorf("strategy.budget must be positive")
	}
	if c.Strategy.HorizonDays <= 0 {
		return fmt.Errorf("strategy.horizon_days must be positive")
	}
	if c.Strategy.Tick <= 0 {
		return fmt.Errorf("strategy.tick must be positive")
	}
	if c.Strategy.PriceTolerance < 0 {
		return fmt.Errorf("strategy.price_tolerance must not be negative")
	}
	if c.State.File == "" {
		return fmt.Errorf("state.file is required")
	}
	return nil
}
