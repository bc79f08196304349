// Package config provides configuration management for the hype hunter.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Market      MarketConfig `mapstructure:"market"`
	Scan        ScanConfig   `mapstructure:"scan"`
	Risk        RiskConfig   `mapstructure:"risk"`
	UI          UIConfig     `mapstructure:"ui"`
	Credentials Credentials  `mapstructure:"-"` // Loaded separately

	dir string // directory the config was loaded from
}

// MarketConfig holds exchange-session and ledger seeding configuration.
type MarketConfig struct {
	SessionOpen     string  `mapstructure:"session_open"`  // "09:30"
	SessionClose    string  `mapstructure:"session_close"` // "16:00"
	Timezone        string  `mapstructure:"timezone"`      // exchange local tz
	CashSymbol      string  `mapstructure:"cash_symbol"`
	StartingBalance float64 `mapstructure:"starting_balance"`
}

// ScanConfig holds hype-scan configuration.
type ScanConfig struct {
	MinRVOL       float64 `mapstructure:"min_rvol"`
	LookbackDays  int     `mapstructure:"lookback_days"`
	IntradayRVOL  bool    `mapstructure:"intraday_rvol"`
	MaxTickerLen  int     `mapstructure:"max_ticker_len"`
	ScreenerCount int     `mapstructure:"screener_count"`
}

// RiskConfig holds position-sizing configuration.
type RiskConfig struct {
	AccountSize   float64 `mapstructure:"account_size"`
	RiskPercent   float64 `mapstructure:"risk_percent"`
	ATRMultiplier float64 `mapstructure:"atr_multiplier"`
	ATRPeriod     int     `mapstructure:"atr_period"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	Tiingo TiingoCredentials `mapstructure:"tiingo"`
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// TiingoCredentials holds Tiingo API credentials.
type TiingoCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/hype-hunter"
	}
	return filepath.Join(home, ".config", "hype-hunter")
}

// Dir returns the directory this configuration was loaded from.
func (c *Config) Dir() string {
	if c.dir == "" {
		return DefaultConfigDir()
	}
	return c.dir
}

// DBPath returns the SQLite database path under the loaded config directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Dir(), "hunter.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{dir: configDir}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found; write a template and continue with defaults.
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.session_open", "09:30")
	v.SetDefault("market.session_close", "16:00")
	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.cash_symbol", "CASH")
	v.SetDefault("market.starting_balance", 10000.0)

	v.SetDefault("scan.min_rvol", 2.0)
	v.SetDefault("scan.lookback_days", 40)
	v.SetDefault("scan.intraday_rvol", true)
	v.SetDefault("scan.max_ticker_len", 5)
	v.SetDefault("scan.screener_count", 50)

	v.SetDefault("risk.account_size", 10000.0)
	v.SetDefault("risk.risk_percent", 1.0)
	v.SetDefault("risk.atr_multiplier", 2.0)
	v.SetDefault("risk.atr_period", 20)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("openai.model", "gpt-4o")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateCredentials(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIINGO_API_KEY"); v != "" {
		cfg.Credentials.Tiingo.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("HUNTER_CASH_SYMBOL"); v != "" {
		cfg.Market.CashSymbol = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.CashSymbol == "" {
		return fmt.Errorf("market.cash_symbol must not be empty")
	}
	if c.Market.StartingBalance < 0 {
		return fmt.Errorf("market.starting_balance must be non-negative")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone %q: %w", c.Market.Timezone, err)
	}
	if _, err := parseClock(c.Market.SessionOpen); err != nil {
		return fmt.Errorf("market.session_open: %w", err)
	}
	if _, err := parseClock(c.Market.SessionClose); err != nil {
		return fmt.Errorf("market.session_close: %w", err)
	}

	if c.Scan.MinRVOL < 0 {
		return fmt.Errorf("scan.min_rvol must be non-negative")
	}
	if c.Scan.LookbackDays < 30 {
		return fmt.Errorf("scan.lookback_days must be at least 30 to cover the RVOL window")
	}

	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 100 {
		return fmt.Errorf("risk.risk_percent must be in (0, 100]")
	}
	if c.Risk.ATRMultiplier <= 0 {
		return fmt.Errorf("risk.atr_multiplier must be positive")
	}
	if c.Risk.ATRPeriod < 2 {
		return fmt.Errorf("risk.atr_period must be at least 2")
	}

	return nil
}

// SessionOpenMinutes returns the session open as minutes after midnight.
func (c *Config) SessionOpenMinutes() int {
	m, _ := parseClock(c.Market.SessionOpen)
	return m
}

// SessionCloseMinutes returns the session close as minutes after midnight.
func (c *Config) SessionCloseMinutes() int {
	m, _ := parseClock(c.Market.SessionClose)
	return m
}

// Location returns the exchange's time.Location.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
