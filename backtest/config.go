package backtest

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// YAMLConfig is the on-disk configuration shape.
type YAMLConfig struct {
	Backtest struct {
		Symbol      string  `yaml:"symbol"`
		Start       string  `yaml:"start"`
		End         string  `yaml:"end"`
		InitialCash float64 `yaml:"initial_cash"`
	} `yaml:"backtest"`

	Strategy struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
	} `yaml:"strategy"`

	Provider ProviderConfig `yaml:"provider"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// ProviderConfig selects and parameterizes the price data source. The core
// never reads it; cmd wires the matching fetcher.
type ProviderConfig struct {
	Type      string `yaml:"type"` // eastmoney | alpaca | csv
	CSVDir    string `yaml:"csv_dir"`
	CachePath string `yaml:"cache_path"`

	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"alpaca"`
}

// RunConfig is the explicit per-run configuration record. The engine relies
// on no ambient state; everything it needs arrives here.
type RunConfig struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	InitialCash decimal.Decimal
	ShortWindow int
	LongWindow  int
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		InitialCash: decimal.NewFromInt(10_000),
		ShortWindow: 20,
		LongWindow:  50,
	}
}

// Validate fails fast with ErrInvalidConfig before any data is fetched,
// regardless of which surface (CLI flags, config file, dashboard form)
// supplied the values.
func (c RunConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidConfig)
	}
	if !c.InitialCash.IsPositive() {
		return fmt.Errorf("%w: initial cash %s", ErrInvalidConfig, c.InitialCash)
	}
	if c.ShortWindow < 1 || c.LongWindow < 1 || c.ShortWindow >= c.LongWindow {
		return fmt.Errorf("%w: ma windows %d/%d (want 1 <= short < long)", ErrInvalidConfig, c.ShortWindow, c.LongWindow)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidConfig,
			c.End.Format("2006-01-02"), c.Start.Format("2006-01-02"))
	}
	return nil
}

// LoadConfig reads the YAML file at path. Unset fields keep their zero value;
// callers merge over DefaultRunConfig via (*YAMLConfig).RunConfig.
func LoadConfig(path string) (*YAMLConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var yc YAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &yc, nil
}

// RunConfig merges the file values over the defaults. Dates must be
// YYYY-MM-DD. The result is not validated here; Runner.Run does that.
func (yc *YAMLConfig) RunConfig() (RunConfig, error) {
	cfg := DefaultRunConfig()

	if yc.Backtest.Symbol != "" {
		cfg.Symbol = yc.Backtest.Symbol
	}
	if yc.Backtest.InitialCash != 0 {
		cfg.InitialCash = decimal.NewFromFloat(yc.Backtest.InitialCash)
	}
	if yc.Strategy.ShortWindow != 0 {
		cfg.ShortWindow = yc.Strategy.ShortWindow
	}
	if yc.Strategy.LongWindow != 0 {
		cfg.LongWindow = yc.Strategy.LongWindow
	}

	if yc.Backtest.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.Start, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.start: %w", err)
		}
		cfg.Start = t
	}
	if yc.Backtest.End != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.End, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.end: %w", err)
		}
		cfg.End = t
	}

	return cfg, nil
}
