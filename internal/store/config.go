package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"signal-trading-bot/internal/indicator"
)

type Config struct {
	ServiceName        string           `yaml:"service_name"`
	Mode               string           `yaml:"mode"`
	Feed               string           `yaml:"feed"`
	Exchange           string           `yaml:"exchange"`
	Universe           []string         `yaml:"universe"`
	BarIntervalSeconds int              `yaml:"bar_interval_seconds"`
	Indicators         indicator.Config `yaml:"indicators"`
	Trading            struct {
		AutoStart bool `yaml:"auto_start"`
		Qty       struct {
			Default   int64            `yaml:"default"`
			PerSymbol map[string]int64 `yaml:"per_symbol"`
		} `yaml:"qty"`
	} `yaml:"trading"`
	Risk struct {
		MaxPosition  int64   `yaml:"max_position"`
		MaxDailyLoss float64 `yaml:"max_daily_loss"`
	} `yaml:"risk"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
		PostgresDSN   string `yaml:"postgres_dsn"`
		ExportFormat  string `yaml:"export_format"`
	} `yaml:"journal"`
	Replay struct {
		Path  string  `yaml:"path"`
		Speed float64 `yaml:"speed"`
	} `yaml:"replay"`
	WS struct {
		URL string `yaml:"url"`
	} `yaml:"ws"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	// Credentials only ever come from the environment.
	APIKey      string `yaml:"-"`
	AccessToken string `yaml:"-"`
}

// BarInterval is the configured bar length.
func (c *Config) BarInterval() time.Duration {
	return time.Duration(c.BarIntervalSeconds) * time.Second
}

// QtyFor returns the fixed order quantity for symbol.
func (c *Config) QtyFor(symbol string) int64 {
	if v, ok := c.Trading.Qty.PerSymbol[symbol]; ok && v > 0 {
		return v
	}
	return c.Trading.Qty.Default
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	switch c.Feed {
	case "REPLAY", "KITE", "WS":
	default:
		return fmt.Errorf("invalid feed '%s': must be 'REPLAY', 'KITE' or 'WS'", c.Feed)
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.BarIntervalSeconds <= 0 {
		return fmt.Errorf("bar_interval_seconds must be positive, got %d", c.BarIntervalSeconds)
	}
	ind := c.Indicators
	if ind.Short <= 0 || ind.Long <= 0 || ind.ROCPeriod <= 0 {
		return fmt.Errorf("indicators must be positive, got sma_short=%d sma_long=%d roc_period=%d", ind.Short, ind.Long, ind.ROCPeriod)
	}
	if ind.Short >= ind.Long {
		return fmt.Errorf("indicators.sma_short (%d) must be below sma_long (%d)", ind.Short, ind.Long)
	}
	if c.Trading.Qty.Default <= 0 {
		return fmt.Errorf("trading.qty.default must be positive, got %d", c.Trading.Qty.Default)
	}
	if c.Risk.MaxPosition < 0 || c.Risk.MaxDailyLoss < 0 {
		return errors.New("risk limits cannot be negative")
	}
	if c.Risk.MaxPosition > 0 && c.Risk.MaxPosition < c.Trading.Qty.Default {
		return fmt.Errorf("risk.max_position (%d) is below trading.qty.default (%d)", c.Risk.MaxPosition, c.Trading.Qty.Default)
	}
	if c.Feed == "REPLAY" && c.Replay.Path == "" {
		return errors.New("replay.path is required for feed REPLAY")
	}
	if c.Feed == "WS" && c.WS.URL == "" {
		return errors.New("ws.url is required for feed WS")
	}
	if c.Mode == "LIVE" && (c.APIKey == "" || c.AccessToken == "") {
		return errors.New("LIVE mode needs KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	if c.Feed == "KITE" && (c.APIKey == "" || c.AccessToken == "") {
		return errors.New("feed KITE needs KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	switch c.Journal.ExportFormat {
	case "", "csv", "json":
	default:
		return fmt.Errorf("journal.export_format must be 'csv' or 'json', got '%s'", c.Journal.ExportFormat)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes yaml, applies environment overrides and defaults, and
// validates the result.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "signal-trading-bot"
	}
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Feed == "" {
		c.Feed = "KITE"
	}
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.BarIntervalSeconds == 0 {
		c.BarIntervalSeconds = 60
	}
	d := indicator.DefaultConfig()
	if c.Indicators.Short == 0 {
		c.Indicators.Short = d.Short
	}
	if c.Indicators.Long == 0 {
		c.Indicators.Long = d.Long
	}
	if c.Indicators.ROCPeriod == 0 {
		c.Indicators.ROCPeriod = d.ROCPeriod
	}
	if c.Trading.Qty.Default == 0 {
		c.Trading.Qty.Default = 1
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	for i, s := range c.Universe {
		c.Universe[i] = strings.ToUpper(strings.TrimSpace(s))
	}
}

func (c *Config) applyEnv() error {
	c.APIKey = os.Getenv("KITE_API_KEY")
	c.AccessToken = os.Getenv("KITE_ACCESS_TOKEN")
	if v := os.Getenv("TRADER_MODE"); v != "" {
		c.Mode = strings.ToUpper(v)
	}
	if v := os.Getenv("TRADER_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("TRADER_PG_DSN"); v != "" {
		c.Journal.PostgresDSN = v
	}
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		c.Journal.Dir = v
	}
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRADER_LOG_RETENTION_DAYS '%s': %w", v, err)
		}
		c.Journal.RetentionDays = n
	}
	return nil
}
