package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://api.backpack.exchange/"
	DefaultWSURL             = "wss://ws.backpack.exchange"
	DefaultAPITimeout        = 30 * time.Second
	DefaultWindowMS          = 5000
	DefaultSymbol            = "SOL_USDC"
	DefaultQuantity          = "0.2"
	DefaultTickOffset        = "0.02"
	DefaultGapPercent        = "0.001"
	DefaultPricePrecision    = 2
	DefaultQuantityPrecision = 2
	DefaultStrategyInterval  = 7 * time.Second
	DefaultGridLevels        = 20
	DefaultGridSpread        = "0.005"
	DefaultGridInterval      = 10 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.WindowMS == 0 {
		c.API.WindowMS = DefaultWindowMS
	}

	// Strategy defaults
	if c.Strategy.Symbol == "" {
		c.Strategy.Symbol = DefaultSymbol
	}
	if c.Strategy.Quantity == "" {
		c.Strategy.Quantity = DefaultQuantity
	}
	if c.Strategy.TickOffset == "" {
		c.Strategy.TickOffset = DefaultTickOffset
	}
	if c.Strategy.GapPercent == "" {
		c.Strategy.GapPercent = DefaultGapPercent
	}
	if c.Strategy.PricePrecision == 0 {
		c.Strategy.PricePrecision = DefaultPricePrecision
	}
	if c.Strategy.QuantityPrecision == 0 {
		c.Strategy.QuantityPrecision = DefaultQuantityPrecision
	}
	if c.Strategy.Interval == 0 {
		c.Strategy.Interval = DefaultStrategyInterval
	}

	// Grid defaults
	if c.Grid.Levels == 0 {
		c.Grid.Levels = DefaultGridLevels
	}
	if c.Grid.Spread == "" {
		c.Grid.Spread = DefaultGridSpread
	}
	if c.Grid.Interval == 0 {
		c.Grid.Interval = DefaultGridInterval
	}

	// Journal defaults (only meaningful when enabled)
	if c.Journal.Port == 0 {
		c.Journal.Port = DefaultDBPort
	}
	if c.Journal.SSLMode == "" {
		c.Journal.SSLMode = DefaultDBSSLMode
	}
	if c.Journal.MaxConns == 0 {
		c.Journal.MaxConns = DefaultMaxConns
	}
	if c.Journal.MinConns == 0 {
		c.Journal.MinConns = DefaultMinConns
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
