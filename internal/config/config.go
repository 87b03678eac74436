// Package config loads and validates the bot configuration from YAML.
package config

import "time"

// Config is the root configuration for a bot instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Strategy StrategyConfig `yaml:"strategy"`
	Grid     GridConfig     `yaml:"grid"`
	Journal  JournalConfig  `yaml:"journal"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this bot instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds exchange endpoints and credentials. Key and Secret are
// usually provided via ${VAR} expansion from the environment.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	WSURL    string        `yaml:"ws_url"`
	Key      string        `yaml:"key"`
	Secret   string        `yaml:"secret"`
	Proxy    string        `yaml:"proxy"`
	Timeout  time.Duration `yaml:"timeout"`
	WindowMS int64         `yaml:"window_ms"`
}

// StrategyConfig holds the parameters shared by both strategy variants.
// Decimal quantities are strings so precision survives YAML parsing; they
// are validated at load and parsed by the strategy package.
type StrategyConfig struct {
	Symbol            string        `yaml:"symbol"`
	Prefix            string        `yaml:"prefix"`
	Quantity          string        `yaml:"quantity"`
	MinPrice          string        `yaml:"min_price"`
	MaxPrice          string        `yaml:"max_price"`
	TickOffset        string        `yaml:"tick_offset"`
	GapPercent        string        `yaml:"gap_percent"`
	PricePrecision    int32         `yaml:"price_precision"`
	QuantityPrecision int32         `yaml:"quantity_precision"`
	Interval          time.Duration `yaml:"interval"`
	// StrictTagging treats open orders without a client id as foreign
	// during reconciliation. Off by default: the account may hold orders
	// placed before client-id tagging existed.
	StrictTagging bool `yaml:"strict_tagging"`
}

// GridConfig holds the multi-level grid parameters.
type GridConfig struct {
	Levels   int           `yaml:"levels"`
	Spread   string        `yaml:"spread"`
	Interval time.Duration `yaml:"interval"`
}

// JournalConfig holds the optional Postgres fill journal. The journal is
// disabled when Host is empty.
type JournalConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether the journal is configured.
func (j JournalConfig) Enabled() bool {
	return j.Host != ""
}

// MetricsConfig holds the Prometheus exposition endpoint.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
