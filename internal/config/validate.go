package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.Secret == "" {
		return errors.New("api.secret is required")
	}

	if err := c.Strategy.validate(); err != nil {
		return err
	}

	if c.Grid.Levels < 1 {
		return errors.New("grid.levels must be >= 1")
	}
	if err := requireDecimal("grid.spread", c.Grid.Spread); err != nil {
		return err
	}

	if c.Journal.Enabled() {
		if err := c.Journal.validate("journal"); err != nil {
			return err
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (s *StrategyConfig) validate() error {
	if s.Symbol == "" {
		return errors.New("strategy.symbol is required")
	}
	if s.Prefix == "" {
		return errors.New("strategy.prefix is required")
	}
	for _, r := range s.Prefix {
		if r < '0' || r > '9' {
			return fmt.Errorf("strategy.prefix must be numeric, got %q", s.Prefix)
		}
	}
	if s.Prefix[0] == '0' {
		return errors.New("strategy.prefix must not start with 0")
	}

	for _, f := range []struct{ name, value string }{
		{"strategy.quantity", s.Quantity},
		{"strategy.min_price", s.MinPrice},
		{"strategy.max_price", s.MaxPrice},
		{"strategy.tick_offset", s.TickOffset},
		{"strategy.gap_percent", s.GapPercent},
	} {
		if err := requireDecimal(f.name, f.value); err != nil {
			return err
		}
	}

	minPrice, _ := decimal.NewFromString(s.MinPrice)
	maxPrice, _ := decimal.NewFromString(s.MaxPrice)
	if minPrice.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("strategy.min_price (%s) must be below max_price (%s)", s.MinPrice, s.MaxPrice)
	}

	if s.PricePrecision < 0 {
		return errors.New("strategy.price_precision must be >= 0")
	}
	if s.QuantityPrecision < 0 {
		return errors.New("strategy.quantity_precision must be >= 0")
	}
	return nil
}

func (j *JournalConfig) validate(prefix string) error {
	if j.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if j.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if j.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if j.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if j.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if j.MinConns > j.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, j.MinConns, j.MaxConns)
	}
	return nil
}

func requireDecimal(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return fmt.Errorf("%s: invalid decimal %q", name, value)
	}
	return nil
}
