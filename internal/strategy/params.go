package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/bpx-grid/internal/config"
	"github.com/rickgao/bpx-grid/internal/model"
)

// Params are the parsed per-symbol parameters shared by both strategies.
type Params struct {
	Symbol string
	Base   string // base asset, e.g. SOL
	Quote  string // quote asset, e.g. USDC

	// Prefix tags client order ids so orders from this instance can be
	// recognized after a restart.
	Prefix string

	Quantity   decimal.Decimal
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	TickOffset decimal.Decimal
	GapPercent decimal.Decimal

	PricePrecision    int32
	QuantityPrecision int32

	Interval time.Duration

	// StrictTagging treats untagged open orders as foreign during
	// reconciliation instead of adopting them.
	StrictTagging bool
}

// ParamsFromConfig parses the validated strategy config into decimals.
func ParamsFromConfig(cfg config.StrategyConfig) (Params, error) {
	base, quote, ok := strings.Cut(cfg.Symbol, "_")
	if !ok || base == "" || quote == "" {
		return Params{}, fmt.Errorf("symbol %q is not of the form BASE_QUOTE", cfg.Symbol)
	}

	p := Params{
		Symbol:            cfg.Symbol,
		Base:              base,
		Quote:             quote,
		Prefix:            cfg.Prefix,
		PricePrecision:    cfg.PricePrecision,
		QuantityPrecision: cfg.QuantityPrecision,
		Interval:          cfg.Interval,
		StrictTagging:     cfg.StrictTagging,
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"quantity", cfg.Quantity, &p.Quantity},
		{"min_price", cfg.MinPrice, &p.MinPrice},
		{"max_price", cfg.MaxPrice, &p.MaxPrice},
		{"tick_offset", cfg.TickOffset, &p.TickOffset},
		{"gap_percent", cfg.GapPercent, &p.GapPercent},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Params{}, fmt.Errorf("strategy.%s: %w", f.name, err)
		}
		*f.dst = d
	}

	return p, nil
}

// GridParams are the parsed multi-level grid parameters.
type GridParams struct {
	Levels   int
	Spread   decimal.Decimal
	Interval time.Duration
}

// GridParamsFromConfig parses the validated grid config.
func GridParamsFromConfig(cfg config.GridConfig) (GridParams, error) {
	spread, err := decimal.NewFromString(cfg.Spread)
	if err != nil {
		return GridParams{}, fmt.Errorf("grid.spread: %w", err)
	}
	return GridParams{
		Levels:   cfg.Levels,
		Spread:   spread,
		Interval: cfg.Interval,
	}, nil
}

func (p Params) roundPrice(d decimal.Decimal) decimal.Decimal {
	return d.Round(p.PricePrecision)
}

func (p Params) roundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(p.QuantityPrecision)
}

// inBand reports whether a price is inside the configured [min, max] band.
func (p Params) inBand(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(p.MinPrice) && price.LessThanOrEqual(p.MaxPrice)
}

// owns reports whether an open order belongs to this instance. Untagged
// orders are adopted unless strict tagging is on.
func (p Params) owns(o model.Order) bool {
	if o.ClientID == nil {
		return !p.StrictTagging
	}
	return model.HasPrefix(*o.ClientID, p.Prefix)
}
