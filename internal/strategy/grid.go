package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/bpx-grid/internal/metrics"
	"github.com/rickgao/bpx-grid/internal/model"
)

var (
	driftLow  = decimal.RequireFromString("0.9")
	driftHigh = decimal.RequireFromString("1.1")
)

// QuoteSource returns a fresh reference price, ok=false if none is
// available. The websocket stream's mid quote plugs in here.
type QuoteSource func() (decimal.Decimal, bool)

// Grid maintains a ladder of limit orders spaced geometrically around the
// current price. A filled level is replaced by an order on the opposite
// side one spread away, and the whole ladder is rebuilt when the price
// drifts past its extremes.
type Grid struct {
	params Params
	grid   GridParams
	ex     Exchange
	md     MarketData
	rec    Recorder
	logger *slog.Logger
	quote  QuoteSource

	orders        map[string]model.Order // keyed by exchange order id
	realizedTotal decimal.Decimal
}

// NewGrid creates a grid manager. rec may be nil.
func NewGrid(params Params, grid GridParams, ex Exchange, md MarketData, rec Recorder, logger *slog.Logger) *Grid {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grid{
		params: params,
		grid:   grid,
		ex:     ex,
		md:     md,
		rec:    rec,
		logger: logger.With("strategy", "grid", "symbol", params.Symbol),
		orders: map[string]model.Order{},
	}
}

// SetQuoteSource installs a fresher price source consulted before falling
// back to the ticker. Must be called before Run.
func (g *Grid) SetQuoteSource(src QuoteSource) {
	g.quote = src
}

// RealizedProfit returns the profit accumulated over this instance's fills.
func (g *Grid) RealizedProfit() decimal.Decimal {
	return g.realizedTotal
}

// Run sweeps leftover tagged orders, builds the ladder, and cycles until
// the context is cancelled or an order-path call exhausts its retries.
func (g *Grid) Run(ctx context.Context) error {
	if err := g.sweep(ctx); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := g.build(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(g.grid.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := g.cycle(ctx); err != nil {
			metrics.CycleErrors.Inc()
			return err
		}
	}
}

func (g *Grid) cycle(ctx context.Context) error {
	// An empty ladder means the initial build had no reference price, or a
	// rebuild was torn down without one. Keep trying.
	if len(g.orders) == 0 {
		return g.build(ctx)
	}
	if err := g.checkFills(ctx); err != nil {
		return err
	}
	return g.adjust(ctx)
}

// referencePrice prefers the live stream quote and falls back to the
// ticker's last trade price.
func (g *Grid) referencePrice(ctx context.Context) (decimal.Decimal, bool) {
	if g.quote != nil {
		if p, ok := g.quote(); ok && p.IsPositive() {
			return p, true
		}
	}

	t, err := g.md.Ticker(ctx, g.params.Symbol)
	if err != nil {
		g.logger.Warn("ticker read failed", "error", err)
		return decimal.Decimal{}, false
	}
	if !t.LastPrice.IsPositive() {
		return decimal.Decimal{}, false
	}
	return t.LastPrice, true
}

// build places the ladder around the current price: levels spaced one
// spread apart, bids below the center and asks above it.
func (g *Grid) build(ctx context.Context) error {
	center, ok := g.referencePrice(ctx)
	if !ok {
		g.logger.Warn("no reference price, deferring grid build")
		return nil
	}

	halfSpan := g.grid.Spread.Mul(decimal.NewFromInt(int64(g.grid.Levels))).Div(two)
	lower := center.Div(one.Add(halfSpan))
	step := one.Add(g.grid.Spread)

	g.logger.Info("building grid",
		"center", center, "levels", g.grid.Levels, "spread", g.grid.Spread)

	levelPrice := lower
	for i := 0; i < g.grid.Levels; i++ {
		if i > 0 {
			levelPrice = levelPrice.Mul(step)
		}
		price := g.params.roundPrice(levelPrice)

		var side model.Side
		switch {
		case price.LessThan(center):
			side = model.Bid
		case price.GreaterThan(center):
			side = model.Ask
		default:
			continue
		}

		if err := g.place(ctx, side, price); err != nil {
			return err
		}
	}

	return nil
}

// checkFills polls every tracked order. One gone from the open book is
// treated as filled: profit is realized against the current reference
// price and a replacement is placed on the opposite side one spread away
// from it.
func (g *Grid) checkFills(ctx context.Context) error {
	ids := make([]string, 0, len(g.orders))
	for id := range g.orders {
		ids = append(ids, id)
	}

	for _, id := range ids {
		order := g.orders[id]

		open, err := g.ex.OpenOrder(ctx, g.params.Symbol, id)
		if err != nil {
			return fmt.Errorf("query grid order %s: %w", id, err)
		}
		if open != nil {
			continue
		}

		delete(g.orders, id)

		// The exchange's 202 path means the true execution price is not in
		// hand; the current reference price approximates it, with the order
		// price as a last resort.
		fillPrice, ok := g.referencePrice(ctx)
		if !ok {
			fillPrice = order.Price
		}

		var profit decimal.Decimal
		if order.Side == model.Bid {
			profit = fillPrice.Sub(order.Price).Mul(order.Quantity)
		} else {
			profit = order.Price.Sub(fillPrice).Mul(order.Quantity)
		}
		g.realizedTotal = g.realizedTotal.Add(profit)

		metrics.OrdersFilled.WithLabelValues(string(order.Side)).Inc()
		metrics.RealizedProfit.Set(g.realizedTotal.InexactFloat64())
		g.logger.Info("grid level filled",
			"side", order.Side, "order_id", id, "order_price", order.Price,
			"fill_price", fillPrice, "profit", profit, "total_profit", g.realizedTotal)

		if g.rec != nil {
			if err := g.rec.RecordFill(ctx, &order, fillPrice, profit); err != nil {
				g.logger.Warn("journal fill failed", "order_id", id, "error", err)
			}
		}

		replaceSide := order.Side.Opposite()
		var replacePrice decimal.Decimal
		if replaceSide == model.Ask {
			replacePrice = g.params.roundPrice(fillPrice.Mul(one.Add(g.grid.Spread)))
		} else {
			replacePrice = g.params.roundPrice(fillPrice.Mul(one.Sub(g.grid.Spread)))
		}
		if err := g.place(ctx, replaceSide, replacePrice); err != nil {
			return err
		}
	}

	return nil
}

// adjust rebuilds the ladder when the price has moved more than 10% past
// either extreme of the tracked levels.
func (g *Grid) adjust(ctx context.Context) error {
	if len(g.orders) == 0 {
		return nil
	}

	current, ok := g.referencePrice(ctx)
	if !ok {
		return nil
	}

	var low, high decimal.Decimal
	first := true
	for _, o := range g.orders {
		if first {
			low, high = o.Price, o.Price
			first = false
			continue
		}
		if o.Price.LessThan(low) {
			low = o.Price
		}
		if o.Price.GreaterThan(high) {
			high = o.Price
		}
	}

	if current.GreaterThanOrEqual(low.Mul(driftLow)) && current.LessThanOrEqual(high.Mul(driftHigh)) {
		return nil
	}

	g.logger.Info("price drifted outside grid, rebuilding",
		"current", current, "low", low, "high", high)
	metrics.GridRebuilds.Inc()

	if err := g.teardown(ctx); err != nil {
		return err
	}
	return g.build(ctx)
}

// place submits one grid level and tracks it.
func (g *Grid) place(ctx context.Context, side model.Side, price decimal.Decimal) error {
	if !g.params.inBand(price) {
		g.logger.Info("grid level outside configured band, skipping",
			"side", side, "price", price)
		return nil
	}

	req := model.OrderRequest{
		ClientID:    model.NewClientID(g.params.Prefix),
		Symbol:      g.params.Symbol,
		Side:        side,
		OrderType:   "Limit",
		TimeInForce: "GTC",
		Quantity:    g.params.roundQuantity(g.params.Quantity),
		Price:       price,
	}
	order, err := g.ex.ExecuteOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("place grid %s at %s: %w", side, price, err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(side)).Inc()
	g.logger.Info("grid order placed",
		"side", side, "order_id", order.ID, "price", order.Price)
	g.orders[order.ID] = *order

	if g.rec != nil {
		if err := g.rec.RecordOrder(ctx, order); err != nil {
			g.logger.Warn("journal order failed", "order_id", order.ID, "error", err)
		}
	}

	return nil
}

// teardown cancels all tracked orders.
func (g *Grid) teardown(ctx context.Context) error {
	for id := range g.orders {
		outcome, err := g.ex.CancelOrder(ctx, g.params.Symbol, id)
		if err != nil {
			return fmt.Errorf("cancel grid order %s: %w", id, err)
		}
		if outcome.State != model.CancelPending {
			metrics.OrdersCancelled.Inc()
		}
		delete(g.orders, id)
	}
	return nil
}

// sweep cancels resting tagged orders left by a previous run so the fresh
// ladder starts from a clean slate.
func (g *Grid) sweep(ctx context.Context) error {
	open, err := g.ex.OpenOrders(ctx, g.params.Symbol)
	if err != nil {
		return err
	}

	for _, o := range open {
		if !g.params.owns(o) {
			continue
		}
		outcome, err := g.ex.CancelOrder(ctx, g.params.Symbol, o.ID)
		if err != nil {
			return fmt.Errorf("cancel leftover order %s: %w", o.ID, err)
		}
		if outcome.State != model.CancelPending {
			metrics.OrdersCancelled.Inc()
		}
		g.logger.Info("cancelled leftover order",
			"side", o.Side, "order_id", o.ID, "price", o.Price)
	}

	return nil
}
