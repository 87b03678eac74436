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
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// historyLookback is how many recent history entries are scanned when
// resolving an order that vanished from the open book.
const historyLookback = 100

// DualOrder keeps at most one resting buy and one resting sell near the top
// of the book. When a side lacks balance the placement flips to the other
// side, sized from half of what is available there.
type DualOrder struct {
	params Params
	ex     Exchange
	md     MarketData
	rec    Recorder
	logger *slog.Logger

	buyOrder  *model.Order
	sellOrder *model.Order
}

// NewDualOrder creates a dual-order manager. rec may be nil.
func NewDualOrder(params Params, ex Exchange, md MarketData, rec Recorder, logger *slog.Logger) *DualOrder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DualOrder{
		params: params,
		ex:     ex,
		md:     md,
		rec:    rec,
		logger: logger.With("strategy", "dual", "symbol", params.Symbol),
	}
}

// Run reconciles against the exchange and then cycles until the context is
// cancelled or an order-path call exhausts its retries. The supervisor
// restarts with a fresh instance; reconciliation re-adopts resting orders so
// a restart never double-places.
func (d *DualOrder) Run(ctx context.Context) error {
	if err := d.reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	ticker := time.NewTicker(d.params.Interval)
	defer ticker.Stop()

	for {
		if err := d.cycle(ctx); err != nil {
			metrics.CycleErrors.Inc()
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// reconcile adopts resting tagged orders left by a previous run, at most
// one per side. A side with multiple tagged orders has lost its invariant;
// all of that side's orders are cancelled and the side starts empty.
func (d *DualOrder) reconcile(ctx context.Context) error {
	open, err := d.ex.OpenOrders(ctx, d.params.Symbol)
	if err != nil {
		return err
	}

	bySide := map[model.Side][]model.Order{}
	for _, o := range open {
		if d.params.owns(o) {
			bySide[o.Side] = append(bySide[o.Side], o)
		}
	}

	for side, orders := range bySide {
		if len(orders) == 1 {
			adopted := orders[0]
			*d.slot(side) = &adopted
			d.logger.Info("adopted resting order",
				"side", side, "order_id", adopted.ID, "price", adopted.Price)
			continue
		}

		d.logger.Warn("multiple resting orders on one side, cancelling all",
			"side", side, "count", len(orders))
		for _, o := range orders {
			if err := d.cancel(ctx, o.ID); err != nil {
				return fmt.Errorf("cancel surplus order %s: %w", o.ID, err)
			}
		}
	}

	return nil
}

// cycle runs one poll iteration. Market-data failures skip the cycle;
// order-path failures abort the instance.
func (d *DualOrder) cycle(ctx context.Context) error {
	status, err := d.md.Status(ctx)
	if err != nil {
		d.logger.Warn("status check failed, skipping cycle", "error", err)
		return nil
	}
	if !status.Operational() {
		d.logger.Info("exchange not operational, skipping cycle",
			"status", status.Status, "message", status.Message)
		return nil
	}

	if err := d.refreshSide(ctx, model.Bid); err != nil {
		return err
	}
	if err := d.refreshSide(ctx, model.Ask); err != nil {
		return err
	}

	depth, err := d.md.Depth(ctx, d.params.Symbol)
	if err != nil {
		d.logger.Warn("depth read failed, skipping cycle", "error", err)
		return nil
	}
	bestBid, okBid := depth.BestBid()
	bestAsk, okAsk := depth.BestAsk()
	if !okBid || !okAsk {
		d.logger.Warn("order book empty, skipping cycle")
		return nil
	}

	if d.buyOrder == nil {
		price := d.params.roundPrice(bestBid.Add(d.params.TickOffset))
		if err := d.place(ctx, model.Bid, price, bestBid, bestAsk); err != nil {
			return err
		}
	}
	if d.sellOrder == nil {
		price := d.params.roundPrice(bestAsk.Sub(d.params.TickOffset))
		if err := d.place(ctx, model.Ask, price, bestBid, bestAsk); err != nil {
			return err
		}
	}

	return nil
}

// refreshSide polls the tracked order on one side. An order gone from the
// open book frees its slot only once history confirms a terminal state; a
// vanished order without one may still be settling, so it stays tracked.
func (d *DualOrder) refreshSide(ctx context.Context, side model.Side) error {
	slot := d.slot(side)
	tracked := *slot
	if tracked == nil {
		return nil
	}

	open, err := d.ex.OpenOrder(ctx, d.params.Symbol, tracked.ID)
	if err != nil {
		return fmt.Errorf("query %s order %s: %w", side, tracked.ID, err)
	}
	if open != nil {
		*slot = open
		return nil
	}

	hist, err := d.lookupHistory(ctx, tracked.ID)
	if err != nil {
		d.logger.Warn("history lookup failed, keeping order tracked",
			"order_id", tracked.ID, "error", err)
		return nil
	}
	if hist == nil {
		d.logger.Warn("order gone from open book with no history record yet",
			"order_id", tracked.ID, "side", side)
		return nil
	}

	switch hist.Status {
	case model.StatusFilled:
		d.logger.Info("order filled",
			"side", side, "order_id", tracked.ID,
			"price", tracked.Price, "quantity", tracked.Quantity)
		metrics.OrdersFilled.WithLabelValues(string(side)).Inc()
		d.recordFill(ctx, hist)
		*slot = nil
	case model.StatusCancelled:
		d.logger.Info("order cancelled externally", "side", side, "order_id", tracked.ID)
		*slot = nil
	default:
		d.logger.Warn("order in unexpected historical state, keeping tracked",
			"order_id", tracked.ID, "status", hist.Status)
	}

	return nil
}

// place submits one limit order. Before submitting it adopts a matching
// resting order if one exists, which makes placement idempotent across
// restarts and ambiguous submit retries.
func (d *DualOrder) place(ctx context.Context, side model.Side, price, bestBid, bestAsk decimal.Decimal) error {
	existing, err := d.findOpen(ctx, side)
	if err != nil {
		return err
	}
	if existing != nil {
		d.logger.Info("adopting resting order instead of placing",
			"side", side, "order_id", existing.ID, "price", existing.Price)
		*d.slot(side) = existing
		return nil
	}

	if !d.params.inBand(price) {
		d.logger.Info("price outside configured band, holding off",
			"side", side, "price", price,
			"min", d.params.MinPrice, "max", d.params.MaxPrice)
		return nil
	}

	balances, err := d.ex.Balances(ctx)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	base := balances[d.params.Base].Available
	quote := balances[d.params.Quote].Available

	quantity := d.params.roundQuantity(d.params.Quantity)

	// Flip when the requested side lacks balance: sell without base becomes
	// a buy sized from half the quote balance at a gap above the ask, and
	// buy without quote becomes a sell of half the base balance at a gap
	// below the bid.
	requested := side
	switch {
	case side == model.Ask && base.LessThan(quantity):
		side = model.Bid
		price = d.params.roundPrice(bestAsk.Mul(one.Add(d.params.GapPercent)))
		quantity = d.params.roundQuantity(quote.Div(price.Mul(two)))
	case side == model.Bid && quote.LessThan(quantity.Mul(price)):
		side = model.Ask
		price = d.params.roundPrice(bestBid.Mul(one.Sub(d.params.GapPercent)))
		quantity = d.params.roundQuantity(base.Div(two))
	}
	if side != requested {
		metrics.SideFlips.Inc()
		d.logger.Info("insufficient balance, flipping side",
			"requested", requested, "side", side, "price", price, "quantity", quantity)
	}

	if !quantity.IsPositive() {
		d.logger.Warn("no balance to place order", "side", side, "quantity", quantity)
		return nil
	}

	req := model.OrderRequest{
		ClientID:    model.NewClientID(d.params.Prefix),
		Symbol:      d.params.Symbol,
		Side:        side,
		OrderType:   "Limit",
		TimeInForce: "GTC",
		Quantity:    quantity,
		Price:       price,
	}
	order, err := d.ex.ExecuteOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("place %s order: %w", side, err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(side)).Inc()
	d.logger.Info("order placed",
		"side", side, "order_id", order.ID,
		"price", order.Price, "quantity", order.Quantity, "status", order.Status)
	d.recordOrder(ctx, order)

	// A flipped order still occupies the slot that triggered the placement,
	// so the next cycle does not place again on the depleted side.
	*d.slot(requested) = order

	return nil
}

// findOpen returns a resting order of ours on the given side, if any.
func (d *DualOrder) findOpen(ctx context.Context, side model.Side) (*model.Order, error) {
	open, err := d.ex.OpenOrders(ctx, d.params.Symbol)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	for i := range open {
		if open[i].Side == side && d.params.owns(open[i]) {
			o := open[i]
			return &o, nil
		}
	}
	return nil, nil
}

// lookupHistory scans recent order history for the given order id.
func (d *DualOrder) lookupHistory(ctx context.Context, orderID string) (*model.Order, error) {
	orders, err := d.ex.OrderHistory(ctx, d.params.Symbol, historyLookback, 0)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (d *DualOrder) cancel(ctx context.Context, orderID string) error {
	outcome, err := d.ex.CancelOrder(ctx, d.params.Symbol, orderID)
	if err != nil {
		return err
	}
	switch outcome.State {
	case model.CancelPending:
		d.logger.Info("cancel accepted, not yet executed", "order_id", orderID)
	default:
		metrics.OrdersCancelled.Inc()
	}
	return nil
}

func (d *DualOrder) recordOrder(ctx context.Context, order *model.Order) {
	if d.rec == nil {
		return
	}
	if err := d.rec.RecordOrder(ctx, order); err != nil {
		d.logger.Warn("journal order failed", "order_id", order.ID, "error", err)
	}
}

// recordFill journals a fill. Limit orders execute at their limit price,
// so the order price stands in for the fill price.
func (d *DualOrder) recordFill(ctx context.Context, order *model.Order) {
	if d.rec == nil {
		return
	}
	if err := d.rec.RecordFill(ctx, order, order.Price, decimal.Zero); err != nil {
		d.logger.Warn("journal fill failed", "order_id", order.ID, "error", err)
	}
}

func (d *DualOrder) slot(side model.Side) **model.Order {
	if side == model.Bid {
		return &d.buyOrder
	}
	return &d.sellOrder
}
