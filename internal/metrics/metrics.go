// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - grid_orders_placed_total{side}    orders submitted to the exchange
//   - grid_orders_filled_total{side}    tracked orders observed filled
//   - grid_orders_cancelled_total      orders cancelled by the bot
//   - grid_side_flips_total            balance-driven side flips
//   - grid_rebuilds_total              full grid teardowns and rebuilds
//   - grid_realized_profit            running realized profit (quote asset)
//   - grid_cycle_errors_total          strategy cycles aborted by errors
//
// Registered in init() and served via Handler at the configured path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_orders_placed_total",
			Help: "Orders submitted to the exchange",
		},
		[]string{"side"},
	)

	OrdersFilled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_orders_filled_total",
			Help: "Tracked orders observed filled",
		},
		[]string{"side"},
	)

	OrdersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_orders_cancelled_total",
			Help: "Orders cancelled by the bot",
		},
	)

	SideFlips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_side_flips_total",
			Help: "Order placements flipped to the opposite side for lack of balance",
		},
	)

	GridRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_rebuilds_total",
			Help: "Full grid teardowns and rebuilds after price drift",
		},
	)

	RealizedProfit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grid_realized_profit",
			Help: "Running realized profit in the quote asset",
		},
	)

	CycleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_cycle_errors_total",
			Help: "Strategy cycles aborted by errors",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced,
		OrdersFilled,
		OrdersCancelled,
		SideFlips,
		GridRebuilds,
		RealizedProfit,
		CycleErrors,
	)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
