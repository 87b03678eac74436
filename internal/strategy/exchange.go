// Package strategy implements the order lifecycle managers: a dual-order
// market maker that keeps one resting order per side, and a multi-level
// grid that maintains a ladder of limit orders around the current price.
// Both run as restartable instances under a Supervisor.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rickgao/bpx-grid/internal/model"
)

// Exchange is the authenticated trading surface the strategies drive.
// *api.Client satisfies it.
type Exchange interface {
	Balances(ctx context.Context) (map[string]model.Balance, error)
	ExecuteOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
	OpenOrder(ctx context.Context, symbol, orderID string) (*model.Order, error)
	OpenOrders(ctx context.Context, symbol string) ([]model.Order, error)
	CancelOrder(ctx context.Context, symbol, orderID string) (*model.CancelOutcome, error)
	OrderHistory(ctx context.Context, symbol string, limit, offset int) ([]model.Order, error)
}

// MarketData is the read-only market surface the strategies consult.
// *api.Client satisfies it.
type MarketData interface {
	Status(ctx context.Context) (*model.SystemStatus, error)
	Depth(ctx context.Context, symbol string) (*model.Depth, error)
	Ticker(ctx context.Context, symbol string) (*model.Ticker, error)
}

// Recorder receives placed orders and observed fills for persistence.
// *journal.Journal satisfies it; a nil Recorder disables journaling.
type Recorder interface {
	RecordOrder(ctx context.Context, order *model.Order) error
	RecordFill(ctx context.Context, order *model.Order, fillPrice, profit decimal.Decimal) error
}
