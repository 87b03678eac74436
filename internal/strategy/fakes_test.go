package strategy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/bpx-grid/internal/model"
)

type fakeExchange struct {
	balances    map[string]model.Balance
	balancesErr error
	open        []model.Order
	openErr     error
	history     []model.Order
	historyErr  error
	executeErr  error
	openOrderFn func(orderID string) (*model.Order, error)

	executed  []model.OrderRequest
	cancelled []string
	nextID    int
}

func (f *fakeExchange) Balances(context.Context) (map[string]model.Balance, error) {
	return f.balances, f.balancesErr
}

func (f *fakeExchange) ExecuteOrder(_ context.Context, req model.OrderRequest) (*model.Order, error) {
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	f.executed = append(f.executed, req)
	f.nextID++
	cid := req.ClientID
	return &model.Order{
		ID:          fmt.Sprintf("ord-%d", f.nextID),
		ClientID:    &cid,
		Symbol:      req.Symbol,
		Side:        req.Side,
		OrderType:   req.OrderType,
		TimeInForce: req.TimeInForce,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      model.StatusNew,
	}, nil
}

func (f *fakeExchange) OpenOrder(_ context.Context, _ string, orderID string) (*model.Order, error) {
	if f.openOrderFn != nil {
		return f.openOrderFn(orderID)
	}
	for i := range f.open {
		if f.open[i].ID == orderID {
			o := f.open[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeExchange) OpenOrders(context.Context, string) ([]model.Order, error) {
	return f.open, f.openErr
}

func (f *fakeExchange) CancelOrder(_ context.Context, _ string, orderID string) (*model.CancelOutcome, error) {
	f.cancelled = append(f.cancelled, orderID)
	for i := range f.open {
		if f.open[i].ID == orderID {
			f.open = append(f.open[:i], f.open[i+1:]...)
			break
		}
	}
	return &model.CancelOutcome{OrderID: orderID, State: model.CancelDone}, nil
}

func (f *fakeExchange) OrderHistory(context.Context, string, int, int) ([]model.Order, error) {
	return f.history, f.historyErr
}

type fakeMarket struct {
	status    *model.SystemStatus
	statusErr error
	depth     *model.Depth
	depthErr  error
	ticker    *model.Ticker
	tickerErr error
}

func (f *fakeMarket) Status(context.Context) (*model.SystemStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeMarket) Depth(context.Context, string) (*model.Depth, error) {
	return f.depth, f.depthErr
}

func (f *fakeMarket) Ticker(context.Context, string) (*model.Ticker, error) {
	return f.ticker, f.tickerErr
}

type recordedFill struct {
	orderID   string
	fillPrice decimal.Decimal
	profit    decimal.Decimal
}

type fakeRecorder struct {
	orders []string
	fills  []recordedFill
}

func (f *fakeRecorder) RecordOrder(_ context.Context, order *model.Order) error {
	f.orders = append(f.orders, order.ID)
	return nil
}

func (f *fakeRecorder) RecordFill(_ context.Context, order *model.Order, fillPrice, profit decimal.Decimal) error {
	f.fills = append(f.fills, recordedFill{orderID: order.ID, fillPrice: fillPrice, profit: profit})
	return nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cid(v int64) *int64 {
	return &v
}

func testParams() Params {
	return Params{
		Symbol:            "SOL_USDC",
		Base:              "SOL",
		Quote:             "USDC",
		Prefix:            "112",
		Quantity:          d("0.2"),
		MinPrice:          d("130"),
		MaxPrice:          d("240"),
		TickOffset:        d("0.02"),
		GapPercent:        d("0.001"),
		PricePrecision:    2,
		QuantityPrecision: 2,
		Interval:          time.Second,
	}
}

func testDepth(bid, ask string) *model.Depth {
	return &model.Depth{
		Bids: [][]string{{"149.00", "1.0"}, {bid, "2.0"}},
		Asks: [][]string{{ask, "1.0"}, {"151.00", "3.0"}},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
