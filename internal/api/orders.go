package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rickgao/bpx-grid/internal/model"
	"github.com/rickgao/bpx-grid/internal/retry"
)

// Instruction names included in the signed payload. These are fixed by the
// API contract and independent of HTTP verb or path.
const (
	instructionBalanceQuery     = "balanceQuery"
	instructionDepositQueryAll  = "depositQueryAll"
	instructionDepositAddress   = "depositAddressQuery"
	instructionWithdrawQueryAll = "withdrawalQueryAll"
	instructionOrderExecute     = "orderExecute"
	instructionOrderQuery       = "orderQuery"
	instructionOrderQueryAll    = "orderQueryAll"
	instructionOrderCancel      = "orderCancel"
	instructionOrderCancelAll   = "orderCancelAll"
	instructionOrderHistory     = "orderHistoryQueryAll"
	instructionFillHistory      = "fillHistoryQueryAll"
)

// orderExecuteBody is the JSON body for order submission. clientId is
// numeric on the wire; everything else is a string.
type orderExecuteBody struct {
	ClientID    int64  `json:"clientId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	TimeInForce string `json:"timeInForce"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// ExecuteOrder submits a limit order. A 200 returns the confirmed order; a
// 202 means the order was accepted but not yet executed, so a provisional
// record is synthesized from the request with status New. Signature-expiry
// errors and all other failures are retried with a freshly signed request,
// up to the submit policy's budget.
func (c *Client) ExecuteOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	quantity := req.Quantity.String()
	price := req.Price.String()

	params := map[string]string{
		"clientId":    strconv.FormatInt(req.ClientID, 10),
		"symbol":      req.Symbol,
		"side":        string(req.Side),
		"orderType":   req.OrderType,
		"timeInForce": req.TimeInForce,
		"quantity":    quantity,
		"price":       price,
	}
	body := orderExecuteBody{
		ClientID:    req.ClientID,
		Symbol:      req.Symbol,
		Side:        string(req.Side),
		OrderType:   req.OrderType,
		TimeInForce: req.TimeInForce,
		Quantity:    quantity,
		Price:       price,
	}

	return retry.Do(ctx, c.policies.Submit, func(attempt int) (*model.Order, error) {
		status, respBody, err := c.signedDo(ctx, http.MethodPost, "api/v1/order", instructionOrderExecute, params, body)
		if err != nil {
			c.logger.Error("order submit failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("submit order: %w", err)
		}

		switch status {
		case http.StatusOK:
			var order model.Order
			if err := decodeJSON(respBody, &order); err != nil {
				return nil, retry.Permanent(err)
			}
			return &order, nil

		case http.StatusAccepted:
			// Accepted but not yet executed. The exchange has not
			// returned full details, so echo the client-supplied
			// fields into a provisional order.
			var accepted struct {
				ID string `json:"id"`
			}
			if err := decodeJSON(respBody, &accepted); err != nil {
				return nil, retry.Permanent(err)
			}
			clientID := req.ClientID
			return &model.Order{
				ID:          accepted.ID,
				ClientID:    &clientID,
				Symbol:      req.Symbol,
				Side:        req.Side,
				OrderType:   req.OrderType,
				TimeInForce: req.TimeInForce,
				Quantity:    req.Quantity,
				Price:       req.Price,
				Status:      model.StatusNew,
			}, nil

		default:
			apiErr := &APIError{StatusCode: status, Body: respBody}
			if apiErr.SignatureExpired() {
				c.logger.Warn("stale signature on submit, re-signing",
					"attempt", attempt,
					"status", status,
				)
			} else {
				c.logger.Error("order submit rejected",
					"attempt", attempt,
					"status", status,
					"body", string(respBody),
				)
			}
			return nil, apiErr
		}
	})
}

// OpenOrder fetches a single open order. Returns (nil, nil) when the order
// is no longer on the book (404); the caller decides whether it filled by
// consulting order history. Transient failures retry with exponential
// backoff.
func (c *Client) OpenOrder(ctx context.Context, symbol, orderID string) (*model.Order, error) {
	params := map[string]string{
		"symbol":  symbol,
		"orderId": orderID,
	}

	return retry.Do(ctx, c.policies.Query, func(attempt int) (*model.Order, error) {
		status, respBody, err := c.signedDo(ctx, http.MethodGet, "api/v1/order", instructionOrderQuery, params, nil)
		if err != nil {
			return nil, fmt.Errorf("query order %s: %w", orderID, err)
		}

		switch status {
		case http.StatusOK:
			var order model.Order
			if err := decodeJSON(respBody, &order); err != nil {
				return nil, retry.Permanent(err)
			}
			return &order, nil
		case http.StatusNotFound:
			return nil, nil
		default:
			return nil, &APIError{StatusCode: status, Body: respBody}
		}
	})
}

// OpenOrders fetches all open orders, optionally filtered by symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]model.Order, error) {
	params := map[string]string{}
	if symbol != "" {
		params["symbol"] = symbol
	}

	return retry.Do(ctx, c.policies.Query, func(attempt int) ([]model.Order, error) {
		status, respBody, err := c.signedDo(ctx, http.MethodGet, "api/v1/orders", instructionOrderQueryAll, params, nil)
		if err != nil {
			return nil, fmt.Errorf("query open orders: %w", err)
		}
		if status != http.StatusOK {
			return nil, &APIError{StatusCode: status, Body: respBody}
		}

		var orders []model.Order
		if err := decodeJSON(respBody, &orders); err != nil {
			return nil, retry.Permanent(err)
		}
		return orders, nil
	})
}

// cancelBody is the JSON body for single-order cancellation.
type cancelBody struct {
	Symbol  string `json:"symbol"`
	OrderID string `json:"orderId"`
}

// CancelOrder cancels a resting order. A 202 is reported as pending-cancel
// and an "Order not found" error body as already-cancelled; both are
// non-fatal. Other failures retry up to the cancel policy's budget and
// then surface explicitly.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) (*model.CancelOutcome, error) {
	params := map[string]string{
		"symbol":  symbol,
		"orderId": orderID,
	}
	body := cancelBody{Symbol: symbol, OrderID: orderID}

	return retry.Do(ctx, c.policies.Cancel, func(attempt int) (*model.CancelOutcome, error) {
		status, respBody, err := c.signedDo(ctx, http.MethodDelete, "api/v1/order", instructionOrderCancel, params, body)
		if err != nil {
			return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
		}

		switch status {
		case http.StatusOK:
			var order model.Order
			if err := decodeJSON(respBody, &order); err != nil {
				return nil, retry.Permanent(err)
			}
			return &model.CancelOutcome{OrderID: orderID, State: model.CancelDone, Order: &order}, nil

		case http.StatusAccepted:
			return &model.CancelOutcome{OrderID: orderID, State: model.CancelPending}, nil

		default:
			apiErr := &APIError{StatusCode: status, Body: respBody}
			if apiErr.OrderNotFound() {
				c.logger.Info("cancel target already gone", "order_id", orderID)
				return &model.CancelOutcome{OrderID: orderID, State: model.CancelNotFound}, nil
			}
			c.logger.Error("cancel rejected",
				"attempt", attempt,
				"order_id", orderID,
				"status", status,
				"body", string(respBody),
			)
			return nil, apiErr
		}
	})
}

// CancelAllOrders cancels every open order for the symbol in one call and
// returns the cancelled orders.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) ([]model.Order, error) {
	params := map[string]string{"symbol": symbol}
	body := struct {
		Symbol string `json:"symbol"`
	}{Symbol: symbol}

	status, respBody, err := c.signedDo(ctx, http.MethodDelete, "api/v1/orders", instructionOrderCancelAll, params, body)
	if err != nil {
		return nil, fmt.Errorf("cancel all orders: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: respBody}
	}

	var orders []model.Order
	if err := decodeJSON(respBody, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
