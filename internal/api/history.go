package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rickgao/bpx-grid/internal/model"
)

// OrderHistory fetches historical orders for a symbol, newest first. Pass
// limit/offset of 0 to use the server defaults.
func (c *Client) OrderHistory(ctx context.Context, symbol string, limit, offset int) ([]model.Order, error) {
	params := map[string]string{"symbol": symbol}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}

	status, respBody, err := c.signedDo(ctx, http.MethodGet, "wapi/v1/history/orders", instructionOrderHistory, params, nil)
	if err != nil {
		return nil, fmt.Errorf("query order history: %w", err)
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

// FillHistory fetches historical fills. symbol may be empty to fetch fills
// across all symbols.
func (c *Client) FillHistory(ctx context.Context, symbol string, limit, offset int) ([]model.Fill, error) {
	params := map[string]string{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}

	status, respBody, err := c.signedDo(ctx, http.MethodGet, "wapi/v1/history/fills", instructionFillHistory, params, nil)
	if err != nil {
		return nil, fmt.Errorf("query fill history: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: respBody}
	}

	var fills []model.Fill
	if err := decodeJSON(respBody, &fills); err != nil {
		return nil, err
	}
	return fills, nil
}
