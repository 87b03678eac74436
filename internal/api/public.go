package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rickgao/bpx-grid/internal/model"
	"github.com/rickgao/bpx-grid/internal/retry"
)

// Public market-data endpoints. None of these are signed. Apart from Depth,
// failures return immediately; the strategies treat a failed read as "no
// decision this cycle" rather than an error to escalate.

// getPublic fetches and decodes one public endpoint.
func (c *Client) getPublic(ctx context.Context, path string, query url.Values, result any) error {
	status, body, err := c.publicGet(ctx, path, query)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{StatusCode: status, Body: body}
	}
	return decodeJSON(body, result)
}

// Assets fetches all supported assets.
func (c *Client) Assets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := c.getPublic(ctx, "api/v1/assets", nil, &assets); err != nil {
		return nil, fmt.Errorf("get assets: %w", err)
	}
	return assets, nil
}

// Markets fetches all trading pairs.
func (c *Client) Markets(ctx context.Context) ([]model.Market, error) {
	var markets []model.Market
	if err := c.getPublic(ctx, "api/v1/markets", nil, &markets); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	return markets, nil
}

// Ticker fetches the 24h ticker for a symbol.
func (c *Client) Ticker(ctx context.Context, symbol string) (*model.Ticker, error) {
	query := url.Values{"symbol": {symbol}}
	var ticker model.Ticker
	if err := c.getPublic(ctx, "api/v1/ticker", query, &ticker); err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", symbol, err)
	}
	return &ticker, nil
}

// Depth fetches the order book for a symbol, retrying transient failures
// with a short fixed delay.
func (c *Client) Depth(ctx context.Context, symbol string) (*model.Depth, error) {
	query := url.Values{"symbol": {symbol}}

	return retry.Do(ctx, c.policies.Depth, func(attempt int) (*model.Depth, error) {
		status, body, err := c.publicGet(ctx, "api/v1/depth", query)
		if err != nil {
			c.logger.Error("depth query failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("get depth %s: %w", symbol, err)
		}
		if status != http.StatusOK {
			c.logger.Error("depth query rejected", "attempt", attempt, "status", status)
			return nil, &APIError{StatusCode: status, Body: body}
		}

		var depth model.Depth
		if err := decodeJSON(body, &depth); err != nil {
			return nil, retry.Permanent(err)
		}
		return &depth, nil
	})
}

// Klines fetches candles for a symbol. startTime and endTime are Unix
// seconds; pass 0 to omit.
func (c *Client) Klines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]model.Kline, error) {
	query := url.Values{
		"symbol":   {symbol},
		"interval": {interval},
	}
	if startTime > 0 {
		query.Set("startTime", strconv.FormatInt(startTime, 10))
	}
	if endTime > 0 {
		query.Set("endTime", strconv.FormatInt(endTime, 10))
	}

	var klines []model.Kline
	if err := c.getPublic(ctx, "api/v1/klines", query, &klines); err != nil {
		return nil, fmt.Errorf("get klines %s: %w", symbol, err)
	}
	return klines, nil
}

// Status fetches the exchange operational status.
func (c *Client) Status(ctx context.Context) (*model.SystemStatus, error) {
	var status model.SystemStatus
	if err := c.getPublic(ctx, "api/v1/status", nil, &status); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return &status, nil
}

// Ping checks API reachability.
func (c *Client) Ping(ctx context.Context) (string, error) {
	status, body, err := c.publicGet(ctx, "api/v1/ping", nil)
	if err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	if status != http.StatusOK {
		return "", &APIError{StatusCode: status, Body: body}
	}
	return string(body), nil
}

// Time fetches the server time in milliseconds as a decimal string.
func (c *Client) Time(ctx context.Context) (string, error) {
	status, body, err := c.publicGet(ctx, "api/v1/time", nil)
	if err != nil {
		return "", fmt.Errorf("get time: %w", err)
	}
	if status != http.StatusOK {
		return "", &APIError{StatusCode: status, Body: body}
	}
	return string(body), nil
}

// RecentTrades fetches the most recent public trades for a symbol.
func (c *Client) RecentTrades(ctx context.Context, symbol string, limit int) ([]model.PublicTrade, error) {
	query := url.Values{"symbol": {symbol}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var trades []model.PublicTrade
	if err := c.getPublic(ctx, "api/v1/trades", query, &trades); err != nil {
		return nil, fmt.Errorf("get recent trades %s: %w", symbol, err)
	}
	return trades, nil
}

// HistoricalTrades fetches a page of older public trades.
func (c *Client) HistoricalTrades(ctx context.Context, symbol string, limit, offset int) ([]model.PublicTrade, error) {
	query := url.Values{"symbol": {symbol}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var trades []model.PublicTrade
	if err := c.getPublic(ctx, "api/v1/trades/history", query, &trades); err != nil {
		return nil, fmt.Errorf("get trade history %s: %w", symbol, err)
	}
	return trades, nil
}
