package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rickgao/bpx-grid/internal/model"
	"github.com/rickgao/bpx-grid/internal/retry"
)

// Balances fetches per-asset balances. Retries indefinitely with a fixed
// delay: order sizing cannot proceed without a fresh balance read, so the
// only way out of a persistent failure is context cancellation.
func (c *Client) Balances(ctx context.Context) (map[string]model.Balance, error) {
	return retry.Do(ctx, c.policies.Balance, func(attempt int) (map[string]model.Balance, error) {
		status, respBody, err := c.signedDo(ctx, http.MethodGet, "api/v1/capital", instructionBalanceQuery, nil, nil)
		if err != nil {
			c.logger.Error("balance query failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("query balances: %w", err)
		}
		if status != http.StatusOK {
			c.logger.Error("balance query rejected", "attempt", attempt, "status", status, "body", string(respBody))
			return nil, &APIError{StatusCode: status, Body: respBody}
		}

		balances := map[string]model.Balance{}
		if err := decodeJSON(respBody, &balances); err != nil {
			return nil, retry.Permanent(err)
		}
		return balances, nil
	})
}

// Deposits fetches the deposit history.
func (c *Client) Deposits(ctx context.Context) ([]Deposit, error) {
	status, respBody, err := c.signedDo(ctx, http.MethodGet, "wapi/v1/capital/deposits", instructionDepositQueryAll, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query deposits: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: respBody}
	}

	var deposits []Deposit
	if err := decodeJSON(respBody, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

// DepositAddress fetches the deposit address for a blockchain.
func (c *Client) DepositAddress(ctx context.Context, blockchain string) (*DepositAddress, error) {
	params := map[string]string{"blockchain": blockchain}

	status, respBody, err := c.signedDo(ctx, http.MethodGet, "wapi/v1/capital/deposit/address", instructionDepositAddress, params, nil)
	if err != nil {
		return nil, fmt.Errorf("query deposit address: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: respBody}
	}

	var addr DepositAddress
	if err := decodeJSON(respBody, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// Withdrawals fetches a page of withdrawal history.
func (c *Client) Withdrawals(ctx context.Context, limit, offset int) ([]Withdrawal, error) {
	params := map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}

	status, respBody, err := c.signedDo(ctx, http.MethodGet, "wapi/v1/capital/withdrawals", instructionWithdrawQueryAll, params, nil)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Body: respBody}
	}

	var withdrawals []Withdrawal
	if err := decodeJSON(respBody, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}
