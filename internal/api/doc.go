// Package api provides the HTTP client for the Backpack exchange REST API.
//
// Authenticated endpoints sign every request attempt through
// internal/auth, so a retried request always carries a fresh timestamp.
// Each endpoint retries per its own policy: balance queries retry
// indefinitely, order submission and cancellation retry a bounded number
// of times with a fixed delay, and order status polling retries with
// exponential backoff. Public market-data endpoints are unsigned.
package api
